package imap

import (
	"strconv"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/commands"
)

// gmailSearch is a SEARCH keyed on Gmail's X-GM-MSGID extension, which
// identifies a message across sessions and folders.
// See https://developers.google.com/gmail/imap/imap-extensions
type gmailSearch struct {
	msgID uint64
}

func (cmd *gmailSearch) Command() *imap.Command {
	return &imap.Command{
		Name: "SEARCH",
		Arguments: []interface{}{
			imap.RawString("X-GM-MSGID"),
			imap.RawString(strconv.FormatUint(cmd.msgID, 10)),
		},
	}
}

// newGmailMessageIDSearch returns the UID form of the search so results
// stay valid for the UID FETCH that follows.
func newGmailMessageIDSearch(msgID uint64) imap.Commander {
	return &commands.Uid{Cmd: &gmailSearch{msgID: msgID}}
}
