package imap

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-imap/responses"
)

const (
	defaultPort = "993"
	dialTimeout = 30 * time.Second
	inbox       = "INBOX"
)

// Backend is the subset of *client.Client used by a Session.
type Backend interface {
	Login(username, password string) error
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	Execute(cmdr imap.Commander, h responses.Handler) (*imap.StatusResp, error)
	UidFetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	Logout() error
}

// DialFunc opens an encrypted connection to addr.
type DialFunc func(ctx context.Context, addr string) (Backend, error)

// ProtocolError reports a failure returned by the mail server or the
// connection to it.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("imap %s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ErrNoBody is returned when a fetch response carries no message literal.
var ErrNoBody = errors.New("message body missing from fetch response")

// Session is a single-use, authenticated IMAP connection with the inbox
// selected. It is not safe for concurrent use.
type Session struct {
	backend  Backend
	username string
	closed   bool
}

// DialTLS connects to addr over implicit TLS. The context deadline, if
// any, bounds the dial.
func DialTLS(ctx context.Context, addr string) (Backend, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}

	dialer := &net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: 30 * time.Second,
	}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}

	c, err := client.DialWithDialerTLS(dialer, addr, &tls.Config{ServerName: host})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Address appends the implicit TLS port when server has none.
func Address(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, defaultPort)
}

// Open dials server, logs in and selects INBOX read-only. On any failure
// after the connection is established the connection is logged out
// before returning.
func Open(ctx context.Context, dial DialFunc, server, username, password string) (*Session, error) {
	if dial == nil {
		dial = DialTLS
	}

	addr := Address(server)
	b, err := dial(ctx, addr)
	if err != nil {
		return nil, &ProtocolError{Op: "connect", Err: fmt.Errorf("failed to connect to %s: %w", addr, err)}
	}

	s := NewSessionWithBackend(b, username)

	if err := b.Login(username, password); err != nil {
		s.Close()
		return nil, &ProtocolError{Op: "login", Err: err}
	}

	// Read-only so fetching never sets \Seen
	if _, err := b.Select(inbox, true); err != nil {
		s.Close()
		return nil, &ProtocolError{Op: "select", Err: fmt.Errorf("failed to select %s: %w", inbox, err)}
	}

	return s, nil
}

// NewSessionWithBackend wraps an already connected backend.
func NewSessionWithBackend(b Backend, username string) *Session {
	return &Session{
		backend:  b,
		username: username,
	}
}

// Close logs out. It is idempotent.
func (s *Session) Close() error {
	if s.closed || s.backend == nil {
		return nil
	}
	s.closed = true
	return s.backend.Logout()
}

// Username returns the login name of the session.
func (s *Session) Username() string {
	return s.username
}

// SearchGmailMessageID returns the UIDs of messages whose X-GM-MSGID
// equals msgID, in server order.
func (s *Session) SearchGmailMessageID(ctx context.Context, msgID uint64) ([]uint32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := new(responses.Search)
	status, err := s.backend.Execute(newGmailMessageIDSearch(msgID), res)
	if err != nil {
		return nil, &ProtocolError{Op: "search", Err: err}
	}
	if status != nil {
		if err := status.Err(); err != nil {
			return nil, &ProtocolError{Op: "search", Err: err}
		}
	}

	return res.Ids, nil
}

// FetchRaw returns the full RFC 822 bytes of the message with the given
// UID without marking it as seen. A UID that no longer exists yields
// (nil, nil).
func (s *Session) FetchRaw(ctx context.Context, uid uint32) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	section := &imap.BodySectionName{Peek: true}
	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.backend.UidFetch(seqSet, []imap.FetchItem{imap.FetchUid, section.FetchItem()}, messages)
	}()

	var literal imap.Literal
	found := false
	for msg := range messages {
		if found || msg == nil {
			continue
		}
		found = true
		for _, l := range msg.Body {
			literal = l
			break
		}
	}

	if err := <-done; err != nil {
		return nil, &ProtocolError{Op: "fetch", Err: fmt.Errorf("failed to fetch message %d: %w", uid, err)}
	}

	if !found {
		return nil, nil
	}
	if literal == nil {
		return nil, &ProtocolError{Op: "fetch", Err: fmt.Errorf("message %d: %w", uid, ErrNoBody)}
	}

	raw, err := io.ReadAll(literal)
	if err != nil {
		return nil, &ProtocolError{Op: "fetch", Err: fmt.Errorf("failed to read message %d: %w", uid, err)}
	}
	return raw, nil
}
