// Package attachment downloads the attachments of a Gmail message,
// located by its X-GM-MSGID, into a local folder.
package attachment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/rgabriel/mcp-gmail-attachments/config"
	"github.com/rgabriel/mcp-gmail-attachments/imap"
)

// DefaultDownloadFolder is used when a request leaves the folder empty.
const DefaultDownloadFolder = "./attachments"

// Request describes one download.
type Request struct {
	// MessageID is the hexadecimal form of the Gmail message ID.
	MessageID      string
	DownloadFolder string
	Mailbox        config.Mailbox
}

// Fetcher saves message attachments to disk. Every call opens and closes
// its own IMAP session, so a Fetcher may be shared between goroutines.
type Fetcher struct {
	logger *slog.Logger
	dial   imap.DialFunc
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithDialer replaces the TLS dialer used to reach the IMAP server.
func WithDialer(dial imap.DialFunc) Option {
	return func(f *Fetcher) {
		f.dial = dial
	}
}

// NewFetcher creates a Fetcher logging to logger.
func NewFetcher(logger *slog.Logger, opts ...Option) *Fetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	f := &Fetcher{
		logger: logger,
		dial:   imap.DialTLS,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ParseMessageID parses the hexadecimal message ID, accepting an optional
// 0x prefix and surrounding whitespace.
func ParseMessageID(id string) (uint64, error) {
	digits := strings.TrimSpace(id)
	if digits == "" {
		return 0, fmt.Errorf("%w: message ID must be provided", ErrInvalidIdentifier)
	}
	if len(digits) > 2 && (digits[:2] == "0x" || digits[:2] == "0X") {
		digits = digits[2:]
	}

	n, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	return n, nil
}

// Fetch downloads every attachment of the inbox message(s) matching
// req.MessageID and returns the written paths in MIME walk order.
//
// Validation fails with ErrMissingCredentials, checked first, or
// ErrInvalidIdentifier before any connection is made. Server failures are
// returned as *imap.ProtocolError. No matching message, or a message without
// attachments, yields an empty slice and a nil error.
func (f *Fetcher) Fetch(ctx context.Context, req Request) ([]string, error) {
	if !req.Mailbox.HasCredentials() {
		return nil, ErrMissingCredentials
	}
	gmailID, err := ParseMessageID(req.MessageID)
	if err != nil {
		return nil, err
	}

	messageID := strings.TrimSpace(req.MessageID)
	folder := req.DownloadFolder
	if folder == "" {
		folder = DefaultDownloadFolder
	}
	server := req.Mailbox.Server
	if server == "" {
		server = config.DefaultIMAPServer
	}

	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download folder %s: %w", folder, err)
	}

	logger := f.logger.With("message_id", messageID)

	session, err := imap.Open(ctx, f.dial, server, req.Mailbox.Username, req.Mailbox.Password)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Debug("logout failed", "error", err)
		}
	}()
	logger.Debug("imap session opened", "server", server, "username", session.Username())

	uids, err := session.SearchGmailMessageID(ctx, gmailID)
	if err != nil {
		return nil, err
	}
	if len(uids) == 0 {
		logger.Warn("no email found with that message ID")
		return []string{}, nil
	}

	saved := []string{}
	for _, uid := range uids {
		raw, err := session.FetchRaw(ctx, uid)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			logger.Warn("message disappeared before fetch", "uid", uid)
			continue
		}

		paths, err := f.saveAttachments(logger.With("uid", uid), raw, folder, messageID)
		if err != nil {
			return nil, err
		}
		saved = append(saved, paths...)
	}

	if len(saved) == 0 {
		logger.Info("no attachments found in the email")
	}

	return saved, nil
}
