package tools

import (
	"context"

	"github.com/rgabriel/mcp-gmail-attachments/attachment"
)

// AttachmentDownloader saves the attachments of one message to disk and
// returns the written paths. The concrete *attachment.Fetcher satisfies this.
type AttachmentDownloader interface {
	Fetch(ctx context.Context, req attachment.Request) ([]string, error)
}
