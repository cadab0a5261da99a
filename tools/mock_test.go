package tools

import (
	"context"
	"fmt"

	"github.com/rgabriel/mcp-gmail-attachments/attachment"
)

// MockDownloader implements AttachmentDownloader for testing.
type MockDownloader struct {
	// Return values
	Paths []string

	// Error injection
	Err error

	// Call tracking
	Calls       int
	LastRequest attachment.Request
}

func (m *MockDownloader) Fetch(ctx context.Context, req attachment.Request) ([]string, error) {
	m.Calls++
	m.LastRequest = req
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Paths, nil
}

// newErrMock creates a mock that returns the given error on every call.
func newErrMock(msg string) *MockDownloader {
	return &MockDownloader{Err: fmt.Errorf("%s", msg)}
}
