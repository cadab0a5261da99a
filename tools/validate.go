package tools

import (
	"fmt"
	"strings"
)

const maxMessageIDSize = 64

// validateMessageID performs the cheap argument checks. Whether the value
// is valid hexadecimal is decided by the attachment package.
func validateMessageID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("message_id is required")
	}
	if len(id) > maxMessageIDSize {
		return fmt.Errorf("message_id exceeds maximum length of %d characters", maxMessageIDSize)
	}

	// Reject null bytes and control characters, surrounding whitespace aside
	for _, r := range strings.TrimSpace(id) {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("message_id contains invalid characters")
		}
	}

	return nil
}

// validateDownloadFolder rejects folder paths the filesystem cannot take.
func validateDownloadFolder(path string) error {
	if path == "" {
		return nil
	}

	// Reject null bytes
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("download_folder must not contain null bytes")
	}

	// Reject newlines and control characters
	for _, r := range path {
		if r < 0x20 {
			return fmt.Errorf("download_folder must not contain control characters")
		}
	}

	return nil
}
