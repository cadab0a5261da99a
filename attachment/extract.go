package attachment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"

	"github.com/emersion/go-message"
)

// part is a leaf of the MIME tree marked as an attachment.
type part struct {
	Filename string
	Body     io.Reader
}

// walkAttachments calls fn, in document order, for every non-multipart
// part of raw whose Content-Disposition has an "attachment" segment.
// Encapsulated messages (message/rfc822) that are not attachments
// themselves are descended into. Bodies are transfer-decoded but never
// charset-converted. fn must consume the body before returning.
func walkAttachments(raw []byte, fn func(p part) error) error {
	entity, err := message.Read(bytes.NewReader(raw))
	if err != nil && !tolerable(err) {
		return fmt.Errorf("failed to parse message: %w", err)
	}
	return walkEntity(entity, fn)
}

func walkEntity(entity *message.Entity, fn func(p part) error) error {
	return entity.Walk(func(_ []int, e *message.Entity, err error) error {
		if err != nil && !tolerable(err) {
			return err
		}

		mediaType, _, _ := e.Header.ContentType()
		if strings.HasPrefix(mediaType, "multipart/") {
			return nil
		}

		attached := isAttachment(e.Header.Get("Content-Disposition"))
		if strings.EqualFold(mediaType, "message/rfc822") && !attached {
			inner, err := message.Read(e.Body)
			if err != nil && !tolerable(err) {
				// Not a parseable message; nothing to descend into
				return nil
			}
			return walkEntity(inner, fn)
		}
		if !attached {
			return nil
		}

		return fn(part{
			Filename: partFilename(e.Header),
			Body:     e.Body,
		})
	})
}

// tolerable reports parse errors that still leave a usable entity.
func tolerable(err error) bool {
	return message.IsUnknownCharset(err) || message.IsUnknownEncoding(err)
}

// isAttachment reports whether any ;-separated segment of a
// Content-Disposition value is "attachment".
func isAttachment(disposition string) bool {
	for _, segment := range strings.Split(disposition, ";") {
		if strings.EqualFold(strings.TrimSpace(segment), "attachment") {
			return true
		}
	}
	return false
}

// saveAttachments writes the attachments of one raw message and returns
// their paths. Only disk exhaustion is fatal; other per-part failures are
// logged and the part is skipped.
func (f *Fetcher) saveAttachments(logger *slog.Logger, raw []byte, folder, messageID string) ([]string, error) {
	var saved []string

	err := walkAttachments(raw, func(p part) error {
		filename := decodeFilename(p.Filename)
		if safeName(filename) == "" {
			logger.Debug("skipping attachment without filename")
			return nil
		}

		path := destination(folder, messageID, filename)
		if _, err := os.Stat(path); err == nil {
			logger.Warn("attachment file already exists and will be overwritten", "path", path)
		}

		if err := writeFile(path, p.Body); err != nil {
			if diskFull(err) {
				return &WriteError{Path: path, Err: err}
			}
			logger.Error("failed to save attachment", "filename", filename, "path", path, "error", err)
			return nil
		}

		logger.Info("attachment saved", "filename", filename, "path", path)
		saved = append(saved, path)
		return nil
	})

	if err != nil {
		var werr *WriteError
		if errors.As(err, &werr) {
			return nil, err
		}
		// Keep what was written before the MIME structure broke
		logger.Warn("failed to read message structure", "error", err)
	}

	return saved, nil
}

// writeFile creates or truncates path with the contents of body. A
// partially written file is removed.
func writeFile(path string, body io.Reader) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func diskFull(err error) bool {
	return errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.EDQUOT)
}
