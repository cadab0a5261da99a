package attachment

import (
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/emersion/go-message"
	"golang.org/x/net/html/charset"
)

var (
	strictDecoder = &mime.WordDecoder{CharsetReader: charset.NewReaderLabel}

	// lenientDecoder passes the bytes of an unknown charset through
	// unchanged so they can be repaired as UTF-8.
	lenientDecoder = &mime.WordDecoder{
		CharsetReader: func(label string, input io.Reader) (io.Reader, error) {
			if r, err := charset.NewReaderLabel(label, input); err == nil {
				return r, nil
			}
			return input, nil
		},
	}
)

// partFilename returns the raw filename parameter of a part, taken from
// Content-Disposition and falling back to the Content-Type name.
func partFilename(h message.Header) string {
	if name := headerParam(h.Get("Content-Disposition"), "filename"); name != "" {
		return name
	}
	return headerParam(h.Get("Content-Type"), "name")
}

// headerParam extracts one parameter from a structured header value. Values
// mime.ParseMediaType rejects (unquoted spaces, duplicates) are scanned
// segment by segment instead.
func headerParam(value, key string) string {
	if value == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(value); err == nil {
		return params[key]
	}

	for _, segment := range strings.Split(value, ";") {
		k, v, ok := strings.Cut(segment, "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(k), key) {
			continue
		}
		return strings.Trim(strings.TrimSpace(v), `"`)
	}
	return ""
}

// decodeFilename decodes RFC 2047 encoded-words using their declared
// charset. When the charset is unknown the bytes are decoded as UTF-8
// with U+FFFD replacing invalid sequences.
func decodeFilename(s string) string {
	if !strings.Contains(s, "=?") {
		return strings.ToValidUTF8(s, "\uFFFD")
	}

	decoded, err := strictDecoder.DecodeHeader(s)
	if err != nil {
		decoded, err = lenientDecoder.DecodeHeader(s)
		if err != nil {
			decoded = s
		}
	}
	return strings.ToValidUTF8(decoded, "\uFFFD")
}

// safeName reduces a decoded filename to a single path element.
func safeName(name string) string {
	name = strings.ReplaceAll(name, "\x00", "")
	name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	if name == "." || name == ".." {
		return "_"
	}
	return name
}

// destination returns <folder>/<messageID>_<filename>.
func destination(folder, messageID, filename string) string {
	return filepath.Join(folder, messageID+"_"+safeName(filename))
}
