// --- START OF FINAL REVISED FILE pkg/auditor/encoding/handler.go ---
package encoding

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

const (
	sniffLen      = 512  // bytes passed to http.DetectContentType
	checkLen      = 1024 // bytes scanned for NUL
	nullThreshold = 0.10
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// textMIMETypes lists the non text/* types a snapshot may sniff as.
var textMIMETypes = map[string]bool{
	"application/json":         true,
	"application/yaml":         true,
	"application/toml":         true,
	"application/octet-stream": true, // sniffing gives up on short or odd files, NUL check decides
}

// Handler converts snapshot text to UTF-8 and rejects binary input.
type Handler interface {
	// Decode returns the UTF-8 form of content and the IANA name of the source encoding.
	// certain is false when the encoding was guessed and no default applied.
	Decode(content []byte) (utf8Content []byte, encodingName string, certain bool, err error)
	// IsBinary reports whether content looks like binary data.
	IsBinary(content []byte) bool
}

type charsetHandler struct {
	defaultEncoding string
}

// NewCharsetHandler creates a Handler. defaultEncoding is used when detection is uncertain;
// an unknown name is ignored.
func NewCharsetHandler(defaultEncoding string) Handler {
	return &charsetHandler{defaultEncoding: strings.TrimSpace(defaultEncoding)}
}

// Decode implements Handler.
func (h *charsetHandler) Decode(content []byte) ([]byte, string, bool, error) {
	if bytes.HasPrefix(content, utf8BOM) {
		return content[len(utf8BOM):], "utf-8", true, nil
	}

	enc, name, certain := charset.DetermineEncoding(content, "text/plain")
	if !certain && utf8.Valid(content) {
		// Valid UTF-8 passes through unchanged.
		return content, "utf-8", true, nil
	}
	if !certain && h.defaultEncoding != "" {
		if fallback, fallbackName := charset.Lookup(h.defaultEncoding); fallback != nil {
			enc, name, certain = fallback, fallbackName, true
		}
	}
	if enc == nil {
		return content, "utf-8", certain, nil
	}
	if name == "" {
		name = "unknown"
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(content), enc.NewDecoder()))
	if err != nil {
		return content, name, certain, fmt.Errorf("failed to convert from '%s': %w", name, err)
	}
	return bytes.TrimPrefix(decoded, utf8BOM), name, certain, nil
}

// IsBinary implements Handler.
func (h *charsetHandler) IsBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	// UTF-16 with a BOM is text.
	if bytes.HasPrefix(content, []byte{0xFF, 0xFE}) || bytes.HasPrefix(content, []byte{0xFE, 0xFF}) {
		return false
	}

	contentType := http.DetectContentType(content[:min(len(content), sniffLen)])
	mimeType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	if !strings.HasPrefix(mimeType, "text/") && !textMIMETypes[mimeType] {
		return true
	}

	window := content[:min(len(content), checkLen)]
	nulls := bytes.Count(window, []byte{0x00})
	return float64(nulls)/float64(len(window)) > nullThreshold
}

// --- END OF FINAL REVISED FILE pkg/auditor/encoding/handler.go ---
