// --- START OF FINAL REVISED FILE pkg/auditor/format/detector.go ---
package format

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Format is a snapshot serialization.
type Format string

const (
	JSON    Format = "json"
	YAML    Format = "yaml"
	TOML    Format = "toml"
	MsgPack Format = "msgpack"
)

// ErrUnsupportedFormat is returned when no snapshot format can be determined.
var ErrUnsupportedFormat = errors.New("unsupported snapshot format")

// Parse validates a format name. Common aliases are accepted.
func Parse(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	case "msgpack", "mpk", "messagepack":
		return MsgPack, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Detector determines the format of a snapshot file.
type Detector interface {
	// Detect uses the extension first and the content second.
	Detect(content []byte, filePath string) (Format, error)
}

type enryDetector struct {
	overrides map[string]Format // keyed by lowercase extension with leading dot
}

// NewEnryDetector creates a Detector backed by go-enry's language tables.
// overrides maps file extensions to format names; invalid entries are dropped.
func NewEnryDetector(overrides map[string]string) Detector {
	normalized := make(map[string]Format)
	for ext, name := range overrides {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f, err := Parse(name)
		if err != nil {
			continue
		}
		normalized[ext] = f
	}
	return &enryDetector{overrides: normalized}
}

// Detect implements Detector.
func (d *enryDetector) Detect(content []byte, filePath string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if f, ok := d.overrides[ext]; ok {
		return f, nil
	}
	if ext == ".msgpack" || ext == ".mpk" {
		return MsgPack, nil
	}

	// Extensions like .json map to several linguist languages; any serialization match wins.
	for _, lang := range enry.GetLanguagesByExtension(filePath, content, nil) {
		if f, ok := fromLanguage(lang); ok {
			return f, nil
		}
	}
	if lang, ok := enry.GetLanguageByFilename(filePath); ok {
		if f, ok := fromLanguage(lang); ok {
			return f, nil
		}
	}
	if f, ok := sniff(content); ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filePath)
}

func fromLanguage(lang string) (Format, bool) {
	switch lang {
	case "JSON", "JSON with Comments", "JSON5":
		return JSON, true
	case "YAML":
		return YAML, true
	case "TOML":
		return TOML, true
	}
	return "", false
}

// sniff guesses from the first significant byte.
func sniff(content []byte) (Format, bool) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return "", false
	}
	switch c := trimmed[0]; {
	case c == '{':
		return JSON, true
	case c >= 0x80 && c <= 0x8f, c == 0xde, c == 0xdf:
		return MsgPack, true // fixmap, map16, map32
	case c == '[' && bytes.Contains(firstLine(trimmed), []byte("]")) && !bytes.HasPrefix(trimmed, []byte("[{")):
		return TOML, true
	case bytes.HasPrefix(trimmed, []byte("---")), bytes.HasPrefix(trimmed, []byte("- ")),
		bytes.Contains(firstLine(trimmed), []byte(": ")), bytes.HasSuffix(bytes.TrimSpace(firstLine(trimmed)), []byte(":")):
		return YAML, true
	case bytes.Contains(firstLine(trimmed), []byte(" = ")):
		return TOML, true
	}
	return "", false
}

func firstLine(b []byte) []byte {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i]
	}
	return b
}

// --- END OF FINAL REVISED FILE pkg/auditor/format/detector.go ---
