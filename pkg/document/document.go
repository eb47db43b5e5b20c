// CLAUDE:SUMMARY Document load/save: source and target encodings, byte-order-mark stripping, atomic in-place writes.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Error classes. Every error returned by this package wraps exactly one.
var (
	ErrRead     = errors.New("read error")
	ErrWrite    = errors.New("write error")
	ErrEncoding = errors.New("encoding error")
)

// DefaultEncoding is used when Options leaves an encoding empty.
const DefaultEncoding = "utf-8"

// Options selects the encodings used on load and save.
// Names are WHATWG labels ("utf-8", "windows-1252", "utf-16le", ...).
type Options struct {
	SourceEncoding string
	TargetEncoding string
}

// Document is a text file held in memory between one load and one save.
type Document struct {
	Path string
	Text string
	// Encoding is the encoding the file was decoded with; a BOM overrides
	// the configured source encoding.
	Encoding       string
	TargetEncoding string
	HadBOM         bool
	Size           int

	mode fs.FileMode
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// Load reads the whole file at path and decodes it. A leading byte-order
// mark is discarded.
func Load(path string, opts Options) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrRead, path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	target, err := encodingName(opts.TargetEncoding)
	if err != nil {
		return nil, fmt.Errorf("%w: target: %w", ErrEncoding, err)
	}

	text, used, hadBOM, err := decode(raw, opts.SourceEncoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEncoding, path, err)
	}

	return &Document{
		Path:           path,
		Text:           text,
		Encoding:       used,
		TargetEncoding: target,
		HadBOM:         hadBOM,
		Size:           len(raw),
		mode:           info.Mode().Perm(),
	}, nil
}

// Save encodes text with the target encoding and atomically replaces the
// file. No byte-order mark is written. On failure the original file is left
// as it was.
func (d *Document) Save(text string) error {
	enc, err := lookup(d.TargetEncoding)
	if err != nil {
		return fmt.Errorf("%w: target: %w", ErrEncoding, err)
	}
	text = strings.TrimPrefix(text, "\uFEFF")
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: text is not valid UTF-8", ErrEncoding)
	}
	data, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrEncoding, d.TargetEncoding, err)
	}
	if err := writeAtomic(d.Path, data, d.mode); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	d.Text = text
	return nil
}

func decode(raw []byte, name string) (text, used string, hadBOM bool, err error) {
	enc, err := lookup(name)
	if err != nil {
		return "", "", false, err
	}
	used, err = encodingName(name)
	if err != nil {
		return "", "", false, err
	}

	body := raw
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		used, hadBOM, body = "utf-8", true, raw[len(bomUTF8):]
	case bytes.HasPrefix(raw, bomUTF16BE):
		used, hadBOM = "utf-16be", true
	case bytes.HasPrefix(raw, bomUTF16LE):
		used, hadBOM = "utf-16le", true
	}
	if used == "utf-8" {
		if i := invalidUTF8(body); i >= 0 {
			return "", "", false, fmt.Errorf("invalid UTF-8 at byte %d", i+len(raw)-len(body))
		}
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), raw)
	if err != nil {
		return "", "", false, fmt.Errorf("decode %s: %w", used, err)
	}
	return strings.TrimPrefix(string(out), "\uFEFF"), used, hadBOM, nil
}

// lookup resolves an encoding label; empty means UTF-8.
func lookup(name string) (encoding.Encoding, error) {
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return enc, nil
}

// encodingName returns the canonical label for name.
func encodingName(name string) (string, error) {
	enc, err := lookup(name)
	if err != nil {
		return "", err
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		return "", fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return canonical, nil
}

// invalidUTF8 returns the offset of the first invalid sequence, or -1.
func invalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
