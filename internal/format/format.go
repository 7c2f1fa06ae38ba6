// Package format classifies uploaded schedule documents by content.
package format

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"unicode/utf8"
)

// Kind is the detected shape of a document.
type Kind int

const (
	Unknown Kind = iota
	Tabular
	Markup
	FreeText
	// PDF documents are converted to FreeText before extraction.
	PDF
)

func (k Kind) String() string {
	switch k {
	case Tabular:
		return "tabular"
	case Markup:
		return "markup"
	case FreeText:
		return "freetext"
	case PDF:
		return "pdf"
	default:
		return "unknown"
	}
}

// sniffLen bounds how much of a document is inspected.
const sniffLen = 64 * 1024

var markupMarkers = [][]byte{
	[]byte("<!doctype html"), []byte("<html"), []byte("<body"), []byte("<span"), []byte("<div"),
}

// Sniff returns the Kind of b. Binary content that is neither PDF nor valid
// UTF-8 text is Unknown.
func Sniff(b []byte) Kind {
	head := b
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	head = bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
	trimmed := bytes.TrimLeft(head, " \t\r\n")
	if len(trimmed) == 0 {
		return Unknown
	}
	if bytes.HasPrefix(trimmed, []byte("%PDF")) {
		return PDF
	}
	if !looksLikeText(head) {
		return Unknown
	}
	lower := bytes.ToLower(head)
	for _, m := range markupMarkers {
		if bytes.Contains(lower, m) {
			return Markup
		}
	}
	if isDelimited(head) {
		return Tabular
	}
	return FreeText
}

func looksLikeText(b []byte) bool {
	if bytes.IndexByte(b, 0) >= 0 {
		return false
	}
	// A truncated head may end inside a multi-byte rune.
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return true
		}
		b = b[:len(b)-1]
	}
	return utf8.Valid(b)
}

// isDelimited reports whether the first lines parse as comma separated rows
// of a consistent width of at least three columns.
func isDelimited(b []byte) bool {
	const sampleLines = 5
	var sample bytes.Buffer
	sc := bufio.NewScanner(bytes.NewReader(b))
	sc.Buffer(make([]byte, 0, 4096), sniffLen)
	lines := 0
	for sc.Scan() && lines < sampleLines {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		sample.Write(line)
		sample.WriteByte('\n')
		lines++
	}
	if lines == 0 {
		return false
	}
	r := csv.NewReader(&sample)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	width := -1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return false
		}
		if width == -1 {
			width = len(rec)
		}
		// Trailing rows may be short when an optional last column is empty.
		if len(rec) < 3 || len(rec) > width {
			return false
		}
	}
	return width >= 3
}
