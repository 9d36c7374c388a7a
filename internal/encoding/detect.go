// Package encoding normalises uploaded text files to UTF-8. Spreadsheets
// exported on Windows machines usually arrive as Windows-1252 or UTF-16.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names a supported input encoding.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO88591    Charset = "ISO-8859-1"
	ISO885915   Charset = "ISO-8859-15"
)

const sniffLen = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Detect guesses the charset of a sample. BOMs win, then UTF-8 validity, then
// chardet. Anything unrecognised is treated as Windows-1252.
func Detect(sample []byte) Charset {
	switch {
	case bytes.HasPrefix(sample, bomUTF8):
		return UTF8
	case bytes.HasPrefix(sample, bomUTF16LE):
		return UTF16LE
	case bytes.HasPrefix(sample, bomUTF16BE):
		return UTF16BE
	case utf8.Valid(trimPartialRune(sample)):
		return UTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil {
		return Windows1252
	}

	switch Charset(result.Charset) {
	case UTF16LE, UTF16BE, ISO88591, ISO885915:
		return Charset(result.Charset)
	}

	return Windows1252
}

// NewUTF8Reader sniffs the start of r and returns a reader yielding UTF-8.
// A UTF-8 BOM is dropped.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	sample, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	cs := Detect(sample)

	if cs == UTF8 {
		if bytes.HasPrefix(sample, bomUTF8) {
			_, _ = br.Discard(len(bomUTF8))
		}

		return br, nil
	}

	return transform.NewReader(br, decoder(cs).NewDecoder()), nil
}

// trimPartialRune drops a multi-byte sequence cut off at the end of a sample.
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}

			return b
		}
	}

	return b
}

func decoder(cs Charset) encoding.Encoding {
	switch cs {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case ISO88591:
		return charmap.ISO8859_1
	case ISO885915:
		return charmap.ISO8859_15
	}

	return charmap.Windows1252
}
