package importer

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

const sniffLen = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// detectCharset picks the decoder for a sample of the input. A nil encoding
// means the input is already UTF-8. skip is the number of BOM bytes to drop.
//
// Order: BOM, UTF-8 validity, chardet, Windows-1252.
func detectCharset(sample []byte) (enc encoding.Encoding, skip int) {
	switch {
	case bytes.HasPrefix(sample, bomUTF8):
		return nil, len(bomUTF8)
	case bytes.HasPrefix(sample, bomUTF16LE):
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), 0
	case bytes.HasPrefix(sample, bomUTF16BE):
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), 0
	}

	if utf8.Valid(trimPartialRune(sample)) {
		return nil, 0
	}

	if result, err := chardet.NewTextDetector().DetectBest(sample); err == nil {
		switch result.Charset {
		case "UTF-8":
			return nil, 0
		case "ISO-8859-1", "windows-1252":
			return charmap.Windows1252, 0
		case "ISO-8859-15":
			return charmap.ISO8859_15, 0
		}
	}

	return charmap.Windows1252, 0
}

// trimPartialRune drops a multi-byte sequence cut off by the sample boundary.
func trimPartialRune(b []byte) []byte {
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}

			break
		}
	}

	return b
}

// utf8Reader returns a reader that yields the input decoded to UTF-8.
func utf8Reader(r io.Reader) (*bufio.Reader, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	sample, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	enc, skip := detectCharset(sample)

	if skip > 0 {
		_, _ = br.Discard(skip)
	}

	if enc == nil {
		return br, nil
	}

	return bufio.NewReader(transform.NewReader(br, enc.NewDecoder())), nil
}
