// Package encoding turns timesheet exports into UTF-8 text.
package encoding

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	textenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names the encoding an export was read as.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	ISO88592    Charset = "ISO-8859-2"
	Windows1250 Charset = "windows-1250"
)

// sniffLen bounds how much of a file the charset guess looks at.
const sniffLen = 4096

var boms = []struct {
	prefix  []byte
	charset Charset
}{
	{prefix: []byte{0xEF, 0xBB, 0xBF}, charset: UTF8},
	{prefix: []byte{0xFF, 0xFE}, charset: UTF16LE},
	{prefix: []byte{0xFE, 0xFF}, charset: UTF16BE},
}

// Polish letters that sit on different bytes in the two code pages:
// Ą ą Ś ś Ź ź. The other Polish letters share their bytes.
var (
	cp1250Letters = []byte{0xA5, 0xB9, 0x8C, 0x9C, 0x8F, 0x9F}
	latin2Letters = []byte{0xA1, 0xB1, 0xA6, 0xB6, 0xAC, 0xBC}
)

var decoders = map[Charset]textenc.Encoding{
	UTF8:        unicode.UTF8BOM,
	UTF16LE:     unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM),
	UTF16BE:     unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM),
	ISO88592:    charmap.ISO8859_2,
	Windows1250: charmap.Windows1250,
}

// Detect guesses the charset of an export from its leading bytes. Single-byte
// input is told apart by the Polish letters only one code page has; chardet
// breaks ties and windows-1250, what Excel writes on Polish Windows, is the
// fallback.
func Detect(data []byte) Charset {
	for _, b := range boms {
		if bytes.HasPrefix(data, b.prefix) {
			return b.charset
		}
	}

	head := sniff(data)
	if utf8.Valid(head) {
		return UTF8
	}

	cp1250, latin2 := countAny(head, cp1250Letters), countAny(head, latin2Letters)

	switch {
	case cp1250 > latin2:
		return Windows1250
	case latin2 > cp1250:
		return ISO88592
	}

	res, err := chardet.NewTextDetector().DetectBest(head)
	if err == nil && Charset(res.Charset) == ISO88592 {
		return ISO88592
	}

	return Windows1250
}

// sniff cuts data to sniffLen without splitting a UTF-8 sequence.
func sniff(data []byte) []byte {
	if len(data) <= sniffLen {
		return data
	}

	for n := sniffLen; n > sniffLen-utf8.UTFMax; n-- {
		if utf8.RuneStart(data[n]) {
			return data[:n]
		}
	}

	return data[:sniffLen]
}

func countAny(data, set []byte) int {
	n := 0

	for _, b := range data {
		if bytes.IndexByte(set, b) >= 0 {
			n++
		}
	}

	return n
}

// ToUTF8 decodes a whole export, dropping any byte order mark.
func ToUTF8(data []byte) ([]byte, Charset, error) {
	cs := Detect(data)

	out, _, err := transform.Bytes(decoders[cs].NewDecoder(), data)
	if err != nil {
		return nil, cs, fmt.Errorf("decode %s: %w", cs, err)
	}

	return out, cs, nil
}
