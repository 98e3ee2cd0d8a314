package escpos

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Supported codepage names. Thermal printers almost always speak one of the
// DOS codepages; UTF-8 is offered for printers with native support.
const (
	EncodingCP437 = "cp437"
	EncodingCP850 = "cp850"
	EncodingCP858 = "cp858"
	EncodingUTF8  = "utf-8"
)

// TextEncoder transcodes receipt text to the printer codepage. Characters
// outside the codepage are replaced, never dropped, so line widths stay exact.
type TextEncoder struct {
	name string
	enc  *encoding.Encoder
}

// NewEncoder returns an encoder for the named codepage.
func NewEncoder(name string) (*TextEncoder, error) {
	var cm *charmap.Charmap
	switch name {
	case EncodingCP437:
		cm = charmap.CodePage437
	case EncodingCP850:
		cm = charmap.CodePage850
	case EncodingCP858:
		cm = charmap.CodePage858
	case EncodingUTF8, "":
		return &TextEncoder{name: EncodingUTF8}, nil
	default:
		return nil, fmt.Errorf("escpos: unknown encoding %q", name)
	}
	return &TextEncoder{name: name, enc: encoding.ReplaceUnsupported(cm.NewEncoder())}, nil
}

// MustEncoder is NewEncoder for known-good names; it panics otherwise.
func MustEncoder(name string) *TextEncoder {
	e, err := NewEncoder(name)
	if err != nil {
		panic(err)
	}
	return e
}

// Name returns the codepage name.
func (e *TextEncoder) Name() string {
	return e.name
}

// Encode transcodes s to the target codepage. UTF-8 passes through.
func (e *TextEncoder) Encode(s string) []byte {
	if e.enc == nil {
		return []byte(s)
	}
	out, err := e.enc.Bytes([]byte(s))
	if err != nil {
		// ReplaceUnsupported makes encoding total; keep the text legible anyway.
		return []byte(s)
	}
	return out
}
