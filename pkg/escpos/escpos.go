package escpos

import (
	"bytes"
	"fmt"
	"strings"
)

// ESC/POS command constants
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Text alignment
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Character size
const (
	SizeNormal       = 0x00
	SizeDoubleHeight = 0x10
	SizeDoubleWidth  = 0x20
	SizeDouble       = 0x30
)

// Cash drawer pin selection
const (
	DrawerPrimary   = 0x00
	DrawerAlternate = 0x01
)

// Init returns the ESC @ (initialize printer) command. It must precede
// all other output in a rendered receipt.
func Init() []byte {
	return []byte{ESC, '@'}
}

// Bold returns the bold toggle command. Callers are responsible for
// emitting balanced on/off pairs.
func Bold(on bool) []byte {
	b := byte(0)
	if on {
		b = 1
	}
	return []byte{ESC, 'E', b}
}

// Align returns the alignment command for AlignLeft, AlignCenter or AlignRight.
func Align(align int) []byte {
	return []byte{ESC, 'a', byte(align)}
}

// Size returns the character size command. Use SizeNormal, SizeDoubleHeight,
// SizeDoubleWidth or SizeDouble.
func Size(size byte) []byte {
	return []byte{ESC, '!', size}
}

// Feed returns the ESC d command advancing the paper n lines.
// n is clamped to the 0-255 range the command supports.
func Feed(n int) []byte {
	if n < 0 {
		n = 0
	}
	if n > 255 {
		n = 255
	}
	return []byte{ESC, 'd', byte(n)}
}

// Cut returns the full paper cut command.
func Cut() []byte {
	return []byte{GS, 'V', 0x00}
}

// OpenCashDrawer returns the drawer kick pulse for the given pin
// (DrawerPrimary or DrawerAlternate).
func OpenCashDrawer(pin byte) []byte {
	return []byte{ESC, 'p', pin, 0x19, 0xFA}
}

// BarcodeEAN13 encodes raw input as an EAN-13 barcode command.
// Non-digit characters are stripped, the result is truncated to the first
// 12 digits and left zero-filled to exactly 12. This normalization is
// deterministic and lossy on purpose; the printer derives the check digit.
func BarcodeEAN13(raw string) []byte {
	digits := normalizeEAN13(raw)
	var buf bytes.Buffer
	buf.Write([]byte{GS, 'h', 100})  // height
	buf.Write([]byte{GS, 'w', 3})    // module width
	buf.Write([]byte{GS, 'H', 2})    // HRI below barcode
	buf.Write([]byte{GS, 'f', 0})    // HRI font A
	buf.Write([]byte{GS, 'k', 0x02}) // EAN-13 symbology
	buf.WriteString(digits)
	buf.WriteByte(0x00)
	return buf.Bytes()
}

func normalizeEAN13(raw string) string {
	var sb strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
			if sb.Len() == 12 {
				break
			}
		}
	}
	digits := sb.String()
	if len(digits) < 12 {
		digits = strings.Repeat("0", 12-len(digits)) + digits
	}
	return digits
}

// RasterImage frames a 1-bit-per-pixel bitmap as a GS v 0 raster command.
// widthBytes must equal ceil(widthPixels/8); a wrong value prints garbage
// but does not crash, so it stays the caller's responsibility.
func RasterImage(bitmap []byte, widthBytes, heightPixels int) []byte {
	header := []byte{
		GS, 'v', '0', 0x00,
		byte(widthBytes % 256), byte(widthBytes / 256),
		byte(heightPixels % 256), byte(heightPixels / 256),
	}
	out := make([]byte, 0, len(header)+len(bitmap))
	out = append(out, header...)
	out = append(out, bitmap...)
	return out
}

// Document builds an ESC/POS byte stream for thermal printers.
// Raw command bytes pass through untouched; text lines are transcoded to
// the configured codepage before being appended.
type Document struct {
	buf     bytes.Buffer
	width   int
	encoder *TextEncoder
}

// NewDocument creates a document with the given character width and text
// encoding. Common widths: 32 for 58mm paper, 42 for 80mm paper.
func NewDocument(charWidth int, enc *TextEncoder) *Document {
	if charWidth <= 0 {
		charWidth = 42
	}
	if enc == nil {
		enc = MustEncoder(EncodingCP437)
	}
	d := &Document{width: charWidth, encoder: enc}
	d.Raw(Init())
	return d
}

// Width returns the document width in characters.
func (d *Document) Width() int {
	return d.width
}

// Raw appends command bytes verbatim.
func (d *Document) Raw(cmd []byte) *Document {
	d.buf.Write(cmd)
	return d
}

// Text writes a line of text followed by a line feed.
func (d *Document) Text(s string) *Document {
	d.buf.Write(d.encoder.Encode(s))
	d.buf.WriteByte(LF)
	return d
}

// TextF writes a formatted line of text followed by a line feed.
func (d *Document) TextF(format string, args ...interface{}) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// LineFeed writes an empty line.
func (d *Document) LineFeed() *Document {
	d.buf.WriteByte(LF)
	return d
}

// SetAlign appends the alignment command.
func (d *Document) SetAlign(align int) *Document {
	return d.Raw(Align(align))
}

// SetBold appends the bold toggle command.
func (d *Document) SetBold(on bool) *Document {
	return d.Raw(Bold(on))
}

// SetSize appends the character size command.
func (d *Document) SetSize(size byte) *Document {
	return d.Raw(Size(size))
}

// Separator writes a full-width repeated-character line.
func (d *Document) Separator(char byte) *Document {
	return d.Text(Separator(d.width, char))
}

// Row lays out the given columns across the document width and writes the
// resulting line.
func (d *Document) Row(cols ...Column) *Document {
	return d.Text(Row(d.width, cols...))
}

// Bytes returns the accumulated ESC/POS byte stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}
