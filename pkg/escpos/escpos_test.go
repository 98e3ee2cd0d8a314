package escpos

import (
	"bytes"
	"strings"
	"testing"
)

func TestBarcodeEAN13Normalization(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc123456789999", "123456789999"}, // digits extracted, truncated to 12
		{"42", "000000000042"},              // zero-filled left
		{"", "000000000000"},
		{"123456789012", "123456789012"},
		{"9990212150042", "999021215004"}, // 13 digits: first 12 kept
	}
	for _, tt := range tests {
		got := BarcodeEAN13(tt.in)
		if !bytes.Contains(got, []byte(tt.want)) {
			t.Errorf("BarcodeEAN13(%q) does not embed %q: %q", tt.in, tt.want, got)
		}
		// symbology selector immediately precedes the digits, NUL terminates
		idx := bytes.Index(got, []byte(tt.want))
		if idx < 2 || got[idx-2] != 'k' || got[idx-1] != 0x02 {
			t.Errorf("BarcodeEAN13(%q) missing GS k \\x02 prefix", tt.in)
		}
		if got[idx+12] != 0x00 {
			t.Errorf("BarcodeEAN13(%q) missing NUL terminator", tt.in)
		}
	}
}

func TestFeedClamped(t *testing.T) {
	tests := []struct {
		n    int
		want byte
	}{
		{0, 0},
		{4, 4},
		{255, 255},
		{300, 255},
		{-1, 0},
	}
	for _, tt := range tests {
		got := Feed(tt.n)
		want := []byte{ESC, 'd', tt.want}
		if !bytes.Equal(got, want) {
			t.Errorf("Feed(%d) = %v, want %v", tt.n, got, want)
		}
	}
}

func TestStyleCommands(t *testing.T) {
	if !bytes.Equal(Init(), []byte{0x1B, '@'}) {
		t.Errorf("Init() = %v", Init())
	}
	if !bytes.Equal(Bold(true), []byte{0x1B, 'E', 1}) {
		t.Errorf("Bold(true) = %v", Bold(true))
	}
	if !bytes.Equal(Bold(false), []byte{0x1B, 'E', 0}) {
		t.Errorf("Bold(false) = %v", Bold(false))
	}
	if !bytes.Equal(Align(AlignCenter), []byte{0x1B, 'a', 1}) {
		t.Errorf("Align(center) = %v", Align(AlignCenter))
	}
	if !bytes.Equal(Cut(), []byte{0x1D, 'V', 0}) {
		t.Errorf("Cut() = %v", Cut())
	}
	if !bytes.Equal(OpenCashDrawer(DrawerPrimary), []byte{0x1B, 'p', 0, 0x19, 0xFA}) {
		t.Errorf("OpenCashDrawer(primary) = %v", OpenCashDrawer(DrawerPrimary))
	}
	if !bytes.Equal(OpenCashDrawer(DrawerAlternate), []byte{0x1B, 'p', 1, 0x19, 0xFA}) {
		t.Errorf("OpenCashDrawer(alternate) = %v", OpenCashDrawer(DrawerAlternate))
	}
}

func TestRasterImageHeader(t *testing.T) {
	bitmap := []byte{0xFF, 0x00, 0xFF, 0x00}
	got := RasterImage(bitmap, 2, 2)
	wantHeader := []byte{0x1D, 'v', '0', 0x00, 2, 0, 2, 0}
	if !bytes.Equal(got[:8], wantHeader) {
		t.Errorf("header = %v, want %v", got[:8], wantHeader)
	}
	if !bytes.Equal(got[8:], bitmap) {
		t.Errorf("bitmap not carried verbatim: %v", got[8:])
	}

	// 16-bit dimension split
	got = RasterImage(nil, 300, 700)
	wantHeader = []byte{0x1D, 'v', '0', 0x00, 44, 1, 188, 2}
	if !bytes.Equal(got[:8], wantHeader) {
		t.Errorf("wide header = %v, want %v", got[:8], wantHeader)
	}
}

func TestDocumentTextTranscoding(t *testing.T) {
	doc := NewDocument(42, MustEncoder(EncodingCP437))
	doc.Text("Réimpression")
	out := doc.Bytes()
	if !bytes.HasPrefix(out, Init()) {
		t.Fatal("document must start with init")
	}
	// é is 0x82 in CP437
	if !bytes.Contains(out, []byte{'R', 0x82, 'i'}) {
		t.Errorf("expected CP437 transcoding of é, got %v", out)
	}
	if bytes.Contains(out, []byte("é")) {
		t.Error("raw UTF-8 leaked into CP437 output")
	}
}

func TestDocumentRowUsesWidth(t *testing.T) {
	doc := NewDocument(32, MustEncoder(EncodingUTF8))
	doc.Row(
		Column{Text: "ARTICLES", WidthFraction: 0.55, Align: AlignLeft},
		Column{Text: "Totals TTC", WidthFraction: 0.25, Align: AlignRight},
	)
	out := doc.Bytes()
	line := out[len(Init()) : len(out)-1] // strip init and trailing LF
	if len(line) != 32 {
		t.Errorf("row length = %d, want 32: %q", len(line), line)
	}
	if !strings.HasPrefix(string(line), "ARTICLES") {
		t.Errorf("row = %q", line)
	}
	if !strings.HasSuffix(string(line), "Totals TTC") {
		t.Errorf("row = %q", line)
	}
}
