package escpos

import (
	"math"
	"strings"
	"testing"
)

func TestRowExactWidth(t *testing.T) {
	tests := []struct {
		name  string
		width int
		cols  []Column
	}{
		{"two columns", 32, []Column{
			{"ARTICLES", 0.55, AlignLeft},
			{"Totals TTC", 0.25, AlignRight},
		}},
		{"item and price", 42, []Column{
			{"(2) Café au lait", 0.65, AlignLeft},
			{"2 000.00Ar", 0.35, AlignRight},
		}},
		{"four tax columns", 42, []Column{
			{"TAUX", 0.25, AlignCenter},
			{"HT", 0.25, AlignRight},
			{"TVA", 0.25, AlignRight},
			{"TTC", 0.25, AlignRight},
		}},
		{"fractions under one", 32, []Column{
			{"a", 0.1, AlignLeft},
			{"b", 0.2, AlignCenter},
			{"c", 0.3, AlignRight},
		}},
		{"single column", 20, []Column{
			{"just text", 1.0, AlignLeft},
		}},
		{"overflowing text", 32, []Column{
			{strings.Repeat("x", 60), 0.55, AlignLeft},
			{strings.Repeat("y", 60), 0.45, AlignRight},
		}},
	}
	for _, tt := range tests {
		got := Row(tt.width, tt.cols...)
		if len([]rune(got)) != tt.width {
			t.Errorf("%s: Row width = %d, want %d: %q", tt.name, len([]rune(got)), tt.width, got)
		}
	}
}

func TestRowTruncationMarker(t *testing.T) {
	got := Row(32, Column{"a very long product name that overflows", 0.5, AlignLeft}, Column{"1.00", 0.5, AlignRight})
	// first column is 16 chars: 15 kept + "."
	if got[:16] != "a very long pro." {
		t.Errorf("truncated cell = %q", got[:16])
	}
}

func TestRowLastColumnAbsorbsRemainder(t *testing.T) {
	// 0.55 of 32 floors to 17, so the last column must get 15.
	got := Row(32, Column{"L", 0.55, AlignLeft}, Column{"R", 0.25, AlignRight})
	if len(got) != 32 {
		t.Fatalf("row length = %d", len(got))
	}
	if got[31] != 'R' {
		t.Errorf("right-aligned value not flush with edge: %q", got)
	}
}

func TestSeparator(t *testing.T) {
	if got := Separator(32, '-'); got != strings.Repeat("-", 32) {
		t.Errorf("Separator(32, '-') = %q", got)
	}
	if got := Separator(0, '-'); got != "" {
		t.Errorf("Separator(0, '-') = %q", got)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   float64
		symbol   string
		position string
		want     string
	}{
		{1234.5, "Ar", "after", "1 234.50Ar"},
		{1234.5, "Ar", "before", "Ar1 234.50"},
		{0, "Ar", "after", "0.00Ar"},
		{999.999, "Ar", "after", "1 000.00Ar"},
		{1234567.89, "€", "after", "1 234 567.89€"},
		{100, "$", "before", "$100.00"},
		{-2500, "Ar", "after", "-2 500.00Ar"},
		{math.NaN(), "Ar", "after", "0.00Ar"},
		{math.Inf(1), "Ar", "before", "Ar0.00"},
	}
	for _, tt := range tests {
		got := FormatMoney(tt.amount, tt.symbol, tt.position)
		if got != tt.want {
			t.Errorf("FormatMoney(%v, %q, %q) = %q, want %q", tt.amount, tt.symbol, tt.position, got, tt.want)
		}
	}
}
