package escpos

import (
	"fmt"
	"math"
	"strings"
)

// Column describes one cell of a fixed-width row. WidthFraction is the share
// of the total width allocated to the column (0..1); the last column always
// receives whatever width remains, absorbing rounding.
type Column struct {
	Text          string
	WidthFraction float64
	Align         int
}

// Row renders columns into a line of exactly totalWidth characters.
// Text longer than its column is truncated to columnWidth-1 characters plus
// a "." truncation marker.
func Row(totalWidth int, cols ...Column) string {
	var sb strings.Builder
	remaining := totalWidth
	for i, col := range cols {
		colWidth := int(float64(totalWidth) * col.WidthFraction)
		if i == len(cols)-1 {
			colWidth = remaining
		}
		remaining -= colWidth
		sb.WriteString(fitCell(col.Text, colWidth, col.Align))
	}
	return sb.String()
}

func fitCell(text string, width int, align int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) > width {
		if width == 1 {
			return "."
		}
		text = string(runes[:width-1]) + "."
		runes = []rune(text)
	}
	pad := width - len(runes)
	switch align {
	case AlignRight:
		return strings.Repeat(" ", pad) + text
	case AlignCenter:
		left := pad / 2
		return strings.Repeat(" ", left) + text + strings.Repeat(" ", pad-left)
	default:
		return text + strings.Repeat(" ", pad)
	}
}

// Separator returns a repeated-character line of exactly width characters.
func Separator(width int, char byte) string {
	if width <= 0 {
		return ""
	}
	return strings.Repeat(string(char), width)
}

// FormatMoney formats an amount with two decimals and the integer part
// grouped by spaces every three digits, placing the currency symbol before
// or after the number. Non-finite amounts format as 0.00.
func FormatMoney(amount float64, symbol, position string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	s := fmt.Sprintf("%.2f", amount)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart := s[:len(s)-3]
	decPart := s[len(s)-3:]
	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(' ')
		}
		grouped.WriteRune(digit)
	}
	amountStr := grouped.String() + decPart
	if neg {
		amountStr = "-" + amountStr
	}
	if position == "before" {
		return symbol + amountStr
	}
	return amountStr + symbol
}
