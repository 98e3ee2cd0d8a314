package entity

import (
	"fmt"
	"time"
)

// Company holds the business identity printed at the top of a receipt.
type Company struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Phone            string  `json:"phone,omitempty"`
	Email            string  `json:"email,omitempty"`
	Website          string  `json:"website,omitempty"`
	Logo             []byte  `json:"logo,omitempty"`
	CurrencySymbol   string  `json:"currency_symbol"`
	CurrencyPosition string  `json:"currency_position"` // "before" or "after"
}

// OrderLine is one line of an order snapshot. UnitPrice and the line
// subtotals are tax-inclusive; StandardUnitPrice is the tax-exclusive
// catalog list price.
type OrderLine struct {
	Name                    string  `json:"name"`
	Quantity                float64 `json:"quantity"`
	UnitPrice               float64 `json:"unit_price"`
	StandardUnitPrice       float64 `json:"standard_unit_price"`
	SubtotalInclusive       float64 `json:"subtotal_inclusive"`
	SubtotalExclusive       float64 `json:"subtotal_exclusive"`
	ExplicitDiscountPercent float64 `json:"explicit_discount_percent"`
	TaxRate                 float64 `json:"tax_rate"` // percent; 0 = none attached
	IsRewardLine            bool    `json:"is_reward_line"`
	RewardDiscountPercent   float64 `json:"reward_discount_percent,omitempty"`
}

// Payment is one settlement entry. Amount may be negative (refund); only
// positive entries count toward the amount tendered.
type Payment struct {
	MethodName string  `json:"method_name"`
	Amount     float64 `json:"amount"`
}

// Loyalty is the customer's loyalty account state at settlement time.
// Nullable figures are pointers: nil means unknown, not zero.
type Loyalty struct {
	CardNumber     string   `json:"card_number"`
	ProgramName    string   `json:"program_name"`
	PointName      string   `json:"point_name"`
	CurrentPoints  float64  `json:"current_points"`
	PreviousPoints *float64 `json:"previous_points,omitempty"`
	PointsEarned   *float64 `json:"points_earned,omitempty"`
	PointsUsed     *float64 `json:"points_used,omitempty"`
}

// TaxDetail is one aggregated entry of the tax breakdown, per distinct rate.
type TaxDetail struct {
	Rate   float64 `json:"rate"`
	Base   float64 `json:"base"`
	Amount float64 `json:"amount"`
	Total  float64 `json:"total"`
}

// TableInfo locates a restaurant order.
type TableInfo struct {
	Floor string `json:"floor"`
	Table string `json:"table"`
}

// OrderSnapshot is the immutable input of one receipt render. It is
// constructed fresh per print request, consumed once, and discarded.
type OrderSnapshot struct {
	Name          string      `json:"name"`
	ID            int         `json:"id"`
	Date          time.Time   `json:"date"`
	Company       Company     `json:"company"`
	RegisterName  string      `json:"register_name"`
	RegisterID    int         `json:"register_id"`
	CashierName   string      `json:"cashier_name,omitempty"`
	CustomerName  string      `json:"customer_name,omitempty"`
	Table         *TableInfo  `json:"table,omitempty"`
	CoversCount   int         `json:"covers_count,omitempty"`
	Lines         []OrderLine `json:"lines"`
	Payments      []Payment   `json:"payments"`
	AmountTotal   float64     `json:"amount_total"`
	AmountTax     float64     `json:"amount_tax"`
	Loyalty       *Loyalty    `json:"loyalty,omitempty"`
	TaxDetails    []TaxDetail `json:"tax_details"`
	BarcodeSource string      `json:"barcode_source,omitempty"`
}

// BarcodePayload returns the string the EAN-13 barcode encodes: the
// snapshot's own source when present, otherwise a deterministic
// store+register+date+order derivation.
func (o *OrderSnapshot) BarcodePayload() string {
	if o.BarcodeSource != "" {
		return o.BarcodeSource
	}
	return fmt.Sprintf("%02d%02d%s%04d",
		o.Company.ID%100,
		o.RegisterID%100,
		o.Date.Format("0102"),
		o.ID%10000,
	)
}

// FirstPositiveTaxRate returns the first positive tax rate carried by any
// line, or 0 when no line is taxed. Lines without a rate of their own fall
// back to it when a tax-inclusive standard price must be derived.
func (o *OrderSnapshot) FirstPositiveTaxRate() float64 {
	for _, ln := range o.Lines {
		if ln.TaxRate > 0 {
			return ln.TaxRate
		}
	}
	return 0
}
