package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tsiory/pos-print-relay/internal/domain/entity"
	"github.com/tsiory/pos-print-relay/pkg/apperror"
	"github.com/tsiory/pos-print-relay/pkg/escpos"
)

// discountTokens mark a negative-priced line as a discount line. Keyword
// matching on product names is locale-fragile, but changing the list changes
// financial display, so it stays as the point of sale configures products.
var discountTokens = []string{"remise", "discount", "%", "sur votre"}

const logoMaxWidthPx = 384

// Composer renders one order snapshot into one finished ESC/POS buffer.
// It owns all receipt business rules; it performs no I/O.
type Composer struct {
	opts entity.RenderOptions
	enc  *escpos.TextEncoder
	now  func() time.Time
}

// NewComposer creates a composer for the given render options.
func NewComposer(opts entity.RenderOptions) (*Composer, error) {
	if opts.Width <= 0 {
		opts.Width = 42
	}
	enc, err := escpos.NewEncoder(opts.Encoding)
	if err != nil {
		return nil, err
	}
	return &Composer{opts: opts, enc: enc, now: time.Now}, nil
}

// Options returns the render configuration the composer was built with.
func (c *Composer) Options() entity.RenderOptions {
	return c.opts
}

// lineTotals carries the running figures accumulated while printing lines.
type lineTotals struct {
	withoutDiscount     float64
	individualDiscounts float64
	quantitySold        float64
}

// Compose renders the snapshot into a single byte buffer, in fixed section
// order. Missing optional data (logo, loyalty, table, customer) is handled
// by omission; only a structurally invalid snapshot is an error.
func (c *Composer) Compose(order *entity.OrderSnapshot, reprint bool) ([]byte, error) {
	if err := validateSnapshot(order); err != nil {
		return nil, err
	}

	doc := escpos.NewDocument(c.opts.Width, c.enc)

	c.writeLogo(doc, order)
	c.writeHeader(doc, order)
	c.writeTicketInfo(doc, order)

	totals := c.writeLines(doc, order)
	loyaltyPct := loyaltyDiscountPercent(order)
	c.writeGlobalDiscount(doc, loyaltyPct)
	doc.Separator('-')
	c.writeTotals(doc, order, totals, loyaltyPct)
	c.writeTaxes(doc, order)
	c.writePayments(doc, order)
	c.writeLoyalty(doc, order)
	c.writeFooter(doc)
	c.writeBarcode(doc, order)
	c.writeDrawerOrReprint(doc, order, reprint)

	doc.Raw(escpos.Feed(4))
	doc.Raw(escpos.Cut())

	return doc.Bytes(), nil
}

func validateSnapshot(order *entity.OrderSnapshot) error {
	if order == nil {
		return apperror.NewRenderDefectError("order snapshot is missing")
	}
	if order.Lines == nil {
		return apperror.NewRenderDefectError("order snapshot has no line items collection")
	}
	if math.IsNaN(order.AmountTotal) || math.IsInf(order.AmountTotal, 0) {
		return apperror.NewRenderDefectError("order amount_total is not a number")
	}
	return nil
}

func (c *Composer) money(order *entity.OrderSnapshot, amount float64) string {
	symbol := order.Company.CurrencySymbol
	if symbol == "" {
		symbol = "Ar"
	}
	return escpos.FormatMoney(amount, symbol, order.Company.CurrencyPosition)
}

func (c *Composer) writeLogo(doc *escpos.Document, order *entity.OrderSnapshot) {
	if !c.opts.PrintLogo || len(order.Company.Logo) == 0 {
		return
	}
	raster, err := escpos.Rasterize(order.Company.Logo, logoMaxWidthPx)
	if err != nil {
		// undecodable logo is treated as an absent logo, never fatal
		return
	}
	doc.SetAlign(escpos.AlignCenter)
	doc.Raw(escpos.RasterImage(raster.Bits, raster.WidthBytes, raster.Height))
	doc.Raw(escpos.Feed(2))
}

func (c *Composer) writeHeader(doc *escpos.Document, order *entity.OrderSnapshot) {
	doc.SetAlign(escpos.AlignCenter).SetBold(true).SetSize(escpos.SizeDoubleHeight)
	doc.TextF("--- %s ---", order.Company.Name)
	doc.SetSize(escpos.SizeNormal).SetBold(false)

	if order.Company.Phone != "" {
		doc.TextF("Tel: %s", order.Company.Phone)
	}
	if order.Company.Email != "" {
		doc.Text(order.Company.Email)
	}
	if order.Company.Website != "" {
		doc.Text(order.Company.Website)
	}

	doc.Separator('-')
	doc.SetAlign(escpos.AlignLeft)
}

func (c *Composer) writeTicketInfo(doc *escpos.Document, order *entity.OrderSnapshot) {
	doc.TextF("Date : %s", order.Date.Format("02/01/2006 15:04"))
	doc.TextF("Caisse : %s (ID:%d)", order.RegisterName, order.RegisterID)

	if order.CashierName != "" {
		doc.TextF("Caissier: %s", order.CashierName)
	}
	if order.CustomerName != "" {
		doc.TextF("Client: %s", order.CustomerName)
	}
	if order.Table != nil {
		doc.TextF("Salle : %s - Table : %s", order.Table.Floor, order.Table.Table)
		if order.CoversCount > 0 {
			doc.TextF("Couvert(s): %d", order.CoversCount)
		}
	}

	doc.Separator('-')
}

// isDiscountLine classifies a line as a presentation-only discount row:
// negative unit price and a discount-indicating token in the name.
func isDiscountLine(ln *entity.OrderLine) bool {
	if ln.UnitPrice >= 0 {
		return false
	}
	name := strings.ToLower(ln.Name)
	for _, tok := range discountTokens {
		if strings.Contains(name, tok) {
			return true
		}
	}
	return false
}

// lineTaxRate is the line's own rate, falling back to the order's first
// positive rate when the line carries none.
func lineTaxRate(order *entity.OrderSnapshot, ln *entity.OrderLine) float64 {
	if ln.TaxRate > 0 {
		return ln.TaxRate
	}
	return order.FirstPositiveTaxRate()
}

func (c *Composer) writeLines(doc *escpos.Document, order *entity.OrderSnapshot) lineTotals {
	doc.SetBold(true)
	doc.Row(
		escpos.Column{Text: "ARTICLES", WidthFraction: 0.55, Align: escpos.AlignLeft},
		escpos.Column{Text: "Totals TTC", WidthFraction: 0.25, Align: escpos.AlignRight},
	)
	doc.SetBold(false)

	var totals lineTotals

	for i := range order.Lines {
		ln := &order.Lines[i]
		if ln.UnitPrice >= 0 {
			totals.quantitySold += ln.Quantity
		}
		// negative-priced reward/discount rows are presentation noise; free
		// reward items still print as regular *OFFERT rows
		if isDiscountLine(ln) || (ln.IsRewardLine && ln.UnitPrice < 0) {
			continue
		}

		qty := int(ln.Quantity)
		name := ln.Name
		if name == "" {
			name = "Produit"
		}
		if r := []rune(name); len(r) > 28 {
			name = string(r[:28])
		}

		rate := lineTaxRate(order, ln) / 100
		standardTTC := ln.StandardUnitPrice * (1 + rate)
		if !ln.IsRewardLine {
			totals.withoutDiscount += standardTTC * ln.Quantity
		}

		isFree := ln.SubtotalInclusive == 0

		doc.SetBold(true)
		right := "*OFFERT"
		if !isFree {
			right = c.money(order, ln.SubtotalInclusive)
		}
		doc.Row(
			escpos.Column{Text: fmt.Sprintf("(%d) %s", qty, name), WidthFraction: 0.65, Align: escpos.AlignLeft},
			escpos.Column{Text: right, WidthFraction: 0.35, Align: escpos.AlignRight},
		)
		doc.SetBold(false)

		// explicit discount wins; otherwise infer a pricelist discount from
		// the gap between standard and applied price
		effective := ln.ExplicitDiscountPercent
		if effective <= 0 && standardTTC > 0 && ln.UnitPrice < standardTTC {
			effective = (standardTTC - ln.UnitPrice) / standardTTC * 100
		}
		if effective > 0 && !isFree {
			discountAmount := (standardTTC - ln.UnitPrice) * ln.Quantity
			totals.individualDiscounts += discountAmount
			doc.TextF("   Remise %.0f%% (-%s)", effective, c.money(order, discountAmount))
		}

		doc.Text("")
	}

	return totals
}

// loyaltyDiscountPercent derives the order-wide discount from the first
// reward line that carries one.
func loyaltyDiscountPercent(order *entity.OrderSnapshot) float64 {
	for i := range order.Lines {
		ln := &order.Lines[i]
		if ln.IsRewardLine && ln.RewardDiscountPercent > 0 {
			return ln.RewardDiscountPercent
		}
	}
	return 0
}

func (c *Composer) writeGlobalDiscount(doc *escpos.Document, pct float64) {
	if pct <= 0 {
		return
	}
	doc.Separator('-')
	doc.SetAlign(escpos.AlignCenter).SetBold(true)
	doc.TextF("Remise de %.0f%% sur votre commande", pct)
	doc.SetBold(false).SetAlign(escpos.AlignLeft)
}

func (c *Composer) writeTotals(doc *escpos.Document, order *entity.OrderSnapshot, totals lineTotals, loyaltyPct float64) {
	totalsRow := func(label, value string) {
		doc.Row(
			escpos.Column{Text: label, WidthFraction: 0.55, Align: escpos.AlignLeft},
			escpos.Column{Text: value, WidthFraction: 0.25, Align: escpos.AlignRight},
		)
	}

	// 0.01 currency epsilon keeps float-equal totals from producing a
	// misleading zero-discount row
	if totals.withoutDiscount > order.AmountTotal+0.01 {
		totalsRow("TOTAL SANS REMISE", c.money(order, totals.withoutDiscount))
	}

	if totals.individualDiscounts > 0 {
		totalsRow("REMISES SUR PRODUITS", c.money(order, totals.individualDiscounts))
	}

	var globalDiscount float64
	if loyaltyPct > 0 {
		globalDiscount = (totals.withoutDiscount - totals.individualDiscounts) * loyaltyPct / 100
		if globalDiscount > 0 {
			totalsRow("REMISE GLOBALE", c.money(order, globalDiscount))
		}
	}

	if totalDiscount := totals.individualDiscounts + globalDiscount; totalDiscount > 0 {
		totalsRow("TOTAL DES REMISES", c.money(order, totalDiscount))
	}

	doc.SetBold(true)
	totalsRow(fmt.Sprintf("TOTAL A PAYER (%d)", int(totals.quantitySold)), c.money(order, order.AmountTotal))
	doc.SetBold(false)
}

func (c *Composer) writeTaxes(doc *escpos.Document, order *entity.OrderSnapshot) {
	if len(order.TaxDetails) == 0 || order.AmountTax <= 0 {
		return
	}
	doc.Text("")
	doc.Row(
		escpos.Column{Text: "TAUX", WidthFraction: 0.25, Align: escpos.AlignCenter},
		escpos.Column{Text: "HT", WidthFraction: 0.25, Align: escpos.AlignRight},
		escpos.Column{Text: "TVA", WidthFraction: 0.25, Align: escpos.AlignRight},
		escpos.Column{Text: "TTC", WidthFraction: 0.25, Align: escpos.AlignRight},
	)
	doc.Separator('-')

	for _, tax := range order.TaxDetails {
		doc.Row(
			escpos.Column{Text: fmt.Sprintf("%.0f%%", tax.Rate), WidthFraction: 0.25, Align: escpos.AlignCenter},
			escpos.Column{Text: c.money(order, tax.Base), WidthFraction: 0.25, Align: escpos.AlignRight},
			escpos.Column{Text: c.money(order, tax.Amount), WidthFraction: 0.25, Align: escpos.AlignRight},
			escpos.Column{Text: c.money(order, tax.Total), WidthFraction: 0.25, Align: escpos.AlignRight},
		)
	}
}

func (c *Composer) writePayments(doc *escpos.Document, order *entity.OrderSnapshot) {
	if len(order.Payments) > 0 {
		doc.Text("")
		doc.Text("Encaissement:")
		for _, p := range order.Payments {
			if p.Amount <= 0 {
				continue
			}
			doc.Row(
				escpos.Column{Text: p.MethodName, WidthFraction: 0.6, Align: escpos.AlignLeft},
				escpos.Column{Text: c.money(order, p.Amount), WidthFraction: 0.4, Align: escpos.AlignRight},
			)
		}
	}

	var tendered float64
	for _, p := range order.Payments {
		if p.Amount > 0 {
			tendered += p.Amount
		}
	}
	if change := tendered - order.AmountTotal; change > 0.01 {
		doc.Row(
			escpos.Column{Text: "Rendu", WidthFraction: 0.6, Align: escpos.AlignLeft},
			escpos.Column{Text: c.money(order, change), WidthFraction: 0.4, Align: escpos.AlignRight},
		)
	}
}

func (c *Composer) writeLoyalty(doc *escpos.Document, order *entity.OrderSnapshot) {
	if c.opts.ShowLoyalty && order.Loyalty != nil {
		loyalty := order.Loyalty
		doc.Text("")
		doc.SetBold(true).SetAlign(escpos.AlignCenter)
		doc.Text("******** VOTRE COMPTE FIDÉLITÉ ********")
		doc.SetBold(false).SetAlign(escpos.AlignLeft)

		doc.TextF("Numéro Carte: %s", loyalty.CardNumber)
		doc.Separator('-')

		unit := loyalty.PointName
		if unit == "" {
			unit = "pts"
		}
		if loyalty.PreviousPoints != nil && *loyalty.PreviousPoints > 0 {
			doc.TextF("Points de fidélité : %.1f %s", *loyalty.PreviousPoints, unit)
		}
		if loyalty.PointsEarned != nil && *loyalty.PointsEarned > 0 {
			doc.TextF("Points gagnés: +%.1f %s", *loyalty.PointsEarned, unit)
		}
		if loyalty.PointsUsed != nil && *loyalty.PointsUsed > 0 {
			doc.TextF("Points utilisés: %.1f %s", *loyalty.PointsUsed, unit)
		}
		if loyalty.CurrentPoints > 0 {
			doc.SetBold(true)
			doc.TextF("Nouveau solde: %.1f %s", loyalty.CurrentPoints, unit)
			doc.SetBold(false)
		}
		return
	}

	doc.Text("")
	doc.SetAlign(escpos.AlignCenter).SetBold(true)
	doc.Text("*** PAS DE CARTE FIDÉLITÉ ? ***")
	doc.SetBold(false)
	doc.Text("Demandez votre carte, elle est gratuite!")
	doc.SetAlign(escpos.AlignLeft)
}

func (c *Composer) writeFooter(doc *escpos.Document) {
	doc.Text("")
	doc.SetAlign(escpos.AlignCenter)
	doc.Text(c.opts.FooterMessage)
	doc.Text(c.opts.GoodbyeMessage)
}

func (c *Composer) writeBarcode(doc *escpos.Document, order *entity.OrderSnapshot) {
	if !c.opts.PrintBarcode {
		return
	}
	doc.Raw(escpos.Feed(1))
	doc.SetAlign(escpos.AlignCenter)
	doc.Raw(escpos.Feed(1))
	doc.Raw(escpos.BarcodeEAN13(order.BarcodePayload()))
}

func (c *Composer) writeDrawerOrReprint(doc *escpos.Document, order *entity.OrderSnapshot, reprint bool) {
	if reprint {
		doc.SetAlign(escpos.AlignCenter).SetBold(true)
		doc.TextF("*** Réimpression du Ticket %s ***", c.now().Format("2006-01-02 15:04:05"))
		doc.SetBold(false).SetAlign(escpos.AlignLeft)
		return
	}

	for _, p := range order.Payments {
		if strings.EqualFold(p.MethodName, "cash") {
			doc.Raw(escpos.OpenCashDrawer(escpos.DrawerPrimary))
			break
		}
	}
}
