package service

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tsiory/pos-print-relay/internal/domain/entity"
	"github.com/tsiory/pos-print-relay/pkg/apperror"
	"github.com/tsiory/pos-print-relay/pkg/escpos"
)

func testComposer(t *testing.T) *Composer {
	t.Helper()
	c, err := NewComposer(entity.RenderOptions{
		Width:          42,
		Encoding:       escpos.EncodingUTF8,
		PrintLogo:      true,
		PrintBarcode:   true,
		ShowLoyalty:    true,
		FooterMessage:  "Merci de votre visite !",
		GoodbyeMessage: "A bientôt !",
	})
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	c.now = func() time.Time { return time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC) }
	return c
}

// plainText strips ESC/POS command bytes so tests can assert on the visible
// receipt text and its ordering.
func plainText(data []byte) string {
	var sb strings.Builder
	for i := 0; i < len(data); i++ {
		b := data[i]
		switch b {
		case 0x0A:
			sb.WriteByte('\n')
		case 0x1B:
			if i+1 < len(data) {
				switch data[i+1] {
				case 'E', 'a', '!', 'd':
					i += 2
				case 'p':
					i += 4
				default:
					i++
				}
			}
		case 0x1D:
			if i+1 < len(data) {
				switch data[i+1] {
				case 'V', 'h', 'w', 'H', 'f', 'k':
					i += 2
				case 'v':
					i += 7
				default:
					i++
				}
			}
		case 0x00:
			// command terminator
		default:
			sb.WriteByte(b)
		}
	}
	return sb.String()
}

func drawerPulseCount(data []byte) int {
	return bytes.Count(data, []byte{0x1B, 'p', 0x00, 0x19, 0xFA}) +
		bytes.Count(data, []byte{0x1B, 'p', 0x01, 0x19, 0xFA})
}

func baseOrder() *entity.OrderSnapshot {
	return &entity.OrderSnapshot{
		Name:         "Order 00042-003-0007",
		ID:           42,
		Date:         time.Date(2025, 3, 14, 11, 45, 0, 0, time.UTC),
		RegisterName: "Caisse Principale",
		RegisterID:   3,
		CashierName:  "Hery",
		Company: entity.Company{
			ID:               1,
			Name:             "Chez Naina",
			Phone:            "+261 34 00 000 00",
			CurrencySymbol:   "Ar",
			CurrencyPosition: "after",
		},
		Lines: []entity.OrderLine{
			{Name: "Plat du jour", Quantity: 2, UnitPrice: 1000, SubtotalInclusive: 2000, SubtotalExclusive: 1666.67, TaxRate: 20},
			{Name: "Jus naturel", Quantity: 1, UnitPrice: 500, SubtotalInclusive: 500, SubtotalExclusive: 416.67, TaxRate: 20},
		},
		Payments:    []entity.Payment{{MethodName: "Cash", Amount: 3000}},
		AmountTotal: 2500,
		AmountTax:   416.66,
		TaxDetails: []entity.TaxDetail{
			{Rate: 20, Base: 2083.34, Amount: 416.66, Total: 2500},
		},
	}
}

func TestComposeEndToEndScenario(t *testing.T) {
	c := testComposer(t)
	data, err := c.Compose(baseOrder(), false)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	text := plainText(data)
	inOrder := []string{
		"--- Chez Naina ---",
		"Tel: +261 34 00 000 00",
		"Date : 14/03/2025 11:45",
		"Caisse : Caisse Principale (ID:3)",
		"Caissier: Hery",
		"(2) Plat du jour",
		"2 000.00Ar",
		"(1) Jus naturel",
		"500.00Ar",
		"TOTAL A PAYER (3)",
		"2 500.00Ar",
		"20%",
		"Encaissement:",
		"Cash",
		"3 000.00Ar",
		"Rendu",
		"Merci de votre visite !",
		"A bientôt !",
	}
	pos := 0
	for _, want := range inOrder {
		idx := strings.Index(text[pos:], want)
		if idx < 0 {
			t.Fatalf("receipt missing %q after position %d:\n%s", want, pos, text)
		}
		pos += idx
	}

	if !strings.Contains(text, "Rendu") || !strings.Contains(text, "500.00Ar") {
		t.Error("change due row missing")
	}
	if got := drawerPulseCount(data); got != 1 {
		t.Errorf("drawer pulses = %d, want exactly 1 for a cash original", got)
	}
	if !bytes.HasPrefix(data, []byte{0x1B, '@'}) {
		t.Error("buffer must start with printer init")
	}
	if !bytes.HasSuffix(data, []byte{0x1D, 'V', 0x00}) {
		t.Error("buffer must end with the cut command")
	}
	if !bytes.Contains(data, []byte{0x1B, 'd', 4}) {
		t.Error("missing feed 4 before cut")
	}
	// barcode section: EAN-13 selector with the derived payload
	if !bytes.Contains(data, []byte{0x1D, 'k', 0x02}) {
		t.Error("missing EAN-13 barcode command")
	}
}

func TestComposeIsIdempotentForOriginals(t *testing.T) {
	c := testComposer(t)
	first, err := c.Compose(baseOrder(), false)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	second, err := c.Compose(baseOrder(), false)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("same snapshot must render byte-identical output")
	}
}

func TestReprintAnnotationAndNoDrawer(t *testing.T) {
	c := testComposer(t)
	data, err := c.Compose(baseOrder(), true)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if got := drawerPulseCount(data); got != 0 {
		t.Errorf("drawer pulses = %d, want 0 on reprint", got)
	}
	text := plainText(data)
	if !strings.Contains(text, "Réimpression du Ticket 2025-03-14 12:30:00") {
		t.Errorf("missing reprint annotation:\n%s", text)
	}
}

func TestNoDrawerWithoutCashPayment(t *testing.T) {
	c := testComposer(t)
	order := baseOrder()
	order.Payments = []entity.Payment{{MethodName: "Carte Bancaire", Amount: 2500}}
	data, err := c.Compose(order, false)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if got := drawerPulseCount(data); got != 0 {
		t.Errorf("drawer pulses = %d, want 0 without cash", got)
	}
	if strings.Contains(plainText(data), "Rendu") {
		t.Error("no change row expected for an exact payment")
	}
}

func TestTotalWithoutDiscountEpsilonTrigger(t *testing.T) {
	c := testComposer(t)

	// standard prices above the applied ones: 2×500 HT at 20% = 1 200 TTC
	// standard vs 1 000 paid, so the no-discount total must show
	order := baseOrder()
	order.Lines = []entity.OrderLine{
		{Name: "Plat du jour", Quantity: 2, UnitPrice: 500, StandardUnitPrice: 500, SubtotalInclusive: 1000, SubtotalExclusive: 833.33, TaxRate: 20},
	}
	order.AmountTotal = 1000
	order.Payments = nil

	data, err := c.Compose(order, false)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	text := plainText(data)
	if !strings.Contains(text, "TOTAL SANS REMISE") {
		t.Errorf("expected TOTAL SANS REMISE row:\n%s", text)
	}
	if !strings.Contains(text, "1 200.00Ar") {
		t.Errorf("expected standard total 1 200.00Ar:\n%s", text)
	}
	if !strings.Contains(text, "REMISES SUR PRODUITS") {
		t.Errorf("expected per-product discount row:\n%s", text)
	}
	// pricelist discount: (600 - 500) / 600 ≈ 17%
	if !strings.Contains(text, "Remise 17%") {
		t.Errorf("expected inferred pricelist discount row:\n%s", text)
	}

	// equal totals must not produce the row (0.01 epsilon)
	order = baseOrder()
	data, err = c.Compose(order, false)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if strings.Contains(plainText(data), "TOTAL SANS REMISE") {
		t.Error("TOTAL SANS REMISE must be absent when nothing was discounted")
	}
}

func TestFreeRewardLineRendersOffert(t *testing.T) {
	c := testComposer(t)
	order := baseOrder()
	order.Lines = append(order.Lines, entity.OrderLine{
		Name:              "Café offert",
		Quantity:          1,
		UnitPrice:         0,
		StandardUnitPrice: 2500,
		SubtotalInclusive: 0,
		TaxRate:           20,
		IsRewardLine:      true,
	})

	data, err := c.Compose(order, false)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	text := plainText(data)
	if !strings.Contains(text, "*OFFERT") {
		t.Errorf("free reward line must render *OFFERT:\n%s", text)
	}
	// the reward's standard price must not trip the no-discount total
	if strings.Contains(text, "TOTAL SANS REMISE") {
		t.Errorf("reward line contributed to total without discount:\n%s", text)
	}
}

func TestGlobalLoyaltyDiscount(t *testing.T) {
	c := testComposer(t)
	order := baseOrder()
	order.Lines = []entity.OrderLine{
		{Name: "Plat du jour", Quantity: 2, UnitPrice: 600, StandardUnitPrice: 500, SubtotalInclusive: 1200, SubtotalExclusive: 1000, TaxRate: 20},
		{Name: "Remise sur votre commande", Quantity: 1, UnitPrice: -120, SubtotalInclusive: -120, IsRewardLine: true, RewardDiscountPercent: 10},
	}
	order.AmountTotal = 1080

	data, err := c.Compose(order, false)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	text := plainText(data)
	if !strings.Contains(text, "Remise de 10% sur votre commande") {
		t.Errorf("missing global discount banner:\n%s", text)
	}
	if !strings.Contains(text, "REMISE GLOBALE") {
		t.Errorf("missing REMISE GLOBALE row:\n%s", text)
	}
	if !strings.Contains(text, "TOTAL DES REMISES") {
		t.Errorf("missing TOTAL DES REMISES row:\n%s", text)
	}
	// the reward row itself is presentation noise and must not be listed
	if strings.Contains(text, "(1) Remise sur votre commande") {
		t.Errorf("discount line leaked into the items section:\n%s", text)
	}
}

func TestLoyaltyBlockPresentAndAbsent(t *testing.T) {
	c := testComposer(t)

	previous := 40.0
	earned := 12.5
	used := 2.5
	order := baseOrder()
	order.Loyalty = &entity.Loyalty{
		CardNumber:     "044216",
		ProgramName:    "Loyalty Program",
		PointName:      "pts",
		CurrentPoints:  50,
		PreviousPoints: &previous,
		PointsEarned:   &earned,
		PointsUsed:     &used,
	}

	data, err := c.Compose(order, false)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	text := plainText(data)
	for _, want := range []string{
		"VOTRE COMPTE FIDÉLITÉ",
		"Numéro Carte: 044216",
		"Points de fidélité : 40.0 pts",
		"Points gagnés: +12.5 pts",
		"Points utilisés: 2.5 pts",
		"Nouveau solde: 50.0 pts",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("loyalty block missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "PAS DE CARTE") {
		t.Error("promo message must not appear when loyalty data is present")
	}

	// without loyalty data the promo branch is printed instead
	data, err = c.Compose(baseOrder(), false)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	text = plainText(data)
	if !strings.Contains(text, "PAS DE CARTE FIDÉLITÉ ?") {
		t.Errorf("missing no-card promo message:\n%s", text)
	}
}

func TestComposeRejectsStructurallyInvalidSnapshots(t *testing.T) {
	c := testComposer(t)

	order := baseOrder()
	order.Lines = nil
	if _, err := c.Compose(order, false); !apperror.IsKind(err, apperror.KindRenderDefect) {
		t.Errorf("nil lines: err = %v, want render defect", err)
	}

	if _, err := c.Compose(nil, false); !apperror.IsKind(err, apperror.KindRenderDefect) {
		t.Errorf("nil snapshot: err = %v, want render defect", err)
	}
}

func TestOptionalSectionsAreOmittedNotFatal(t *testing.T) {
	c := testComposer(t)
	order := baseOrder()
	order.CashierName = ""
	order.CustomerName = ""
	order.Table = nil
	order.Company.Logo = []byte("not a real image")

	data, err := c.Compose(order, false)
	if err != nil {
		t.Fatalf("Compose with broken logo: %v", err)
	}
	text := plainText(data)
	if strings.Contains(text, "Caissier:") || strings.Contains(text, "Client:") || strings.Contains(text, "Salle :") {
		t.Errorf("omitted optional sections leaked:\n%s", text)
	}
	if bytes.Contains(data, []byte{0x1D, 'v', '0'}) {
		t.Error("undecodable logo must be skipped, not rendered")
	}
}

func TestBarcodeDisabled(t *testing.T) {
	opts := testComposer(t).Options()
	opts.PrintBarcode = false
	opts.ShowLoyalty = false
	c, err := NewComposer(opts)
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	data, err := c.Compose(baseOrder(), false)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if bytes.Contains(data, []byte{0x1D, 'k', 0x02}) {
		t.Error("barcode must be absent when disabled")
	}
}
