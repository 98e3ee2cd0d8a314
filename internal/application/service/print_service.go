package service

import (
	"context"
	"log"
	"time"

	"github.com/tsiory/pos-print-relay/internal/domain/entity"
	"github.com/tsiory/pos-print-relay/internal/domain/repository"
	"github.com/tsiory/pos-print-relay/internal/infrastructure/statestore"
	"github.com/tsiory/pos-print-relay/pkg/apperror"
	"github.com/tsiory/pos-print-relay/pkg/printer"
)

// PrintService drives the whole pipeline: fetch an order snapshot, compose
// the receipt, deliver the bytes, record the outcome.
type PrintService struct {
	source      repository.OrderSource
	composer    *Composer
	printer     printer.Printer
	printerType string
	deviceName  string
	endpoint    string
	state       *statestore.Store
}

// NewPrintService creates the print service.
func NewPrintService(
	source repository.OrderSource,
	composer *Composer,
	p printer.Printer,
	printerType, deviceName, endpoint string,
	state *statestore.Store,
) *PrintService {
	return &PrintService{
		source:      source,
		composer:    composer,
		printer:     p,
		printerType: printerType,
		deviceName:  deviceName,
		endpoint:    endpoint,
		state:       state,
	}
}

// PrinterStatus is the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrintService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
	}
}

// RenderOptions exposes the active render configuration.
func (s *PrintService) RenderOptions() entity.RenderOptions {
	return s.composer.Options()
}

// PrintResult reports one handled print instruction.
type PrintResult struct {
	OrderName string  `json:"order_name"`
	Total     float64 `json:"total"`
	Bytes     int     `json:"bytes"`
	Reprint   bool    `json:"reprint"`
}

// RenderReceipt fetches the order and composes its receipt without printing.
// An empty name falls back to the most recent order for register/user.
func (s *PrintService) RenderReceipt(ctx context.Context, name string, registerID, userID int, reprint bool) (*entity.OrderSnapshot, []byte, error) {
	order, err := s.lookup(ctx, name, registerID, userID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.composer.Compose(order, reprint)
	if err != nil {
		return nil, nil, err
	}
	return order, data, nil
}

// PrintOrder renders an order's receipt and delivers it to the printer.
// On delivery failure the rendered buffer is reported in the error path but
// not discarded upstream; a caller may fetch it again via RenderReceipt and
// re-submit without a new render.
func (s *PrintService) PrintOrder(ctx context.Context, name string, registerID, userID int, reprint bool) (*PrintResult, error) {
	order, data, err := s.RenderReceipt(ctx, name, registerID, userID, reprint)
	if err != nil {
		return nil, err
	}

	if err := s.printer.Print(data); err != nil {
		log.Printf("Printer error (order %s): %v", order.Name, err)
		return nil, apperror.NewDeliveryError("failed to print receipt: " + err.Error())
	}

	s.recordPrint(order.Name, reprint)

	return &PrintResult{
		OrderName: order.Name,
		Total:     order.AmountTotal,
		Bytes:     len(data),
		Reprint:   reprint,
	}, nil
}

// TestPrint sends a synthetic receipt to the printer. The snapshot is
// returned so callers can inspect it when no hardware is attached.
func (s *PrintService) TestPrint() (*entity.OrderSnapshot, error) {
	order := testSnapshot(time.Now())
	data, err := s.composer.Compose(order, false)
	if err != nil {
		return order, err
	}
	if err := s.printer.Print(data); err != nil {
		return order, apperror.NewDeliveryError("test print failed: " + err.Error())
	}
	return order, nil
}

func (s *PrintService) lookup(ctx context.Context, name string, registerID, userID int) (*entity.OrderSnapshot, error) {
	if name != "" {
		return s.source.GetByName(ctx, name)
	}
	return s.source.GetLast(ctx, registerID, userID)
}

func (s *PrintService) recordPrint(orderName string, reprint bool) {
	if s.state == nil {
		return
	}
	err := s.state.RecordPrint(s.endpoint, s.deviceName, statestore.HistoryEntry{
		OrderName:  orderName,
		DeviceName: s.deviceName,
		PrintedAt:  time.Now(),
		Reprint:    reprint,
	})
	if err != nil {
		// prefill state is best effort, the print already succeeded
		log.Printf("Warning: failed to record print history: %v", err)
	}
}

func testSnapshot(now time.Time) *entity.OrderSnapshot {
	return &entity.OrderSnapshot{
		Name:         "TEST-001",
		ID:           1,
		Date:         now,
		RegisterName: "Caisse Test",
		RegisterID:   1,
		CashierName:  "System",
		Company: entity.Company{
			ID:               1,
			Name:             "IMPRIMANTE TEST",
			Phone:            "+261 00 000 00",
			CurrencySymbol:   "Ar",
			CurrencyPosition: "after",
		},
		Lines: []entity.OrderLine{
			{Name: "Article Test 1", Quantity: 1, UnitPrice: 1200, StandardUnitPrice: 1000, SubtotalInclusive: 1200, SubtotalExclusive: 1000, TaxRate: 20},
			{Name: "Article Test 2", Quantity: 2, UnitPrice: 600, StandardUnitPrice: 500, SubtotalInclusive: 1200, SubtotalExclusive: 1000, TaxRate: 20},
		},
		Payments:    []entity.Payment{{MethodName: "Cash", Amount: 2400}},
		AmountTotal: 2400,
		AmountTax:   400,
		TaxDetails: []entity.TaxDetail{
			{Rate: 20, Base: 2000, Amount: 400, Total: 2400},
		},
	}
}
