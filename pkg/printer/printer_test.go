package printer

import (
	"errors"
	"testing"
)

type fakePrinter struct {
	err     error
	printed [][]byte
}

func (f *fakePrinter) Print(data []byte) error {
	f.printed = append(f.printed, data)
	return f.err
}

func (f *fakePrinter) Close() error      { return nil }
func (f *fakePrinter) IsConnected() bool { return f.err == nil }

func TestChainFirstSuccessShortCircuits(t *testing.T) {
	first := &fakePrinter{}
	second := &fakePrinter{}
	chain := NewChain(first, second)

	if err := chain.Print([]byte("job")); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if len(first.printed) != 1 {
		t.Errorf("first strategy printed %d times, want 1", len(first.printed))
	}
	if len(second.printed) != 0 {
		t.Errorf("second strategy should not be tried after a success")
	}
}

func TestChainFallsBackInOrder(t *testing.T) {
	first := &fakePrinter{err: errors.New("offline")}
	second := &fakePrinter{}
	chain := NewChain(first, second)

	if err := chain.Print([]byte("job")); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if len(first.printed) != 1 || len(second.printed) != 1 {
		t.Errorf("expected both strategies tried once: %d, %d", len(first.printed), len(second.printed))
	}
}

func TestChainExhaustionFails(t *testing.T) {
	first := &fakePrinter{err: errors.New("offline")}
	second := &fakePrinter{err: errors.New("no device")}
	chain := NewChain(first, second)

	err := chain.Print([]byte("job"))
	if !errors.Is(err, ErrAllStrategiesFailed) {
		t.Fatalf("err = %v, want ErrAllStrategiesFailed", err)
	}
	// each strategy is attempted exactly once, no automatic retry
	if len(first.printed) != 1 || len(second.printed) != 1 {
		t.Errorf("strategies retried: %d, %d", len(first.printed), len(second.printed))
	}
}

func TestNewPrinterFromConfig(t *testing.T) {
	tests := []struct {
		name        string
		printerType string
		usbPath     string
		address     string
		queueName   string
		wantErr     bool
	}{
		{"usb ok", "usb", "/dev/usb/lp0", "", "", false},
		{"usb missing path", "usb", "", "", "", true},
		{"network ok", "network", "", "192.168.1.50:9100", "", false},
		{"network missing address", "network", "", "", "", true},
		{"spooler ok", "spooler", "", "", "POS80", false},
		{"spooler missing queue", "spooler", "", "", "", true},
		{"auto with everything", "auto", "/dev/usb/lp0", "192.168.1.50:9100", "POS80", false},
		{"auto with nothing", "auto", "", "", "", true},
		{"none", "none", "", "", "", false},
		{"empty defaults to none", "", "", "", "", false},
		{"unknown", "laser", "", "", "", true},
	}
	for _, tt := range tests {
		p, err := NewPrinterFromConfig(tt.printerType, tt.usbPath, tt.address, tt.queueName)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if err == nil && p == nil {
			t.Errorf("%s: nil printer without error", tt.name)
		}
	}
}
