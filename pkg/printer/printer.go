package printer

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrAllStrategiesFailed reports that every configured delivery strategy was
// tried and none accepted the job. The rendered buffer is still valid and may
// be re-submitted without re-rendering.
var ErrAllStrategiesFailed = errors.New("printer: all delivery strategies failed")

// Printer sends raw ESC/POS data to a thermal printer. Implementations must
// treat the bytes as opaque binary: no re-encoding, no newline translation.
type Printer interface {
	// Print sends raw ESC/POS bytes to the printer.
	Print(data []byte) error
	// Close releases the printer connection/handle.
	Close() error
	// IsConnected returns true if the printer is reachable.
	IsConnected() bool
}

// --- USB Printer (writes to device file, e.g. /dev/usb/lp0) ---

type usbPrinter struct {
	path string
}

// NewUSBPrinter creates a printer that writes to a USB device file.
func NewUSBPrinter(devicePath string) Printer {
	return &usbPrinter{path: devicePath}
}

func (p *usbPrinter) Print(data []byte) error {
	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: failed to open USB device %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("printer: failed to write to USB device %s: %w", p.path, err)
	}
	return nil
}

func (p *usbPrinter) Close() error {
	return nil // opens/closes per print job
}

func (p *usbPrinter) IsConnected() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// --- Network Printer (dials TCP, e.g. 192.168.1.100:9100) ---

type networkPrinter struct {
	address string
	timeout time.Duration
}

// NewNetworkPrinter creates a printer that connects via TCP.
// Address should include port, e.g. "192.168.1.100:9100".
func NewNetworkPrinter(address string) Printer {
	return &networkPrinter{
		address: address,
		timeout: 5 * time.Second,
	}
}

func (p *networkPrinter) Print(data []byte) error {
	conn, err := net.DialTimeout("tcp", p.address, p.timeout)
	if err != nil {
		return fmt.Errorf("printer: failed to connect to %s: %w", p.address, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

	if _, err = conn.Write(data); err != nil {
		return fmt.Errorf("printer: failed to write to %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) Close() error {
	return nil
}

func (p *networkPrinter) IsConnected() bool {
	conn, err := net.DialTimeout("tcp", p.address, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// --- Spooler Printer (hands the job to CUPS via lp, raw mode) ---

type spoolerPrinter struct {
	queueName string
}

// NewSpoolerPrinter creates a printer that submits raw jobs to an OS print
// queue by name, e.g. "POS80". Raw mode is mandatory: the spooler must not
// reinterpret ESC/POS control bytes.
func NewSpoolerPrinter(queueName string) Printer {
	return &spoolerPrinter{queueName: queueName}
}

func (p *spoolerPrinter) Print(data []byte) error {
	tmp, err := os.CreateTemp("", "receipt-*.bin")
	if err != nil {
		return fmt.Errorf("printer: failed to spool job: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("printer: failed to spool job: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("printer: failed to spool job: %w", err)
	}

	cmd := exec.Command("lp", "-d", p.queueName, "-o", "raw", tmp.Name())
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("printer: lp -d %s failed: %w (%s)", p.queueName, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (p *spoolerPrinter) Close() error {
	return nil
}

func (p *spoolerPrinter) IsConnected() bool {
	return exec.Command("lpstat", "-p", p.queueName).Run() == nil
}

// --- Null Printer (no-op, used when no printer is configured) ---

type nullPrinter struct{}

// NewNullPrinter creates a no-op printer for environments without hardware.
func NewNullPrinter() Printer {
	return &nullPrinter{}
}

func (p *nullPrinter) Print(data []byte) error {
	return nil
}

func (p *nullPrinter) Close() error {
	return nil
}

func (p *nullPrinter) IsConnected() bool {
	return false
}

// --- Chain (ordered fallback over multiple strategies) ---

type chainPrinter struct {
	strategies []Printer
}

// NewChain creates a printer that tries each strategy in order; the first
// success short-circuits the rest. Exhausting all strategies is a failure
// and is never retried automatically within one job.
func NewChain(strategies ...Printer) Printer {
	return &chainPrinter{strategies: strategies}
}

func (p *chainPrinter) Print(data []byte) error {
	if len(p.strategies) == 0 {
		return ErrAllStrategiesFailed
	}
	var errs []string
	for _, s := range p.strategies {
		if err := s.Print(data); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrAllStrategiesFailed, strings.Join(errs, "; "))
}

func (p *chainPrinter) Close() error {
	var firstErr error
	for _, s := range p.strategies {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (p *chainPrinter) IsConnected() bool {
	for _, s := range p.strategies {
		if s.IsConnected() {
			return true
		}
	}
	return false
}

// NewPrinterFromConfig creates the appropriate Printer based on type.
//
//	printerType: "usb", "network", "spooler", "auto", or "none"
//	usbPath: device path for USB printers (e.g. "/dev/usb/lp0")
//	address: TCP address for network printers (e.g. "192.168.1.100:9100")
//	queueName: OS print queue name for spooler printers (e.g. "POS80")
//
// "auto" chains every strategy whose setting is present, tried in the order
// network, USB, spooler.
func NewPrinterFromConfig(printerType, usbPath, address, queueName string) (Printer, error) {
	switch printerType {
	case "usb":
		if usbPath == "" {
			return nil, fmt.Errorf("printer: USB path is required for USB printer type")
		}
		return NewUSBPrinter(usbPath), nil
	case "network":
		if address == "" {
			return nil, fmt.Errorf("printer: address is required for network printer type")
		}
		return NewNetworkPrinter(address), nil
	case "spooler":
		if queueName == "" {
			return nil, fmt.Errorf("printer: queue name is required for spooler printer type")
		}
		return NewSpoolerPrinter(queueName), nil
	case "auto":
		var strategies []Printer
		if address != "" {
			strategies = append(strategies, NewNetworkPrinter(address))
		}
		if usbPath != "" {
			strategies = append(strategies, NewUSBPrinter(usbPath))
		}
		if queueName != "" {
			strategies = append(strategies, NewSpoolerPrinter(queueName))
		}
		if len(strategies) == 0 {
			return nil, fmt.Errorf("printer: auto mode needs at least one of address, USB path or queue name")
		}
		return NewChain(strategies...), nil
	case "none", "":
		return NewNullPrinter(), nil
	default:
		return nil, fmt.Errorf("printer: unknown printer type %q (use usb, network, spooler, auto, or none)", printerType)
	}
}
