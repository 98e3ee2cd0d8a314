package entity

// RenderOptions is the per-device render configuration. It changes rarely
// and is the only runtime configuration that affects rendering.
type RenderOptions struct {
	Width          int    `json:"width"`    // paper width in characters: 32 (58mm) or 42 (80mm)
	Encoding       string `json:"encoding"` // cp437, cp850, cp858 or utf-8
	PrintLogo      bool   `json:"print_logo"`
	PrintBarcode   bool   `json:"print_barcode"`
	ShowLoyalty    bool   `json:"show_loyalty"`
	FooterMessage  string `json:"footer_message"`
	GoodbyeMessage string `json:"goodbye_message"`
}

// DefaultRenderOptions mirrors the point-of-sale defaults.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Width:          42,
		Encoding:       "cp437",
		PrintLogo:      true,
		PrintBarcode:   true,
		ShowLoyalty:    true,
		FooterMessage:  "Merci de votre visite !",
		GoodbyeMessage: "A bientôt !",
	}
}
