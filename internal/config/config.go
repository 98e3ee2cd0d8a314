package config

import (
	"log"

	"github.com/spf13/viper"

	"github.com/tsiory/pos-print-relay/internal/domain/entity"
)

type Config struct {
	App       AppConfig
	Source    SourceConfig
	Database  DatabaseConfig
	Printer   PrinterConfig
	Render    RenderConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	StatePath string
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

// SourceConfig selects where order snapshots come from.
// Mode "remote" queries the backend over HTTP; "local" reads the
// point-of-sale database directly.
type SourceConfig struct {
	Mode       string
	BackendURL string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type PrinterConfig struct {
	Type      string // usb, network, spooler, auto, none
	USBPath   string
	Address   string
	QueueName string
}

// RenderConfig holds the per-device render options.
type RenderConfig struct {
	Width          int
	Encoding       string
	PrintLogo      bool
	PrintBarcode   bool
	ShowLoyalty    bool
	FooterMessage  string
	GoodbyeMessage string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "pos-print-relay")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8766")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("SOURCE_MODE", "remote")
	viper.SetDefault("SOURCE_BACKEND_URL", "http://192.168.2.125:8070")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "pos")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Indian/Antananarivo")
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_USB_PATH", "/dev/usb/lp0")
	viper.SetDefault("PRINTER_ADDRESS", "")
	viper.SetDefault("PRINTER_QUEUE_NAME", "POS80")
	viper.SetDefault("RENDER_WIDTH", 42)
	viper.SetDefault("RENDER_ENCODING", "cp437")
	viper.SetDefault("RENDER_PRINT_LOGO", true)
	viper.SetDefault("RENDER_PRINT_BARCODE", true)
	viper.SetDefault("RENDER_SHOW_LOYALTY", true)
	viper.SetDefault("RENDER_FOOTER_MESSAGE", "Merci de votre visite !")
	viper.SetDefault("RENDER_GOODBYE_MESSAGE", "A bientôt !")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("CORS_ALLOWED_METHODS", []string{})
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("STATE_PATH", "./state.json")

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Source: SourceConfig{
			Mode:       viper.GetString("SOURCE_MODE"),
			BackendURL: viper.GetString("SOURCE_BACKEND_URL"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		Printer: PrinterConfig{
			Type:      viper.GetString("PRINTER_TYPE"),
			USBPath:   viper.GetString("PRINTER_USB_PATH"),
			Address:   viper.GetString("PRINTER_ADDRESS"),
			QueueName: viper.GetString("PRINTER_QUEUE_NAME"),
		},
		Render: RenderConfig{
			Width:          viper.GetInt("RENDER_WIDTH"),
			Encoding:       viper.GetString("RENDER_ENCODING"),
			PrintLogo:      viper.GetBool("RENDER_PRINT_LOGO"),
			PrintBarcode:   viper.GetBool("RENDER_PRINT_BARCODE"),
			ShowLoyalty:    viper.GetBool("RENDER_SHOW_LOYALTY"),
			FooterMessage:  viper.GetString("RENDER_FOOTER_MESSAGE"),
			GoodbyeMessage: viper.GetString("RENDER_GOODBYE_MESSAGE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		StatePath: viper.GetString("STATE_PATH"),
	}
}

// RenderOptions converts the render section into the composer's options.
func (c *RenderConfig) RenderOptions() entity.RenderOptions {
	opts := entity.DefaultRenderOptions()
	if c.Width > 0 {
		opts.Width = c.Width
	}
	if c.Encoding != "" {
		opts.Encoding = c.Encoding
	}
	opts.PrintLogo = c.PrintLogo
	opts.PrintBarcode = c.PrintBarcode
	opts.ShowLoyalty = c.ShowLoyalty
	if c.FooterMessage != "" {
		opts.FooterMessage = c.FooterMessage
	}
	if c.GoodbyeMessage != "" {
		opts.GoodbyeMessage = c.GoodbyeMessage
	}
	return opts
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
