package config

import "time"

type Config struct {
	Endpoint    string        `env:"CHATWIDGET_ENDPOINT" envDefault:"http://localhost:8080/api/chat"`
	APIKey      string        `env:"CHATWIDGET_API_KEY"`
	StorePath   string        `env:"CHATWIDGET_STORE" envDefault:"chatwidget.db"`
	MinInterval time.Duration `env:"CHATWIDGET_MIN_INTERVAL" envDefault:"800ms"`
	HTTPTimeout time.Duration `env:"CHATWIDGET_HTTP_TIMEOUT" envDefault:"0s"`
	LabelsFile  string        `env:"CHATWIDGET_LABELS"`
	Debug       bool          `env:"CHATWIDGET_DEBUG" envDefault:"false"`

	Stub StubConfig
}

type StubConfig struct {
	Addr          string   `env:"CHATWIDGET_STUB_ADDR" envDefault:":8080"`
	RatePerMinute int      `env:"CHATWIDGET_STUB_RATE" envDefault:"30"`
	APIKeys       []string `env:"CHATWIDGET_STUB_API_KEYS" envSeparator:","`
	Shape         string   `env:"CHATWIDGET_STUB_SHAPE" envDefault:"plain"`
}

// Labels are the user-visible strings. Empty fields keep the built-in
// Romanian defaults.
type Labels struct {
	BotName          string      `yaml:"bot_name"`
	Send             string      `yaml:"send"`
	Sending          string      `yaml:"sending"`
	EmptyInput       string      `yaml:"empty_input"`
	ViewProduct      string      `yaml:"view_product"`
	PlaceholderImage string      `yaml:"placeholder_image"`
	BrokenImage      string      `yaml:"broken_image"`
	PrevProducts     string      `yaml:"prev_products"`
	NextProducts     string      `yaml:"next_products"`
	Errors           ErrorLabels `yaml:"errors"`
}

type ErrorLabels struct {
	RateLimited   string `yaml:"rate_limited"`
	Forbidden     string `yaml:"forbidden"`
	Communication string `yaml:"communication"`
	Network       string `yaml:"network"`
}
