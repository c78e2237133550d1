// Package config loads service settings from flags, environment variables
// and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the complete service configuration.
type Config struct {
	Port         string
	DatabasePath string
	Environment  string
	Version      string

	PaymentBypass   bool
	StripeSecretKey string

	Vapi              VapiConfig
	SharedAssistantID string

	MailerSend MailerSendConfig

	OTelExporter    string
	OTelEndpoint    string
	OTelInsecure    bool
	OTelSampleRatio float64

	StepTimeout time.Duration
}

type VapiConfig struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Model             string
	Voice             string
}

type MailerSendConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// Production reports whether the service runs in the production environment.
func (c Config) Production() bool { return c.Environment == "production" }

var (
	ErrBypassInProduction = errors.New("payment bypass cannot be enabled in production")
	ErrNoSharedAssistant  = errors.New("assistant.shared_id is required")
	ErrNoStripeKey        = errors.New("stripe.secret_key is required unless payment bypass is enabled")
)

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.PaymentBypass && c.Production() {
		errs = append(errs, ErrBypassInProduction)
	}
	if c.SharedAssistantID == "" {
		errs = append(errs, ErrNoSharedAssistant)
	}
	if !c.PaymentBypass && c.StripeSecretKey == "" {
		errs = append(errs, ErrNoStripeKey)
	}
	if c.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("database.path", "onboardiq.db")
	v.SetDefault("environment", "development")
	v.SetDefault("version", "0.1.0")
	v.SetDefault("payment.bypass", false)
	v.SetDefault("vapi.base_url", "https://api.vapi.ai")
	v.SetDefault("vapi.timeout", 15*time.Second)
	v.SetDefault("vapi.requests_per_second", 5.0)
	v.SetDefault("mailersend.from_name", "onboardiq")
	v.SetDefault("otel.exporter", "stdout")
	v.SetDefault("otel.sample_ratio", 1.0)
	v.SetDefault("saga.step_timeout", 20*time.Second)
}

// Environment names accepted in addition to the ONBOARDIQ_ prefixed ones.
var aliases = map[string][]string{
	"server.port":   {"PORT"},
	"database.path": {"DATABASE_PATH"},
	"environment":   {"OTEL_ENVIRONMENT"},
	"otel.exporter": {"OTEL_EXPORTER"},
}

// Load reads the configuration. args are the command-line arguments
// without the program name.
func Load(args []string) (Config, error) {
	fs := pflag.NewFlagSet("onboardiq", pflag.ContinueOnError)
	configFile := fs.String("config", "", "path to a YAML config file")
	fs.String("port", "", "HTTP listen port")
	fs.String("database-path", "", "SQLite database file")
	fs.String("environment", "", "deployment environment (development, test, production)")
	fs.Bool("payment-bypass", false, "skip payment authorization (never in production)")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parsing flags: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("onboardiq")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range aliases {
		envs := append([]string{"ONBOARDIQ_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return Config{}, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	for key, flag := range map[string]string{
		"server.port":    "port",
		"database.path":  "database-path",
		"environment":    "environment",
		"payment.bypass": "payment-bypass",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return Config{}, fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}

	if err := readConfigFile(v, *configFile); err != nil {
		return Config{}, err
	}

	return Config{
		Port:              v.GetString("server.port"),
		DatabasePath:      v.GetString("database.path"),
		Environment:       v.GetString("environment"),
		Version:           v.GetString("version"),
		PaymentBypass:     v.GetBool("payment.bypass"),
		StripeSecretKey:   v.GetString("stripe.secret_key"),
		SharedAssistantID: v.GetString("assistant.shared_id"),
		Vapi: VapiConfig{
			BaseURL:           v.GetString("vapi.base_url"),
			APIKey:            v.GetString("vapi.api_key"),
			Timeout:           v.GetDuration("vapi.timeout"),
			RequestsPerSecond: v.GetFloat64("vapi.requests_per_second"),
			Model:             v.GetString("vapi.model"),
			Voice:             v.GetString("vapi.voice"),
		},
		MailerSend: MailerSendConfig{
			APIKey:    v.GetString("mailersend.api_key"),
			FromEmail: v.GetString("mailersend.from_email"),
			FromName:  v.GetString("mailersend.from_name"),
		},
		OTelExporter:    v.GetString("otel.exporter"),
		OTelEndpoint:    v.GetString("otel.endpoint"),
		OTelInsecure:    v.GetBool("otel.insecure"),
		OTelSampleRatio: v.GetFloat64("otel.sample_ratio"),
		StepTimeout:     v.GetDuration("saga.step_timeout"),
	}, nil
}

// readConfigFile loads path when given. Without a path, onboardiq.yaml is
// looked up in the working directory and /etc/onboardiq and may be absent.
func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("onboardiq")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/onboardiq")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}
