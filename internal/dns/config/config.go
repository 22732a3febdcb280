package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	CacheSize uint `koanf:"cache_size" validate:"required,gte=1"`

	// DisableCache disables answer caching when set to true.
	// Useful for testing scenarios where cache behavior needs to be bypassed.
	DisableCache bool `koanf:"disable_cache"`

	// DefaultTTL is the TTL in seconds applied to zone records with no
	// explicit TTL when the zone file declares no $TTL directive.
	DefaultTTL uint `koanf:"default_ttl" validate:"required,gte=1"`

	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// Port is the network port the DNS server will bind to.
	Port int `koanf:"port" validate:"required,gte=1,lt=65535"`

	// QueryTimeout is the per-query handling deadline in seconds.
	QueryTimeout uint `koanf:"query_timeout" validate:"required,gte=1"`

	// Transports lists the transports to serve, any of "udp" and "tcp".
	Transports []string `koanf:"transports" validate:"required,dive,transport"`

	// ZoneDir is the directory where zone files are located.
	ZoneDir string `koanf:"zone_dir" validate:"required"`
}

// DEFAULT_APP_CONFIG defines the default application configuration settings
// for the DNS service. It includes default values for cache size, default TTL,
// environment, log level, listening port, query timeout, transports, and zone
// directory.
var DEFAULT_APP_CONFIG = AppConfig{
	CacheSize:    1000,
	DisableCache: false,
	DefaultTTL:   300,
	Env:          "prod",
	LogLevel:     "info",
	Port:         53,
	QueryTimeout: 5,
	Transports:   []string{"udp", "tcp"},
	ZoneDir:      "/etc/az-dns/zones/",
}

// validTransport validates whether the provided field value names a
// supported DNS transport.
func validTransport(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "udp", "tcp":
		return true
	default:
		return false
	}
}

// envLoader is a function that loads environment variables with the prefix "DNS_".
// It transforms the keys to lowercase and removes the prefix.
// and can be mocked in tests.
var envLoader = func(k *koanf.Koanf) error {
	// Load environment variables with prefix "DNS_".
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "DNS_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "DNS_"))
			value = strings.TrimSpace(value)

			if value == "" {
				return key, value
			}

			if strings.Contains(value, " ") || strings.Contains(value, ",") {
				parts := strings.FieldsFunc(value, func(r rune) bool {
					return r == ' ' || r == ','
				})
				return key, parts
			}

			return key, value
		},
	}), nil)
}

// defaultLoader loads default configuration values into the provided Koanf instance
// using the structs provider and the DEFAULT_APP_CONFIG struct. It returns an error
// if loading fails.
var defaultLoader = func(k *koanf.Koanf) error {
	// Load default values using structs provider.
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers a custom validation function "transport" with
// the provided validator. Returns an error if registration fails.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("transport", validTransport)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	// Load default values using structs provider.
	err := defaultLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	// Load environment variables with prefix "DNS_", using koanf/providers/env/v2 and Opt pattern.
	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig

	// Unmarshal the loaded configuration into AppConfig struct.
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Validate the configuration.
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Register the custom validation function for transport names.
	err = registerValidation(validate)
	if err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
