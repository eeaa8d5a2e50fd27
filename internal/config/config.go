// Package config loads and exposes the privacy service configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level service configuration.
type Config struct {
	// Enabled is the module master switch. When false every privacy feature,
	// including the scheduled erasure job, is inert.
	Enabled bool

	Erasure   ErasureConfig
	Export    ExportConfig
	Scheduler SchedulerConfig
	Database  DatabaseConfig
	Kafka     KafkaConfig
}

// ErasureConfig drives the erase request lifecycle and strategy resolution.
type ErasureConfig struct {
	// Enabled toggles the erasure feature independently of the module switch.
	Enabled bool

	// TimeLapse is the grace period between request creation and eligibility
	// for execution.
	TimeLapse time.Duration

	// DefaultStrategy applies to registered components listed under neither
	// per-strategy list. One of "anonymize" or "delete".
	DefaultStrategy string

	// AnonymizeComponents and DeleteComponents are the per-strategy component
	// name lists (comma-separated in the config source).
	AnonymizeComponents []string
	DeleteComponents    []string

	// RemoveCustomerNoOrders lets the customer anonymize processor delete the
	// account outright when the customer has no orders.
	RemoveCustomerNoOrders bool
}

// ExportConfig drives the personal data export pipeline.
type ExportConfig struct {
	Enabled  bool
	Renderer string

	// Directory is where rendered export documents are written.
	Directory string

	// CustomerAttributes and AddressAttributes are the attribute allow-lists
	// applied when collecting customer profile data.
	CustomerAttributes []string
	AddressAttributes  []string
}

// SchedulerConfig controls the periodic erasure batch job.
type SchedulerConfig struct {
	// Interval between batch runs.
	Interval time.Duration

	// RatePerSecond and Burst throttle request processing within one batch.
	RatePerSecond float64
	Burst         int
}

// DatabaseConfig carries the postgres connection settings.
type DatabaseConfig struct {
	DSN           string
	MigrationsDir string
}

// KafkaConfig carries the event bus connection settings.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Load reads the configuration from the given YAML file (optional) and from
// PRIVACY_* environment variables, which take precedence.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("enabled", true)
	v.SetDefault("erasure.enabled", true)
	v.SetDefault("erasure.time_lapse", "720h")
	v.SetDefault("erasure.strategy", "anonymize")
	v.SetDefault("erasure.components.anonymize", "customer,subscriber")
	v.SetDefault("erasure.components.delete", "order")
	v.SetDefault("erasure.remove_customer", false)
	v.SetDefault("export.enabled", true)
	v.SetDefault("export.renderer", "json")
	v.SetDefault("export.directory", "/var/lib/privacy-engine/exports")
	v.SetDefault("export.customer_attributes", "firstname,middlename,lastname,email,dob,taxvat")
	v.SetDefault("export.address_attributes", "firstname,lastname,street,city,postcode,telephone,country_id")
	v.SetDefault("scheduler.interval", "1h")
	v.SetDefault("scheduler.rate_per_second", 5.0)
	v.SetDefault("scheduler.burst", 1)
	v.SetDefault("database.migrations_dir", "db/migrations")
	v.SetDefault("kafka.topic", "privacy.erasure.events")

	v.SetEnvPrefix("PRIVACY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", path, err)
		}
	}

	cfg := &Config{
		Enabled: v.GetBool("enabled"),
		Erasure: ErasureConfig{
			Enabled:                v.GetBool("erasure.enabled"),
			TimeLapse:              v.GetDuration("erasure.time_lapse"),
			DefaultStrategy:        v.GetString("erasure.strategy"),
			AnonymizeComponents:    splitList(v.GetString("erasure.components.anonymize")),
			DeleteComponents:       splitList(v.GetString("erasure.components.delete")),
			RemoveCustomerNoOrders: v.GetBool("erasure.remove_customer"),
		},
		Export: ExportConfig{
			Enabled:            v.GetBool("export.enabled"),
			Renderer:           v.GetString("export.renderer"),
			Directory:          v.GetString("export.directory"),
			CustomerAttributes: splitList(v.GetString("export.customer_attributes")),
			AddressAttributes:  splitList(v.GetString("export.address_attributes")),
		},
		Scheduler: SchedulerConfig{
			Interval:      v.GetDuration("scheduler.interval"),
			RatePerSecond: v.GetFloat64("scheduler.rate_per_second"),
			Burst:         v.GetInt("scheduler.burst"),
		},
		Database: DatabaseConfig{
			DSN:           v.GetString("database.dsn"),
			MigrationsDir: v.GetString("database.migrations_dir"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("kafka.brokers")),
			Topic:   v.GetString("kafka.topic"),
		},
	}

	return cfg, nil
}

// splitList parses a comma-separated value, trimming whitespace and dropping
// empty entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
