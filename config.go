package gatepass

import (
	"errors"
	"time"
)

// Config defines a public type used by gatepass APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token    TokenConfig
	Scan     ScanConfig
	Terminal TerminalConfig
	Storage  StorageConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by gatepass APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	// Secret signs and verifies entry credentials. It must match the secret
	// the registration system issued credentials with.
	Secret []byte
}

/*
====================================
SCAN CONFIG
====================================
*/

// ScanConfig defines a public type used by gatepass APIs.
//
// ScanConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ScanConfig struct {
	// AckTimeout auto-acknowledges a resolved scan after this duration, so an
	// operator who never presses anything does not wedge the terminal. Zero
	// disables auto-acknowledge.
	AckTimeout time.Duration
}

/*
====================================
TERMINAL CONFIG
====================================
*/

// TerminalConfig defines a public type used by gatepass APIs.
//
// TerminalConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TerminalConfig struct {
	// ID names this gate terminal in audit events and Redis key prefixes.
	ID string
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig defines a public type used by gatepass APIs.
//
// StorageConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StorageConfig struct {
	RedisPrefix string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by gatepass APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by gatepass APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Scan: ScanConfig{
			AckTimeout: 0,
		},
		Terminal: TerminalConfig{
			ID: "gate-1",
		},
		Storage: StorageConfig{
			RedisPrefix: "gp",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = cloneBytes(cfg.Token.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	if len(c.Token.Secret) == 0 {
		return ErrSecretRequired
	}

	if c.Scan.AckTimeout < 0 {
		return errors.New("Scan AckTimeout must be >= 0")
	}

	if c.Terminal.ID == "" {
		return errors.New("Terminal ID must be set")
	}

	if c.Storage.RedisPrefix == "" {
		return errors.New("Storage RedisPrefix must be set")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}

	return nil
}
