package gatepass

import (
	"errors"
	"testing"
	"time"
)

func validTestConfig() Config {
	cfg := defaultConfig()
	cfg.Token.Secret = []byte(testSecret)
	return cfg
}

func TestConfigValidateAcceptsDefaultsWithSecret(t *testing.T) {
	cfg := validTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestConfigValidateRejectsMissingSecret(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); !errors.Is(err, ErrSecretRequired) {
		t.Fatalf("expected ErrSecretRequired, got %v", err)
	}
}

func TestConfigValidateRejectsBadFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative ack timeout", func(c *Config) { c.Scan.AckTimeout = -time.Second }},
		{"empty terminal id", func(c *Config) { c.Terminal.ID = "" }},
		{"empty redis prefix", func(c *Config) { c.Storage.RedisPrefix = "" }},
		{"audit enabled zero buffer", func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.BufferSize = 0
		}},
	}

	for _, tc := range cases {
		cfg := validTestConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestCloneConfigCopiesSecret(t *testing.T) {
	cfg := validTestConfig()
	clone := cloneConfig(cfg)

	clone.Token.Secret[0] ^= 0xff
	if cfg.Token.Secret[0] == clone.Token.Secret[0] {
		t.Fatal("expected cloned secret to be an independent copy")
	}
}
