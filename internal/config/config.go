// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads txsequencer settings from the environment
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/blinklabs-io/txsequencer/ledger"
	"github.com/blinklabs-io/txsequencer/ledger/policy"
)

const (
	PolicyEngineCEL  = "cel"
	PolicyEngineExpr = "expr"
)

// Config holds the operator settings. Command line flags override these.
type Config struct {
	DBPath            string        `env:"TXSEQ_DB_PATH"             envDefault:"txsequencer.db"`
	LogLevel          string        `env:"TXSEQ_LOG_LEVEL"           envDefault:"info"`
	TokenSecret       string        `env:"TXSEQ_TOKEN_SECRET"`
	TokenIssuer       string        `env:"TXSEQ_TOKEN_ISSUER"        envDefault:"txsequencer"`
	TokenTTL          time.Duration `env:"TXSEQ_TOKEN_TTL"           envDefault:"24h"`
	AdminPolicy       string        `env:"TXSEQ_ADMIN_POLICY"`
	AdminPolicyEngine string        `env:"TXSEQ_ADMIN_POLICY_ENGINE" envDefault:"cel"`
	OtelEndpoint      string        `env:"TXSEQ_OTEL_ENDPOINT"`
	QueueSize         int           `env:"TXSEQ_QUEUE_SIZE"          envDefault:"1024"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SlogLevel parses LogLevel
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// AuthorityPolicy builds the configured admin policy. It returns nil when no
// policy expression is set, leaving the ledger default in place.
func (c *Config) AuthorityPolicy() (ledger.AuthorityPolicy, error) {
	expression := strings.TrimSpace(c.AdminPolicy)
	if expression == "" {
		return nil, nil
	}
	var ret ledger.AuthorityPolicy
	var err error
	switch strings.ToLower(strings.TrimSpace(c.AdminPolicyEngine)) {
	case PolicyEngineCEL, "":
		ret, err = policy.NewCELPolicy(expression)
	case PolicyEngineExpr:
		ret, err = policy.NewExprPolicy(expression)
	default:
		return nil, fmt.Errorf("unknown admin policy engine: %s", c.AdminPolicyEngine)
	}
	if err != nil {
		return nil, fmt.Errorf("admin policy: %w", err)
	}
	return ret, nil
}

// TokenSecretBytes returns the token secret, or an error when none is configured
func (c *Config) TokenSecretBytes() ([]byte, error) {
	if c.TokenSecret == "" {
		return nil, errors.New("TXSEQ_TOKEN_SECRET is required")
	}
	return []byte(c.TokenSecret), nil
}
