// Package config handles configuration for the authkeeper server,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// DefaultAccessTokenValidityDuration is the lifetime of an access token when
// nothing else is configured.
const DefaultAccessTokenValidityDuration = 15 * time.Minute

// Config holds runtime settings for the authkeeper server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the gRPC endpoint.
//   - EndpointAddrHTTP: bind address for the HTTP endpoint; empty disables it.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing access tokens (HS256). Required.
//   - AccessTokenValidityDuration: access token lifetime.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddrGRPC            string
	EndpointAddrHTTP            string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	LogLevel                    string
}

// LoadDefaults populates Config with development defaults. SecretKey is
// left empty.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = ""
	c.AccessTokenValidityDuration = DefaultAccessTokenValidityDuration
	c.LogLevel = "info"
}

// Validate reports misconfiguration that must stop the process from starting.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return common.ErrMissingSecret
	}
	if c.AccessTokenValidityDuration <= 0 {
		return fmt.Errorf("access token validity must be positive, got %s", c.AccessTokenValidityDuration)
	}
	if c.EndpointAddrGRPC == "" {
		return errors.New("gRPC endpoint address is required")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
