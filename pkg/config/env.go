package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "NSPASS_MOCK_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type envBinding struct {
	name  string
	apply func(c *Config, v string) error
}

var envBindings = []envBinding{
	{"ENV", func(c *Config, v string) error { c.Env = v; return nil }},
	{"HOST", func(c *Config, v string) error { c.Server.Host = v; return nil }},
	{"PORT", func(c *Config, v string) error { return setInt(&c.Server.Port, v) }},
	{"ENABLED", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.Mock.Enabled = &b
		return nil
	}},
	{"API_PREFIX", func(c *Config, v string) error { c.Mock.APIPrefix = v; return nil }},
	{"UPSTREAM", func(c *Config, v string) error { c.Mock.Upstream = v; return nil }},
	{"UNMATCHED", func(c *Config, v string) error { c.Mock.Unmatched = v; return nil }},
	{"BYPASS", func(c *Config, v string) error { c.Mock.Bypass = splitList(v); return nil }},
	{"ACTION_LATENCY", func(c *Config, v string) error { return setDuration(&c.Mock.ActionLatency, v) }},
	{"SEED_FILE", func(c *Config, v string) error { c.Mock.SeedFile = v; return nil }},
	{"RESET_SCHEDULE", func(c *Config, v string) error { c.Mock.ResetSchedule = v; return nil }},
	{"HEARTBEAT_SCHEDULE", func(c *Config, v string) error { c.Mock.HeartbeatSchedule = v; return nil }},
	{"HISTORY_SIZE", func(c *Config, v string) error { return setInt(&c.Mock.HistorySize, v) }},
	{"JWT_SECRET", func(c *Config, v string) error { c.Auth.JWTSecret = v; return nil }},
	{"TOKEN_TTL", func(c *Config, v string) error { return setDuration(&c.Auth.TokenTTL, v) }},
	{"OAUTH_PROVIDERS", func(c *Config, v string) error { c.Auth.OAuthProviders = splitList(v); return nil }},
	{"CORS_ORIGINS", func(c *Config, v string) error { c.CORS.AllowOrigins = splitList(v); return nil }},
	{"LOG_LEVEL", func(c *Config, v string) error { c.Log.Level = v; return nil }},
	{"LOG_FORMAT", func(c *Config, v string) error { c.Log.Format = v; return nil }},
	{"METRICS", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.Metrics.Enabled = b
		return nil
	}},
}

// ApplyEnv overrides fields from NSPASS_MOCK_* variables. A nil lookup
// reads the process environment.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, b := range envBindings {
		v, ok := lookup(EnvPrefix + b.name)
		if !ok {
			continue
		}
		if err := b.apply(c, strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, b.name, err)
		}
	}
	return nil
}

// EnvNames lists the supported override variables.
func EnvNames() []string {
	out := make([]string, len(envBindings))
	for i, b := range envBindings {
		out[i] = EnvPrefix + b.name
	}
	return out
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
