package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/robfig/cron/v3"
)

var validLogLevels = map[string]bool{"": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}

var validLogFormats = map[string]bool{"": true, "text": true, "json": true}

// ValidationError reports one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every section and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	switch strings.ToLower(c.Env) {
	case EnvDevelopment, EnvProduction:
	default:
		add("env", "must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		add("server.port", "out of range: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 {
		add("server.readTimeout", "must not be negative")
	}
	if c.Server.WriteTimeout < 0 {
		add("server.writeTimeout", "must not be negative")
	}

	if !strings.HasPrefix(c.Mock.APIPrefix, "/") {
		add("mock.apiPrefix", "must start with /")
	}
	switch c.Mock.Unmatched {
	case UnmatchedPassthrough, UnmatchedReject:
	default:
		add("mock.unmatched", "must be %q or %q", UnmatchedPassthrough, UnmatchedReject)
	}
	if c.Mock.Upstream != "" {
		u, err := url.Parse(c.Mock.Upstream)
		if err != nil || u.Scheme == "" || u.Host == "" {
			add("mock.upstream", "must be an absolute URL")
		}
	}
	for _, pattern := range c.Mock.Bypass {
		if !doublestar.ValidatePattern(pattern) {
			add("mock.bypass", "invalid glob %q", pattern)
		}
	}
	if c.Mock.ActionLatency < 0 {
		add("mock.actionLatency", "must not be negative")
	}
	if c.Mock.HistorySize < 0 {
		add("mock.historySize", "must not be negative")
	}
	for field, spec := range map[string]string{
		"mock.resetSchedule":     c.Mock.ResetSchedule,
		"mock.heartbeatSchedule": c.Mock.HeartbeatSchedule,
	} {
		if spec == "" {
			continue
		}
		if _, err := cron.ParseStandard(spec); err != nil {
			add(field, "invalid schedule %q: %v", spec, err)
		}
	}

	if c.Auth.JWTSecret == "" {
		add("auth.jwtSecret", "is required")
	}
	if c.Auth.TokenTTL <= 0 {
		add("auth.tokenTTL", "must be positive")
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		add("log.level", "unknown level %q", c.Log.Level)
	}
	if !validLogFormats[strings.ToLower(c.Log.Format)] {
		add("log.format", "unknown format %q", c.Log.Format)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		add("metrics.path", "must start with /")
	}

	return errors.Join(errs...)
}
