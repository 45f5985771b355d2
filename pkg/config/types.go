package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// Runtime environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Unmatched request policies.
const (
	UnmatchedPassthrough = "passthrough"
	UnmatchedReject      = "reject"
)

// Config is the top level configuration of a mock server.
type Config struct {
	Env     string        `json:"env" yaml:"env"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Mock    MockConfig    `json:"mock" yaml:"mock"`
	Auth    AuthConfig    `json:"auth" yaml:"auth"`
	CORS    CORSConfig    `json:"cors" yaml:"cors"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	Host            string        `json:"host" yaml:"host"`
	Port            int           `json:"port" yaml:"port"`
	ReadTimeout     time.Duration `json:"readTimeout" yaml:"readTimeout"`
	WriteTimeout    time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`
}

// MockConfig controls interception.
type MockConfig struct {
	// Enabled overrides the env based default when set.
	Enabled   *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	APIPrefix string `json:"apiPrefix" yaml:"apiPrefix"`
	// Upstream receives pass-through traffic. Empty means pass-through
	// requests fail with 502.
	Upstream  string   `json:"upstream,omitempty" yaml:"upstream,omitempty"`
	Unmatched string   `json:"unmatched" yaml:"unmatched"`
	Bypass    []string `json:"bypass,omitempty" yaml:"bypass,omitempty"`

	ActionLatency     time.Duration `json:"actionLatency" yaml:"actionLatency"`
	SeedFile          string        `json:"seedFile,omitempty" yaml:"seedFile,omitempty"`
	ResetSchedule     string        `json:"resetSchedule,omitempty" yaml:"resetSchedule,omitempty"`
	HeartbeatSchedule string        `json:"heartbeatSchedule,omitempty" yaml:"heartbeatSchedule,omitempty"`
	InstallBaseURL    string        `json:"installBaseUrl,omitempty" yaml:"installBaseUrl,omitempty"`
	// HistorySize bounds the request history served at
	// /__mock/requests. Zero disables it.
	HistorySize int `json:"historySize" yaml:"historySize"`
}

// AuthConfig configures mock sign-in.
type AuthConfig struct {
	JWTSecret      string        `json:"jwtSecret" yaml:"jwtSecret"`
	TokenTTL       time.Duration `json:"tokenTTL" yaml:"tokenTTL"`
	OAuthProviders []string      `json:"oauthProviders" yaml:"oauthProviders"`
}

// CORSConfig configures cross origin access for the dashboard dev server.
type CORSConfig struct {
	Enabled          bool     `json:"enabled" yaml:"enabled"`
	AllowOrigins     []string `json:"allowOrigins,omitempty" yaml:"allowOrigins,omitempty"`
	AllowMethods     []string `json:"allowMethods,omitempty" yaml:"allowMethods,omitempty"`
	AllowHeaders     []string `json:"allowHeaders,omitempty" yaml:"allowHeaders,omitempty"`
	ExposeHeaders    []string `json:"exposeHeaders,omitempty" yaml:"exposeHeaders,omitempty"`
	AllowCredentials bool     `json:"allowCredentials,omitempty" yaml:"allowCredentials,omitempty"`
	MaxAge           int      `json:"maxAge,omitempty" yaml:"maxAge,omitempty"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Env: EnvDevelopment,
		Server: ServerConfig{
			Port:            8090,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Mock: MockConfig{
			APIPrefix:         "/api",
			Unmatched:         UnmatchedPassthrough,
			HeartbeatSchedule: "@every 30s",
			HistorySize:       200,
		},
		Auth: AuthConfig{
			JWTSecret:      "nspass-mockd-dev-secret",
			TokenTTL:       24 * time.Hour,
			OAuthProviders: []string{"github", "google"},
		},
		CORS: CORSConfig{
			Enabled: true,
			AllowOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://127.0.0.1:3000",
				"http://127.0.0.1:5173",
			},
		},
		Log:     LogConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// MockEnabled reports whether interception starts enabled: the explicit
// mock.enabled value, otherwise true outside production.
func (c *Config) MockEnabled() bool {
	if c.Mock.Enabled != nil {
		return *c.Mock.Enabled
	}
	return !strings.EqualFold(c.Env, EnvProduction)
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// GetAllowOriginValue returns the Access-Control-Allow-Origin value for a
// request origin, or "" when the origin is not allowed.
func (c *CORSConfig) GetAllowOriginValue(requestOrigin string) string {
	if c == nil || !c.Enabled {
		return ""
	}
	for _, origin := range c.AllowOrigins {
		if origin == "*" {
			// "*" is not allowed together with credentials
			if c.AllowCredentials {
				return requestOrigin
			}
			return "*"
		}
	}
	for _, allowed := range c.AllowOrigins {
		if allowed == requestOrigin {
			return requestOrigin
		}
	}
	return ""
}
