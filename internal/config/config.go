// Package config loads the EXO_* environment variables the running server
// needs: database connection, JWT/JWKS auth, CORS, introspection gating and
// startup checks, in the teacher's env-var-driven configuration style.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Introspection tags how the GraphQL introspection endpoint behaves.
type Introspection int

const (
	IntrospectionDisabled Introspection = iota
	IntrospectionEnabled
	// IntrospectionOnly serves only the introspection schema and refuses
	// every other operation, used for a schema-export-only deployment.
	IntrospectionOnly
)

// Config is the fully parsed, validated process configuration.
type Config struct {
	PostgresURL      string
	PostgresUser     string
	PostgresPassword string

	JWTSecret     string
	JWKSEndpoint  string
	JWKSRefreshMin time.Duration

	Introspection Introspection
	CORSDomains   []string

	CheckConnectionOnStartup bool
	Env                      string
	LogLevel                 string
}

// Error reports a missing or malformed EXO_* variable.
type Error struct {
	Var   string
	Cause error
}

func (e *Error) Error() string { return fmt.Sprintf("config: %s: %v", e.Var, e.Cause) }
func (e *Error) Unwrap() error { return e.Cause }

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	return load(os.LookupEnv)
}

// lookupFunc matches os.LookupEnv's signature, parameterized for tests.
type lookupFunc func(key string) (string, bool)

func load(lookup lookupFunc) (*Config, error) {
	cfg := &Config{
		Env:                      getOr(lookup, "EXO_ENV", "development"),
		LogLevel:                 getOr(lookup, "EXO_LOG", "info"),
		CheckConnectionOnStartup: true,
		JWKSRefreshMin:           5 * time.Minute,
	}

	cfg.PostgresURL = getOr(lookup, "EXO_POSTGRES_URL", "")
	cfg.PostgresUser, _ = lookup("EXO_POSTGRES_USER")
	cfg.PostgresPassword, _ = lookup("EXO_POSTGRES_PASSWORD")

	cfg.JWTSecret, _ = lookup("EXO_JWT_SECRET")
	cfg.JWKSEndpoint, _ = lookup("EXO_JWKS_ENDPOINT")

	if cfg.JWTSecret != "" && cfg.JWKSEndpoint != "" {
		return nil, &Error{Var: "EXO_JWT_SECRET/EXO_JWKS_ENDPOINT", Cause: fmt.Errorf("exactly one of a static secret or a JWKS endpoint may be configured, not both")}
	}

	if v, ok := lookup("EXO_INTROSPECTION"); ok {
		intr, err := parseIntrospection(v)
		if err != nil {
			return nil, &Error{Var: "EXO_INTROSPECTION", Cause: err}
		}
		cfg.Introspection = intr
	}

	if v, ok := lookup("EXO_CORS_DOMAINS"); ok && v != "" {
		for _, d := range strings.Split(v, ",") {
			cfg.CORSDomains = append(cfg.CORSDomains, strings.TrimSpace(d))
		}
	}

	if v, ok := lookup("EXO_CHECK_CONNECTION_ON_STARTUP"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, &Error{Var: "EXO_CHECK_CONNECTION_ON_STARTUP", Cause: err}
		}
		cfg.CheckConnectionOnStartup = b
	}

	if cfg.PostgresURL == "" {
		return nil, &Error{Var: "EXO_POSTGRES_URL", Cause: fmt.Errorf("required")}
	}

	return cfg, nil
}

func parseIntrospection(v string) (Introspection, error) {
	switch strings.ToLower(v) {
	case "true", "enabled", "1":
		return IntrospectionEnabled, nil
	case "false", "disabled", "0", "":
		return IntrospectionDisabled, nil
	case "only":
		return IntrospectionOnly, nil
	default:
		return 0, fmt.Errorf("unrecognized value %q (want true|false|only)", v)
	}
}

func getOr(lookup lookupFunc, key, fallback string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return fallback
}
