package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

var (
	// ErrMissingBaseURL is returned when BASE_URL is not set.
	ErrMissingBaseURL = errors.New("BASE_URL is required")

	// ErrMissingAPIKey is returned when API_KEY is not set.
	ErrMissingAPIKey = errors.New("API_KEY is required")

	// ErrInvalidBaseURL is returned when BASE_URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("BASE_URL must be an absolute http or https URL")
)

// Common contains the policy API parameters shared by every binary.
type Common struct {
	BaseURL string
	APIKey  string
}

// Web describes HTTP-layer configuration of the viewer.
type Web struct {
	Common
	BindAddr        string
	ShutdownTimeout time.Duration
}

// Lookup configures the command line lookup tool.
type Lookup struct {
	Common
}

// LoadWeb builds a Web config from environment variables.
func LoadWeb() (*Web, error) {
	common, err := loadCommon()
	if err != nil {
		return nil, err
	}

	c := &Web{
		Common:          common,
		BindAddr:        getEnv("WEB_BIND_ADDR", "0.0.0.0:8080"),
		ShutdownTimeout: getDuration("WEB_SHUTDOWN_TIMEOUT", "10s"),
	}

	if c.ShutdownTimeout <= 0 {
		return nil, fmt.Errorf("WEB_SHUTDOWN_TIMEOUT must be positive")
	}

	return c, nil
}

// LoadLookup builds a Lookup config from environment variables.
func LoadLookup() (*Lookup, error) {
	common, err := loadCommon()
	if err != nil {
		return nil, err
	}
	return &Lookup{Common: common}, nil
}

func loadCommon() (Common, error) {
	c := Common{
		BaseURL: strings.TrimRight(getEnv("BASE_URL", ""), "/"),
		APIKey:  getEnv("API_KEY", ""),
	}

	if c.BaseURL == "" {
		return Common{}, ErrMissingBaseURL
	}
	if err := validateBaseURL(c.BaseURL); err != nil {
		return Common{}, err
	}
	if c.APIKey == "" {
		return Common{}, ErrMissingAPIKey
	}

	return c, nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("%w: query or fragment not allowed in %q", ErrInvalidBaseURL, raw)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}
