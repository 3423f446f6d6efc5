package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables read by leaguectl. Flags take precedence.
const (
	EnvServer    = "LEAGUE_SERVER"
	EnvToken     = "LEAGUE_TOKEN"
	EnvTokenFile = "LEAGUE_TOKEN_FILE"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Token     string
	TokenFile string
	Output    string
	Verbose   bool
}

// DefaultConfig reads the process environment
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return configFromEnv(os.LookupEnv, home)
}

func configFromEnv(lookup func(string) (string, bool), home string) *Config {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return fallback
	}
	return &Config{
		ServerURL: get(EnvServer, "http://localhost:8080"),
		Token:     get(EnvToken, ""),
		TokenFile: get(EnvTokenFile, filepath.Join(home, ".pokerleague", "token")),
		Output:    "text",
	}
}

// Validate checks the output format and server URL, and strips any trailing
// slash from the URL so paths can be appended directly.
func (c *Config) Validate() error {
	if c.Output != "text" && c.Output != "json" {
		return fmt.Errorf("unknown output format %q (want text or json)", c.Output)
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server URL %q: want http(s)://host[:port]", c.ServerURL)
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
	return nil
}

// LoadToken fills Token from TokenFile unless a flag or LEAGUE_TOKEN set it.
// A missing file is not an error; public commands work without a token.
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read token file: %w", err)
	}

	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken writes the token readable by the owner only
func (c *Config) SaveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(c.TokenFile, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	c.Token = token
	return nil
}
