package shared

import (
	_ "embed"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

const placeholderClientID = "your_spotify_client_id"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Spotify     EndpointsConfig   `toml:"spotify"`
	Database    DatabaseConfig    `toml:"database"`
	Storage     StorageConfig     `toml:"storage"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains the public client registration. PKCE clients have no secret.
type SpotifyConfig struct {
	ClientID    string `toml:"client_id"`
	RedirectURI string `toml:"redirect_uri"`
	Scope       string `toml:"scope"`
}

// EndpointsConfig contains the provider endpoints. Overridden in tests.
type EndpointsConfig struct {
	AuthURL  string `toml:"auth_url"`
	TokenURL string `toml:"token_url"`
	APIURL   string `toml:"api_url"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// StorageConfig contains the location of client-local state (the PKCE verifier).
type StorageConfig struct {
	StateDir string `toml:"state_dir"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads a .env file into the process environment. A missing file is not an error.
//
// Variables already set in the environment win over the file.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides the Spotify client settings from the environment.
//
// The VITE_ prefixed names are accepted for compatibility with existing .env files.
func (c *Config) ApplyEnv() {
	if v := firstEnv("SPOTIFY_CLIENT_ID", "VITE_SPOTIFY_CLIENT_ID"); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := firstEnv("SPOTIFY_REDIRECT_URI", "VITE_SPOTIFY_REDIRECT_URI"); v != "" {
		c.Credentials.Spotify.RedirectURI = v
	}
	if v := firstEnv("SPOTIFY_SCOPE"); v != "" {
		c.Credentials.Spotify.Scope = v
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks that the client registration is usable for the authorization flow.
func (c *Config) Validate() error {
	sp := c.Credentials.Spotify
	if sp.ClientID == "" || sp.ClientID == placeholderClientID {
		return fmt.Errorf("%w: spotify client_id must be set in config.toml or SPOTIFY_CLIENT_ID", ErrMissingCredentials)
	}

	u, err := url.Parse(sp.RedirectURI)
	if err != nil {
		return fmt.Errorf("%w: redirect_uri: %v", ErrInvalidConfig, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: redirect_uri must be an absolute http(s) URL, got %q", ErrInvalidConfig, sp.RedirectURI)
	}

	return nil
}

// CallbackAddr returns the host:port the local callback server listens on, taken from the redirect URI.
func (c *Config) CallbackAddr() (string, error) {
	u, err := url.Parse(c.Credentials.Spotify.RedirectURI)
	if err != nil {
		return "", fmt.Errorf("%w: redirect_uri: %v", ErrInvalidConfig, err)
	}

	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}

	return net.JoinHostPort(u.Hostname(), port), nil
}

// CallbackPath returns the path component of the redirect URI.
func (c *Config) CallbackPath() string {
	u, err := url.Parse(c.Credentials.Spotify.RedirectURI)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

// StateDir resolves the state directory, expanding a leading "~".
//
// Falls back to the user config directory when unset.
func (c *Config) StateDir() (string, error) {
	dir := c.Storage.StateDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve config directory: %w", err)
		}
		return filepath.Join(base, "jamming"), nil
	}

	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}

	return dir, nil
}
