package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProviderConfig selects and locates the LLM backend.
type ProviderConfig struct {
	Name    string `yaml:"name"`
	Model   string `yaml:"model"`
	Address string `yaml:"address"`
	IsLocal bool   `yaml:"is_local"`
}

type Config struct {
	Provider           ProviderConfig `yaml:"provider"`
	AgentName          string         `yaml:"agent_name"`
	Personality        string         `yaml:"personality"`
	Workspace          string         `yaml:"workspace"`
	SaveSession        bool           `yaml:"save_session"`
	RecoverLastSession bool           `yaml:"recover_last_session"`
	SearxAddress       string         `yaml:"searx_address"`
}

// Dir returns the valet config directory (~/.valet), creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	dir := filepath.Join(home, ".valet")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config dir: %w", err)
	}
	return dir, nil
}

func defaults() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Provider: ProviderConfig{
			Name:    "ollama",
			Model:   "deepseek-r1:14b",
			Address: "127.0.0.1:11434",
			IsLocal: true,
		},
		AgentName:    "Valet",
		Personality:  "base",
		Workspace:    filepath.Join(home, "valet-workspace"),
		SaveSession:  true,
		SearxAddress: "127.0.0.1:8080",
	}
}

// Load reads ~/.valet/config.yaml, applies environment overrides and
// validates the result. A missing file yields the defaults.
func Load() (*Config, error) {
	cfg := defaults()

	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "config.yaml")
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	applyEnv(cfg)

	cfg.Provider.Address = normalizeAddress(cfg.Provider.Address)
	cfg.SearxAddress = normalizeAddress(cfg.SearxAddress)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Providers that run off-machine; everything else is assumed local.
var cloudProviders = map[string]bool{
	"openai":   true,
	"deepseek": true,
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("VALET_PROVIDER"); v != "" {
		cfg.Provider.Name = v
		cfg.Provider.IsLocal = !cloudProviders[strings.ToLower(v)]
	}
	if v := os.Getenv("VALET_MODEL"); v != "" {
		cfg.Provider.Model = v
	}
	if v := os.Getenv("VALET_ADDRESS"); v != "" {
		cfg.Provider.Address = v
	}
	if v := os.Getenv("VALET_PERSONALITY"); v != "" {
		cfg.Personality = v
	}
	if v := os.Getenv("VALET_WORKSPACE"); v != "" {
		cfg.Workspace = v
	}
}

func (c *Config) Validate() error {
	if c.Provider.Name == "" {
		return fmt.Errorf("provider.name must not be empty")
	}
	if c.Provider.Model == "" {
		return fmt.Errorf("provider.model must not be empty")
	}
	if _, _, err := SplitAddress(c.Provider.Address); err != nil {
		return fmt.Errorf("provider.address: %w", err)
	}
	switch c.Personality {
	case "base", "jarvis":
	default:
		return fmt.Errorf("personality must be \"base\" or \"jarvis\", got %q", c.Personality)
	}
	return nil
}

// normalizeAddress rewrites an address to bare host:port so clients can
// prepend a scheme themselves. Unparseable addresses pass through for
// Validate to reject.
func normalizeAddress(address string) string {
	host, port, err := SplitAddress(address)
	if err != nil {
		return address
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// SplitAddress validates a host:port address, tolerating an http:// or
// https:// prefix, and returns host and port.
func SplitAddress(address string) (host string, port int, err error) {
	addr := strings.TrimPrefix(address, "http://")
	addr = strings.TrimPrefix(addr, "https://")
	addr = strings.TrimSuffix(addr, "/")

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid address %q: expected host:port", address)
	}
	port, err = strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port in %q: must be a number between 0 and 65535", address)
	}
	return host, port, nil
}
