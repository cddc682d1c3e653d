package llm

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Options describe which backend to talk to. Address is host:port for local
// providers; cloud providers ignore it.
type Options struct {
	Provider string
	Model    string
	Address  string
}

// Providers that send conversation data off the machine.
var unsafeProviders = map[string]bool{
	"openai":   true,
	"deepseek": true,
}

// NewClient builds the client for the configured provider name. Unknown
// providers are an error, cloud providers log a warning that data leaves the
// machine.
func NewClient(opts Options, log *zap.Logger) (Client, error) {
	name := strings.ToLower(opts.Provider)

	if unsafeProviders[name] {
		log.Warn("using a cloud provider, conversation data will be sent off this machine",
			zap.String("provider", name))
	}

	switch name {
	case "ollama":
		return NewOllamaClient(opts.Address, opts.Model, log), nil
	case "lm-studio":
		return NewOpenAIClient("http://"+opts.Address+"/v1", "", opts.Model, log), nil
	case "openai":
		key, err := apiKey("openai")
		if err != nil {
			return nil, err
		}
		return NewOpenAIClient("https://api.openai.com/v1", key, opts.Model, log), nil
	case "deepseek":
		key, err := apiKey("deepseek")
		if err != nil {
			return nil, err
		}
		return NewOpenAIClient("https://api.deepseek.com/v1", key, opts.Model, log), nil
	case "server":
		return NewServerClient(opts.Address, opts.Model, log), nil
	case "test":
		return NewMockClient(), nil
	}
	return nil, fmt.Errorf("unknown provider: %s", opts.Provider)
}

func apiKey(provider string) (string, error) {
	envVar := strings.ToUpper(provider) + "_API_KEY"
	key := os.Getenv(envVar)
	if key == "" {
		return "", fmt.Errorf("%s is not set; export it to use the %s provider", envVar, provider)
	}
	return key, nil
}

// Reachable reports whether a local provider address answers. Loopback is
// always considered reachable; otherwise an HTTP probe with a short timeout
// is tried first, then a raw TCP dial.
func Reachable(address string) bool {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		host = address
	}
	if host == "127.0.0.1" || host == "localhost" || host == "::1" {
		return true
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + address + "/")
	if err == nil {
		resp.Body.Close()
		return true
	}

	conn, err := net.DialTimeout("tcp", address, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
