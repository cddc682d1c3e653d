package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ServerClient speaks the bespoke generation-server protocol: POST /setup
// selects the model, POST /generate starts a job, then GET
// /get_updated_sentence is polled until is_complete.
type ServerClient struct {
	address      string
	model        string
	client       *http.Client
	pollInterval time.Duration
	log          *zap.Logger
}

func NewServerClient(address, model string, log *zap.Logger) *ServerClient {
	return &ServerClient{
		address:      address,
		model:        model,
		client:       &http.Client{Timeout: 30 * time.Second},
		pollInterval: 2 * time.Second,
		log:          log.Named("server"),
	}
}

type serverUpdate struct {
	Sentence   string `json:"sentence"`
	IsComplete bool   `json:"is_complete"`
	Error      string `json:"error,omitempty"`
}

func (c *ServerClient) Generate(ctx context.Context, messages []Message) (*Message, error) {
	return c.GenerateStream(ctx, messages, nil)
}

func (c *ServerClient) GenerateStream(ctx context.Context, messages []Message, outputChan chan<- string) (*Message, error) {
	base := "http://" + c.address

	if err := c.postJSON(ctx, base+"/setup", map[string]interface{}{"model": c.model}); err != nil {
		return nil, fmt.Errorf("server setup failed: %w", err)
	}
	if err := c.postJSON(ctx, base+"/generate", map[string]interface{}{"messages": toOpenAIMessages(messages)}); err != nil {
		return nil, fmt.Errorf("server generate failed: %w", err)
	}

	var sentence string
	for {
		update, err := c.poll(ctx, base+"/get_updated_sentence")
		if err != nil {
			return nil, err
		}
		if update.Error != "" {
			return nil, fmt.Errorf("server error: %s", update.Error)
		}

		// The server returns the whole sentence so far; stream only the
		// new suffix.
		if outputChan != nil && strings.HasPrefix(update.Sentence, sentence) {
			if delta := update.Sentence[len(sentence):]; delta != "" {
				outputChan <- delta
			}
		}
		sentence = update.Sentence

		if update.IsComplete {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}

	c.log.Info("completion", zap.String("model", c.model))
	return &Message{Role: RoleAssistant, Content: sentence}, nil
}

func (c *ServerClient) postJSON(ctx context.Context, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d", url, resp.StatusCode)
	}
	return nil
}

func (c *ServerClient) poll(ctx context.Context, url string) (*serverUpdate, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll failed: %w", err)
	}
	defer resp.Body.Close()

	var update serverUpdate
	if err := json.NewDecoder(resp.Body).Decode(&update); err != nil {
		return nil, fmt.Errorf("failed to decode server update: %w", err)
	}
	return &update, nil
}
