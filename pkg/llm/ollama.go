package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// OllamaClient talks to a local ollama server over its native /api/chat
// endpoint, which streams newline-delimited JSON.
type OllamaClient struct {
	address string
	model   string
	client  *http.Client
	log     *zap.Logger
}

func NewOllamaClient(address, model string, log *zap.Logger) *OllamaClient {
	return &OllamaClient{
		address: address,
		model:   model,
		client:  &http.Client{},
		log:     log.Named("ollama"),
	}
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChunk struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

func (c *OllamaClient) Generate(ctx context.Context, messages []Message) (*Message, error) {
	return c.GenerateStream(ctx, messages, nil)
}

func (c *OllamaClient) GenerateStream(ctx context.Context, messages []Message, outputChan chan<- string) (*Message, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:    c.model,
		Messages: toOpenAIMessages(messages),
		Stream:   true,
	})
	if err != nil {
		return nil, err
	}

	url := "http://" + c.address + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to ollama at %s failed: %w", c.address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("model %q not found; run: ollama pull %s", c.model, c.model)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned %d: %s", resp.StatusCode, string(raw))
	}

	var content strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		var chunk ollamaChunk
		if err := json.Unmarshal(scanner.Bytes(), &chunk); err != nil {
			continue
		}
		if chunk.Error != "" {
			return nil, fmt.Errorf("ollama error: %s", chunk.Error)
		}
		if chunk.Message.Content != "" {
			content.WriteString(chunk.Message.Content)
			if outputChan != nil {
				outputChan <- chunk.Message.Content
			}
		}
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("stream read failed: %w", err)
	}

	c.log.Info("completion", zap.String("model", c.model))
	return &Message{Role: RoleAssistant, Content: content.String()}, nil
}
