package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mberthelot/valet/pkg/logging"
)

func TestServerClientPollsUntilComplete(t *testing.T) {
	var setupSeen, generateSeen bool
	polls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/setup":
			setupSeen = true
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			if body["model"] != "deepseek-r1:14b" {
				t.Errorf("setup model = %v", body["model"])
			}
		case "/generate":
			generateSeen = true
		case "/get_updated_sentence":
			polls++
			update := serverUpdate{Sentence: "Hello", IsComplete: false}
			if polls >= 3 {
				update = serverUpdate{Sentence: "Hello there.", IsComplete: true}
			}
			json.NewEncoder(w).Encode(update)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewServerClient(strings.TrimPrefix(srv.URL, "http://"), "deepseek-r1:14b", logging.Nop())
	client.pollInterval = time.Millisecond

	msg, err := client.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !setupSeen || !generateSeen {
		t.Error("setup and generate routes should both be hit")
	}
	if msg.Content != "Hello there." {
		t.Errorf("content = %q", msg.Content)
	}
}

func TestServerClientPropagatesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/get_updated_sentence" {
			json.NewEncoder(w).Encode(serverUpdate{Error: "model not loaded"})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewServerClient(strings.TrimPrefix(srv.URL, "http://"), "m", logging.Nop())
	client.pollInterval = time.Millisecond

	_, err := client.Generate(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("expected server error, got %v", err)
	}
}

func TestOpenAIClientGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization = %q", got)
		}
		var req openAIRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "gpt-4o" || len(req.Messages) != 1 {
			t.Errorf("unexpected request: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "42"}},
			},
		})
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.URL+"/v1", "sk-test", "gpt-4o", logging.Nop())
	msg, err := client.Generate(context.Background(), []Message{{Role: RoleUser, Content: "meaning of life?"}})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if msg.Content != "42" {
		t.Errorf("content = %q", msg.Content)
	}
}

func TestOllamaClientStreams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		chunks := []string{
			`{"message":{"content":"Hel"},"done":false}`,
			`{"message":{"content":"lo"},"done":false}`,
			`{"message":{"content":""},"done":true}`,
		}
		for _, c := range chunks {
			w.Write([]byte(c + "\n"))
		}
	}))
	defer srv.Close()

	client := NewOllamaClient(strings.TrimPrefix(srv.URL, "http://"), "llama3", logging.Nop())

	out := make(chan string, 16)
	msg, err := client.GenerateStream(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, out)
	close(out)
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	if msg.Content != "Hello" {
		t.Errorf("content = %q", msg.Content)
	}

	var streamed strings.Builder
	for tok := range out {
		streamed.WriteString(tok)
	}
	if streamed.String() != "Hello" {
		t.Errorf("streamed = %q", streamed.String())
	}
}
