package llm

import (
	"context"
	"testing"

	"github.com/mberthelot/valet/pkg/logging"
)

func TestNewClientUnknownProvider(t *testing.T) {
	_, err := NewClient(Options{Provider: "skynet", Model: "t-800"}, logging.Nop())
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewClientTestProvider(t *testing.T) {
	client, err := NewClient(Options{Provider: "test", Model: "any"}, logging.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg, err := client.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if msg.Role != RoleAssistant || msg.Content == "" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestNewClientCloudWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient(Options{Provider: "openai", Model: "gpt-4o"}, logging.Nop())
	if err == nil {
		t.Fatal("expected error when OPENAI_API_KEY is unset")
	}
}

func TestMockClientReplaysInOrder(t *testing.T) {
	client := NewMockClient("first", "second")
	ctx := context.Background()

	m1, _ := client.Generate(ctx, nil)
	m2, _ := client.Generate(ctx, nil)
	m3, _ := client.Generate(ctx, nil)

	if m1.Content != "first" || m2.Content != "second" {
		t.Errorf("got %q then %q", m1.Content, m2.Content)
	}
	// The last response repeats once the script runs out.
	if m3.Content != "second" {
		t.Errorf("expected last response to repeat, got %q", m3.Content)
	}
}

func TestReachableLoopback(t *testing.T) {
	if !Reachable("127.0.0.1:11434") {
		t.Error("loopback should always be reachable")
	}
	if !Reachable("localhost:8080") {
		t.Error("localhost should always be reachable")
	}
}
