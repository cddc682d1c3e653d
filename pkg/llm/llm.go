package llm

import "context"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client generates a completion for a conversation. Tool use in this program
// is a textual convention (fenced blocks in the answer), so clients only need
// plain chat completion.
type Client interface {
	Generate(ctx context.Context, messages []Message) (*Message, error)
	GenerateStream(ctx context.Context, messages []Message, outputChan chan<- string) (*Message, error)
}

// MockClient replays scripted answers in order, repeating the last one.
// Used by the "test" provider and throughout the agent tests.
type MockClient struct {
	responses []string
	calls     int
}

func NewMockClient(responses ...string) *MockClient {
	if len(responses) == 0 {
		responses = []string{"I am a mock assistant."}
	}
	return &MockClient{responses: responses}
}

func (m *MockClient) next() string {
	i := m.calls
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	m.calls++
	return m.responses[i]
}

func (m *MockClient) Generate(ctx context.Context, messages []Message) (*Message, error) {
	return &Message{Role: RoleAssistant, Content: m.next()}, nil
}

func (m *MockClient) GenerateStream(ctx context.Context, messages []Message, outputChan chan<- string) (*Message, error) {
	response := m.next()
	if outputChan != nil {
		for _, c := range response {
			outputChan <- string(c)
		}
	}
	return &Message{Role: RoleAssistant, Content: response}, nil
}
