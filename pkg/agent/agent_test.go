package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/mberthelot/valet/pkg/llm"
	"github.com/mberthelot/valet/pkg/logging"
	"github.com/mberthelot/valet/pkg/tools"
)

func workspaceRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	dir := t.TempDir()
	finder := tools.NewFileFinderTool(dir, logging.Nop())
	t.Cleanup(func() { finder.Close() })
	return tools.NewRegistry(tools.NewBashTool(dir, logging.Nop()), finder)
}

func TestAgentPlainAnswer(t *testing.T) {
	client := llm.NewMockClient("Just chatting, no tools needed.")
	a := New("test", "casual", "You are a test agent.", client, nil, logging.Nop())

	res, err := a.Process(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if res.Answer != "Just chatting, no tools needed." {
		t.Errorf("answer = %q", res.Answer)
	}
	if len(res.Executions) != 0 {
		t.Errorf("expected no executions, got %d", len(res.Executions))
	}
}

func TestAgentExecutesBlockAndFeedsBack(t *testing.T) {
	client := llm.NewMockClient(
		"Let me check.\n```bash\necho found-it\n```",
		"The output was found-it.",
	)
	a := New("test", "file", "prompt", client, workspaceRegistry(t), logging.Nop())

	res, err := a.Process(context.Background(), "what's there?", nil)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if len(res.Executions) != 1 {
		t.Fatalf("expected 1 execution, got %d", len(res.Executions))
	}
	if !strings.Contains(res.Executions[0].Output, "found-it") {
		t.Errorf("execution output = %q", res.Executions[0].Output)
	}
	if res.Answer != "The output was found-it." {
		t.Errorf("answer = %q", res.Answer)
	}

	// The execution result must have been pushed back as a user turn.
	mem := a.Memory()
	var sawFeedback bool
	for _, m := range mem {
		if m.Role == llm.RoleUser && strings.Contains(m.Content, "bash execution result") {
			sawFeedback = true
		}
	}
	if !sawFeedback {
		t.Error("expected execution feedback in memory")
	}
}

func TestAgentIgnoresUnregisteredBlocks(t *testing.T) {
	// A casual agent has no tools; a bash block in its answer is prose.
	client := llm.NewMockClient("Here is an example:\n```bash\nrm -rf /\n```")
	a := New("test", "casual", "prompt", client, nil, logging.Nop())

	res, err := a.Process(context.Background(), "show me something dangerous", nil)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if len(res.Executions) != 0 {
		t.Fatalf("nothing should run, got %d executions", len(res.Executions))
	}
	if !strings.Contains(res.Answer, "rm -rf /") {
		t.Errorf("answer should keep the example verbatim, got %q", res.Answer)
	}
}

func TestAgentAnswerKeepsCodeListings(t *testing.T) {
	// A code listing next to a tool block must survive in the displayed
	// answer; only the executed block becomes a marker.
	client := llm.NewMockClient(
		"The script:\n```python\nprint('hi')\n```\nTrying it:\n```bash\necho simulated-run\n```",
	)
	a := New("test", "coder", "prompt", client, workspaceRegistry(t), logging.Nop())
	a.maxRounds = 1

	res, err := a.Process(context.Background(), "write and run it", nil)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if len(res.Executions) != 1 {
		t.Fatalf("expected 1 execution, got %d", len(res.Executions))
	}
	if !strings.Contains(res.Answer, "print('hi')") {
		t.Errorf("listing should stay in the answer, got %q", res.Answer)
	}
	if strings.Contains(res.Answer, "[python block executed]") {
		t.Errorf("listing must not be marked executed, got %q", res.Answer)
	}
	if !strings.Contains(res.Answer, "[bash block executed]") {
		t.Errorf("expected marker for the bash block, got %q", res.Answer)
	}
}

func TestAgentRoundBudget(t *testing.T) {
	// The model never stops asking for tools; the loop must cut it off.
	client := llm.NewMockClient("```bash\necho again\n```")
	a := New("test", "file", "prompt", client, workspaceRegistry(t), logging.Nop())
	a.maxRounds = 3

	res, err := a.Process(context.Background(), "loop forever", nil)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if len(res.Executions) != 3 {
		t.Errorf("expected 3 executions, got %d", len(res.Executions))
	}
}

func TestAgentRestore(t *testing.T) {
	a := New("test", "casual", "system prompt", llm.NewMockClient(), nil, logging.Nop())
	a.Restore([]llm.Message{
		{Role: llm.RoleSystem, Content: "stale prompt from disk"},
		{Role: llm.RoleUser, Content: "earlier question"},
		{Role: llm.RoleAssistant, Content: "earlier answer"},
	})

	mem := a.Memory()
	if len(mem) != 3 {
		t.Fatalf("memory length = %d", len(mem))
	}
	if mem[0].Content != "system prompt" {
		t.Errorf("system prompt must survive recovery, got %q", mem[0].Content)
	}
	if mem[1].Content != "earlier question" || mem[2].Content != "earlier answer" {
		t.Errorf("restored messages = %+v", mem[1:])
	}
}
