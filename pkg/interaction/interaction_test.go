package interaction

import (
	"testing"

	"github.com/mberthelot/valet/pkg/agent"
	"github.com/mberthelot/valet/pkg/history"
	"github.com/mberthelot/valet/pkg/llm"
	"github.com/mberthelot/valet/pkg/logging"
	"github.com/mberthelot/valet/pkg/ui"
)

func testTeam(t *testing.T) *agent.Team {
	t.Helper()
	team, err := agent.BuildTeam(agent.TeamOptions{
		Client:       llm.NewMockClient(),
		AgentName:    "Valet",
		Personality:  "base",
		Workspace:    t.TempDir(),
		SearxAddress: "127.0.0.1:8080",
		Log:          logging.Nop(),
	})
	if err != nil {
		t.Fatalf("build team: %v", err)
	}
	t.Cleanup(func() { team.Close() })
	return team
}

func TestRecoverLastSessionRestoresAgents(t *testing.T) {
	baseDir := t.TempDir()
	cwd := t.TempDir()

	sm, err := history.NewSessionManager(baseDir, cwd)
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	must := func(err error) {
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	must(sm.Append("coder", llm.Message{Role: llm.RoleUser, Content: "write a sort"}))
	must(sm.Append("coder", llm.Message{Role: llm.RoleAssistant, Content: "done, see sort.go"}))

	team := testTeam(t)
	_, err = New(Options{
		Team:               team,
		UI:                 ui.New(),
		BaseDir:            baseDir,
		CWD:                cwd,
		RecoverLastSession: true,
		Log:                logging.Nop(),
	})
	if err != nil {
		t.Fatalf("new interaction: %v", err)
	}

	mem := team.Agents["coder"].Memory()
	if len(mem) != 3 { // system prompt + the two recovered turns
		t.Fatalf("coder memory length = %d", len(mem))
	}
	if mem[1].Content != "write a sort" || mem[2].Content != "done, see sort.go" {
		t.Errorf("recovered memory = %+v", mem[1:])
	}
}

func TestSaveSessionRecordsBothSides(t *testing.T) {
	baseDir := t.TempDir()
	cwd := t.TempDir()

	it, err := New(Options{
		Team:        testTeam(t),
		UI:          ui.New(),
		BaseDir:     baseDir,
		CWD:         cwd,
		SaveSession: true,
		Log:         logging.Nop(),
	})
	if err != nil {
		t.Fatalf("new interaction: %v", err)
	}
	if it.session == nil {
		t.Fatal("expected an active session log")
	}

	it.record("casual", llm.Message{Role: llm.RoleUser, Content: "hello"})
	it.record("casual", llm.Message{Role: llm.RoleAssistant, Content: "hi there"})

	byAgent, err := history.RecoverLast(baseDir, cwd)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	msgs := byAgent["casual"]
	if len(msgs) != 2 {
		t.Fatalf("recorded %d messages, want 2", len(msgs))
	}
	if msgs[0].Content != "hello" || msgs[1].Content != "hi there" {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestExitWords(t *testing.T) {
	for _, w := range []string{"exit", "goodbye", "quit"} {
		if !exitWords[w] {
			t.Errorf("%q should end the session", w)
		}
	}
	if exitWords["exit now"] {
		t.Error("exit words match whole inputs only")
	}
}
