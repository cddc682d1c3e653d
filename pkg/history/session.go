package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mberthelot/valet/pkg/llm"
)

// Event is one line in a session's JSONL file.
type Event struct {
	Type       string      `json:"type"` // "user" or "assistant"
	UUID       string      `json:"uuid"`
	ParentUUID string      `json:"parentUuid,omitempty"`
	SessionID  string      `json:"sessionId"`
	Timestamp  string      `json:"timestamp"`
	CWD        string      `json:"cwd"`
	Agent      string      `json:"agent"` // role holding the conversation
	Message    llm.Message `json:"message"`
}

// SessionManager appends conversation events to a per-session JSONL file
// under <baseDir>/projects/<sanitized-cwd>/.
type SessionManager struct {
	SessionID   string
	FilePath    string
	cwd         string
	currentUUID string
}

func projectDir(baseDir, cwd string) string {
	sanitized := strings.ReplaceAll(cwd, string(os.PathSeparator), "-")
	if !strings.HasPrefix(sanitized, "-") {
		sanitized = "-" + sanitized
	}
	return filepath.Join(baseDir, "projects", sanitized)
}

func NewSessionManager(baseDir, cwd string) (*SessionManager, error) {
	dir := projectDir(baseDir, cwd)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create project dir: %w", err)
	}

	sessionID := uuid.New().String()
	return &SessionManager{
		SessionID: sessionID,
		FilePath:  filepath.Join(dir, sessionID+".jsonl"),
		cwd:       cwd,
	}, nil
}

// Append writes one message as an event line, chained to the previous event
// by uuid.
func (sm *SessionManager) Append(agentRole string, msg llm.Message) error {
	eventType := "user"
	if msg.Role == llm.RoleAssistant {
		eventType = "assistant"
	}

	ev := Event{
		Type:       eventType,
		UUID:       uuid.New().String(),
		ParentUUID: sm.currentUUID,
		SessionID:  sm.SessionID,
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		CWD:        sm.cwd,
		Agent:      agentRole,
		Message:    msg,
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	f, err := os.OpenFile(sm.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open session file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	sm.currentUUID = ev.UUID
	return nil
}

// RecoverLast loads the newest session for the project and returns its
// messages grouped by agent role, for replaying into agent memories.
func RecoverLast(baseDir, cwd string) (map[string][]llm.Message, error) {
	dir := projectDir(baseDir, cwd)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no previous session for %s", cwd)
		}
		return nil, err
	}

	var sessions []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl") {
			sessions = append(sessions, e.Name())
		}
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("no previous session for %s", cwd)
	}

	// Newest file by modification time.
	sort.Slice(sessions, func(i, j int) bool {
		fi, _ := os.Stat(filepath.Join(dir, sessions[i]))
		fj, _ := os.Stat(filepath.Join(dir, sessions[j]))
		if fi == nil || fj == nil {
			return sessions[i] < sessions[j]
		}
		return fi.ModTime().After(fj.ModTime())
	})

	f, err := os.Open(filepath.Join(dir, sessions[0]))
	if err != nil {
		return nil, fmt.Errorf("failed to open session file: %w", err)
	}
	defer f.Close()

	byAgent := make(map[string][]llm.Message)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue // a torn last line is not fatal
		}
		byAgent[ev.Agent] = append(byAgent[ev.Agent], ev.Message)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	return byAgent, nil
}
