package tools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTimeout = 2 * time.Minute
	maxOutput      = 30000
)

// BashTool runs a block payload through bash -c with a persistent working
// directory across invocations.
type BashTool struct {
	cwd     string
	timeout time.Duration
	log     *zap.Logger
}

func NewBashTool(workdir string, log *zap.Logger) *BashTool {
	if workdir == "" {
		workdir, _ = os.Getwd()
	}
	return &BashTool{
		cwd:     workdir,
		timeout: defaultTimeout,
		log:     log.Named("bash"),
	}
}

func (t *BashTool) Definition() Definition {
	return Definition{
		Name:        "bash",
		Description: "Executes shell commands in the workspace with a persistent working directory.",
	}
}

func (t *BashTool) Execute(ctx context.Context, action, payload string) (string, error) {
	script := strings.TrimSpace(payload)
	if script == "" {
		return "", fmt.Errorf("empty command")
	}

	// A bare cd updates the persistent working directory instead of
	// spawning a shell that changes nothing.
	if target, ok := bareCD(script); ok {
		dir := target
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(t.cwd, dir)
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return fmt.Sprintf("cd: no such directory: %s", target), nil
		}
		t.cwd = dir
		return fmt.Sprintf("Changed directory to %s", dir), nil
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "bash", "-c", script)
	cmd.Dir = t.cwd

	out, err := cmd.CombinedOutput()
	output := truncate(string(out))

	t.log.Info("command executed",
		zap.String("command", firstLine(script)),
		zap.Bool("failed", err != nil))

	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Sprintf("Command timed out after %s.\nOutput:\n%s", t.timeout, output), nil
	}
	if err != nil {
		// The model needs to see the failure, so it is part of the
		// result rather than a Go error.
		return fmt.Sprintf("Error: %v\nOutput:\n%s", err, output), nil
	}
	return output, nil
}

func bareCD(script string) (string, bool) {
	if strings.ContainsAny(script, "\n;&|") {
		return "", false
	}
	rest, ok := strings.CutPrefix(script, "cd ")
	if !ok {
		return "", false
	}
	return strings.Trim(strings.TrimSpace(rest), "\"'"), true
}

func truncate(s string) string {
	if len(s) > maxOutput {
		return s[:maxOutput] + "\n...[Output Truncated]..."
	}
	return s
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
