package blocks

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractBlocks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Block
	}{
		{
			name: "single bash block",
			text: "Let me check.\n```bash\nls -la\n```\nDone.",
			want: []Block{{Tool: "bash", Payload: "ls -la"}},
		},
		{
			name: "file_finder with read action",
			text: "```file_finder:read\nnotes.txt\n```",
			want: []Block{{Tool: "file_finder", Action: "read", Payload: "notes.txt"}},
		},
		{
			name: "multiple blocks in order",
			text: "```file_finder\nmain.go\n```\nthen\n```bash\ngo test ./...\n```",
			want: []Block{
				{Tool: "file_finder", Payload: "main.go"},
				{Tool: "bash", Payload: "go test ./..."},
			},
		},
		{
			name: "plain fence is not a tool block",
			text: "```\nsome output\n```",
			want: nil,
		},
		{
			name: "unterminated fence ignored",
			text: "```bash\nrm -rf /",
			want: nil,
		},
		{
			name: "multiline payload preserved",
			text: "```bash\ncd /tmp\nls\n```",
			want: []Block{{Tool: "bash", Payload: "cd /tmp\nls"}},
		},
		{
			name: "no blocks",
			text: "Just a plain answer.",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractBlocks(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d blocks, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("block %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBlockName(t *testing.T) {
	b := Block{Tool: "file_finder", Action: "read"}
	if b.Name() != "file_finder:read" {
		t.Errorf("Name() = %q", b.Name())
	}
	b = Block{Tool: "bash"}
	if b.Name() != "bash" {
		t.Errorf("Name() = %q", b.Name())
	}
}

func TestStripBlocks(t *testing.T) {
	text := "Checking.\n```bash\nls\n```\nDone."
	got := StripBlocks(text, nil)
	if strings.Contains(got, "ls") {
		t.Errorf("payload should be stripped, got %q", got)
	}
	if !strings.Contains(got, "[bash block executed]") {
		t.Errorf("expected execution marker, got %q", got)
	}
	if !strings.Contains(got, "Checking.") || !strings.Contains(got, "Done.") {
		t.Errorf("prose should survive, got %q", got)
	}
}

func TestStripBlocksKeepsRejectedFences(t *testing.T) {
	text := "Here is the function:\n```python\nprint('hi')\n```\nRunning it:\n```bash\npython hi.py\n```"
	got := StripBlocks(text, func(b Block) bool { return b.Tool == "bash" })

	if !strings.Contains(got, "```python\nprint('hi')\n```") {
		t.Errorf("code listing should stay verbatim, got %q", got)
	}
	if strings.Contains(got, "[python block executed]") {
		t.Errorf("listing must not be marked executed, got %q", got)
	}
	if !strings.Contains(got, "[bash block executed]") {
		t.Errorf("expected marker for the bash block, got %q", got)
	}
	if strings.Contains(got, "python hi.py") {
		t.Errorf("executed payload should be stripped, got %q", got)
	}
}

func TestFeedback(t *testing.T) {
	b := Block{Tool: "bash", Payload: "ls"}

	ok := Feedback(b, "main.go\n", nil)
	if !strings.HasPrefix(ok, "bash execution result:") {
		t.Errorf("got %q", ok)
	}

	failed := Feedback(b, "", errors.New("exit status 127"))
	if !strings.Contains(failed, "bash execution failed") || !strings.Contains(failed, "exit status 127") {
		t.Errorf("got %q", failed)
	}

	empty := Feedback(b, "  ", nil)
	if !strings.Contains(empty, "(no output)") {
		t.Errorf("got %q", empty)
	}
}
