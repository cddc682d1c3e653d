// Package blocks implements the textual tool-call convention the agents use:
// the model requests work by emitting fenced code blocks whose info string
// names a tool, optionally with an action suffix, e.g.
//
//	```bash
//	ls -la
//	```
//
//	```file_finder:read
//	notes.txt
//	```
package blocks

import (
	"fmt"
	"strings"
)

const fence = "```"

// Block is one fenced tool invocation extracted from a model answer.
type Block struct {
	Tool    string // info string before the first colon
	Action  string // optional suffix after the colon, e.g. "read"
	Payload string // fenced content, without the trailing newline
}

// Name returns the info string as written, e.g. "file_finder:read".
func (b Block) Name() string {
	if b.Action == "" {
		return b.Tool
	}
	return b.Tool + ":" + b.Action
}

// ExtractBlocks returns every complete fenced block with a non-empty info
// string, in order of appearance. An unterminated fence is ignored so a
// half-written answer degrades to prose instead of executing garbage.
func ExtractBlocks(text string) []Block {
	var out []Block
	lines := strings.Split(text, "\n")

	for i := 0; i < len(lines); i++ {
		info, ok := openFence(lines[i])
		if !ok {
			continue
		}

		var payload []string
		closed := false
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == fence {
				out = append(out, newBlock(info, strings.Join(payload, "\n")))
				i = j
				closed = true
				break
			}
			payload = append(payload, lines[j])
		}
		if !closed {
			break
		}
	}
	return out
}

// StripBlocks replaces each complete block accepted by the executed
// predicate with a short marker, for display after execution. Blocks the
// predicate rejects stay in place as prose; a nil predicate marks every
// block.
func StripBlocks(text string, executed func(Block) bool) string {
	lines := strings.Split(text, "\n")
	var out []string

	for i := 0; i < len(lines); i++ {
		info, ok := openFence(lines[i])
		if !ok {
			out = append(out, lines[i])
			continue
		}

		var payload []string
		closed := false
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == fence {
				b := newBlock(info, strings.Join(payload, "\n"))
				if executed == nil || executed(b) {
					out = append(out, fmt.Sprintf("[%s block executed]", info))
				} else {
					out = append(out, lines[i:j+1]...)
				}
				i = j
				closed = true
				break
			}
			payload = append(payload, lines[j])
		}
		if !closed {
			out = append(out, lines[i:]...)
			break
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// Feedback formats a tool execution result as the next user turn for the
// model.
func Feedback(b Block, output string, err error) string {
	if err != nil {
		return fmt.Sprintf("%s execution failed:\n%v", b.Name(), err)
	}
	if strings.TrimSpace(output) == "" {
		output = "(no output)"
	}
	return fmt.Sprintf("%s execution result:\n%s", b.Name(), output)
}

func openFence(line string) (info string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, fence) {
		return "", false
	}
	info = strings.TrimSpace(strings.TrimPrefix(trimmed, fence))
	if info == "" || strings.Contains(info, "`") {
		return "", false
	}
	return info, true
}

func newBlock(info, payload string) Block {
	tool, action, _ := strings.Cut(info, ":")
	return Block{
		Tool:    tool,
		Action:  action,
		Payload: strings.TrimSpace(payload),
	}
}
