// Package prompts holds the embedded system prompt templates, one per agent
// role, in per-personality folders.
package prompts

import (
	"embed"
	"fmt"
	"path"
)

//go:embed base jarvis
var promptFS embed.FS

// Roles lists every agent role with a prompt template.
func Roles() []string {
	return []string{"casual", "coder", "file", "browser", "planner"}
}

// Load returns the prompt for a role under the given personality folder,
// falling back to the base personality when the folder lacks that role.
func Load(personality, role string) (string, error) {
	name := path.Join(personality, role+"_agent.txt")
	data, err := promptFS.ReadFile(name)
	if err != nil && personality != "base" {
		data, err = promptFS.ReadFile(path.Join("base", role+"_agent.txt"))
	}
	if err != nil {
		return "", fmt.Errorf("no prompt for role %q: %w", role, err)
	}
	return string(data), nil
}
