package agent

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mberthelot/valet/pkg/llm"
	"github.com/mberthelot/valet/pkg/prompts"
	"github.com/mberthelot/valet/pkg/tools"
)

// TeamOptions carries everything needed to assemble the agent roster.
type TeamOptions struct {
	Client       llm.Client
	AgentName    string // display name of the casual agent
	Personality  string
	Workspace    string
	SearxAddress string
	Log          *zap.Logger
}

// Team is the agent roster keyed by role.
type Team struct {
	Agents map[string]Runner
	finder *tools.FileFinderTool
}

// BuildTeam wires one agent per role with its prompt and tool set. The file
// and coder agents share the workspace tools; the browser agent gets the web
// tools; casual and planner carry none.
func BuildTeam(opts TeamOptions) (*Team, error) {
	load := func(role string) (string, error) {
		return prompts.Load(opts.Personality, role)
	}

	bash := tools.NewBashTool(opts.Workspace, opts.Log)
	finder := tools.NewFileFinderTool(opts.Workspace, opts.Log)
	workspaceTools := func() *tools.Registry {
		return tools.NewRegistry(bash, finder)
	}
	webTools := tools.NewRegistry(
		tools.NewSearchTool(opts.SearxAddress, opts.Log),
		tools.NewFetchTool(),
	)

	agents := make(map[string]Runner)
	for _, role := range prompts.Roles() {
		prompt, err := load(role)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s agent: %w", role, err)
		}

		name := role
		var registry *tools.Registry
		switch role {
		case "casual":
			name = opts.AgentName
		case "coder", "file":
			registry = workspaceTools()
		case "browser":
			registry = webTools
		case "planner":
			// wrapped below once the delegates exist
		}
		agents[role] = New(name, role, prompt, opts.Client, registry, opts.Log)
	}

	inner := agents["planner"].(*Agent)
	delegates := map[string]Runner{
		"casual":  agents["casual"],
		"coder":   agents["coder"],
		"file":    agents["file"],
		"browser": agents["browser"],
	}
	agents["planner"] = NewPlanner(inner, delegates, opts.Log)

	return &Team{Agents: agents, finder: finder}, nil
}

// Close releases the file index watcher.
func (t *Team) Close() error {
	if t.finder != nil {
		return t.finder.Close()
	}
	return nil
}
