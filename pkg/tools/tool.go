package tools

import (
	"context"
	"fmt"
)

// Definition describes a tool to the rest of the program (doctor output,
// logs). The model learns tool syntax from its prompt, not from here.
type Definition struct {
	Name        string
	Description string
	Actions     []string // recognized action suffixes; "" is the default action
}

// Tool executes one fenced block payload. Execution failures that the model
// should see (a failing command, a missing file) are returned in the result
// string; a Go error means the invocation itself was invalid.
type Tool interface {
	Definition() Definition
	Execute(ctx context.Context, action, payload string) (string, error)
}

// Registry maps tool names to executors. Each agent carries its own registry
// so the file agent cannot fetch web pages and the browser agent cannot run
// shell commands.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range ts {
		r.Register(t)
	}
	return r
}

func (r *Registry) Register(t Tool) {
	name := t.Definition().Name
	if _, ok := r.tools[name]; !ok {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) supportsAction(t Tool, action string) bool {
	if action == "" {
		return true
	}
	for _, a := range t.Definition().Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Execute dispatches a named invocation to the matching tool.
func (r *Registry) Execute(ctx context.Context, name, action, payload string) (string, error) {
	t, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}
	if !r.supportsAction(t, action) {
		return "", fmt.Errorf("tool %q has no action %q", name, action)
	}
	return t.Execute(ctx, action, payload)
}
