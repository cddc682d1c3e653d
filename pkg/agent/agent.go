package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mberthelot/valet/pkg/blocks"
	"github.com/mberthelot/valet/pkg/llm"
	"github.com/mberthelot/valet/pkg/tools"
)

// How many generate/execute rounds an agent may take for one query before it
// is cut off.
const defaultMaxRounds = 8

// Execution records one tool block run during a query.
type Execution struct {
	Block  blocks.Block
	Output string
	Err    error
}

// Result is what an agent hands back to the interaction loop.
type Result struct {
	Answer     string // final answer with tool blocks stripped
	Executions []Execution
}

// Runner is the interface the router and interaction loop work against.
// out, when non-nil, receives the model's tokens as they stream.
type Runner interface {
	Name() string
	Role() string
	Process(ctx context.Context, query string, out chan<- string) (*Result, error)
	Memory() []llm.Message
	Restore(messages []llm.Message)
}

// Agent converses with the provider and executes the fenced tool blocks the
// model emits, feeding results back until the answer is clean prose.
type Agent struct {
	name      string
	role      string
	client    llm.Client
	registry  *tools.Registry
	memory    []llm.Message
	maxRounds int
	log       *zap.Logger
}

func New(name, role, prompt string, client llm.Client, registry *tools.Registry, log *zap.Logger) *Agent {
	if registry == nil {
		registry = tools.NewRegistry()
	}
	return &Agent{
		name:      name,
		role:      role,
		client:    client,
		registry:  registry,
		memory:    []llm.Message{{Role: llm.RoleSystem, Content: prompt}},
		maxRounds: defaultMaxRounds,
		log:       log.Named("agent." + role),
	}
}

func (a *Agent) Name() string { return a.name }
func (a *Agent) Role() string { return a.role }

// Memory returns the conversation so far, system prompt included.
func (a *Agent) Memory() []llm.Message {
	return append([]llm.Message(nil), a.memory...)
}

// Restore replaces the conversation after the system prompt, used for
// session recovery.
func (a *Agent) Restore(messages []llm.Message) {
	a.memory = a.memory[:1]
	for _, m := range messages {
		if m.Role == llm.RoleSystem {
			continue
		}
		a.memory = append(a.memory, m)
	}
}

func (a *Agent) Process(ctx context.Context, query string, out chan<- string) (*Result, error) {
	a.memory = append(a.memory, llm.Message{Role: llm.RoleUser, Content: query})

	res := &Result{}
	for round := 0; round < a.maxRounds; round++ {
		msg, err := a.generate(ctx, out)
		if err != nil {
			return nil, fmt.Errorf("%s agent: %w", a.role, err)
		}
		a.memory = append(a.memory, *msg)

		runnable := a.runnableBlocks(msg.Content)
		if len(runnable) == 0 {
			res.Answer = strings.TrimSpace(msg.Content)
			return res, nil
		}

		var feedback []string
		for _, b := range runnable {
			out, err := a.registry.Execute(ctx, b.Tool, b.Action, b.Payload)
			a.log.Info("block executed",
				zap.String("tool", b.Name()),
				zap.Bool("invalid", err != nil))
			res.Executions = append(res.Executions, Execution{Block: b, Output: out, Err: err})
			feedback = append(feedback, blocks.Feedback(b, out, err))
		}

		res.Answer = blocks.StripBlocks(msg.Content, func(b blocks.Block) bool {
			_, ok := a.registry.Get(b.Tool)
			return ok
		})
		a.memory = append(a.memory, llm.Message{
			Role:    llm.RoleUser,
			Content: strings.Join(feedback, "\n\n"),
		})
	}

	// Rounds exhausted; the last stripped answer is the best we have.
	a.log.Warn("round budget exhausted", zap.Int("rounds", a.maxRounds))
	return res, nil
}

func (a *Agent) generate(ctx context.Context, out chan<- string) (*llm.Message, error) {
	if out != nil {
		return a.client.GenerateStream(ctx, a.memory, out)
	}
	return a.client.Generate(ctx, a.memory)
}

// runnableBlocks keeps only the blocks naming a tool this agent carries;
// everything else (json plans, code listings) stays in the prose.
func (a *Agent) runnableBlocks(text string) []blocks.Block {
	var out []blocks.Block
	for _, b := range blocks.ExtractBlocks(text) {
		if _, ok := a.registry.Get(b.Tool); ok {
			out = append(out, b)
		}
	}
	return out
}
