package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mberthelot/valet/pkg/blocks"
)

// PlanStep assigns one subtask to a named agent role.
type PlanStep struct {
	Agent string `json:"agent"`
	Task  string `json:"task"`
}

type plan struct {
	Plan []PlanStep `json:"plan"`
}

// Planner asks the model for a fenced json plan and delegates each step to
// the matching agent, threading earlier results into later tasks.
type Planner struct {
	*Agent
	team map[string]Runner
	log  *zap.Logger
}

func NewPlanner(inner *Agent, team map[string]Runner, log *zap.Logger) *Planner {
	return &Planner{
		Agent: inner,
		team:  team,
		log:   log.Named("planner"),
	}
}

func (p *Planner) Process(ctx context.Context, query string, out chan<- string) (*Result, error) {
	res, err := p.Agent.Process(ctx, query, out)
	if err != nil {
		return nil, err
	}

	steps, err := ParsePlan(res.Answer)
	if err != nil {
		// No parsable plan means the model answered directly.
		return res, nil
	}

	p.log.Info("executing plan", zap.Int("steps", len(steps)))

	var summaries []string
	var context_ string
	for i, step := range steps {
		delegate, ok := p.team[step.Agent]
		if !ok {
			summaries = append(summaries, fmt.Sprintf("Step %d skipped: no %q agent.", i+1, step.Agent))
			continue
		}

		task := step.Task
		if context_ != "" {
			task += "\n\nContext from previous steps:\n" + context_
		}

		sub, err := delegate.Process(ctx, task, out)
		if err != nil {
			summaries = append(summaries, fmt.Sprintf("Step %d (%s) failed: %v", i+1, step.Agent, err))
			continue
		}
		res.Executions = append(res.Executions, sub.Executions...)
		summaries = append(summaries, fmt.Sprintf("Step %d (%s): %s", i+1, step.Agent, sub.Answer))
		context_ = sub.Answer
	}

	res.Answer = strings.Join(summaries, "\n\n")
	return res, nil
}

// ParsePlan extracts the plan from a fenced json block.
func ParsePlan(text string) ([]PlanStep, error) {
	for _, b := range blocks.ExtractBlocks(text) {
		if b.Tool != "json" {
			continue
		}
		var p plan
		if err := json.Unmarshal([]byte(b.Payload), &p); err != nil {
			return nil, fmt.Errorf("invalid plan json: %w", err)
		}
		if len(p.Plan) == 0 {
			return nil, fmt.Errorf("plan is empty")
		}
		for i, step := range p.Plan {
			if step.Agent == "" || step.Task == "" {
				return nil, fmt.Errorf("plan step %d is missing agent or task", i+1)
			}
		}
		return p.Plan, nil
	}
	return nil, fmt.Errorf("no plan block found")
}
