// Package interaction runs the conversation between the user and the agent
// team: read a query, route it, let the agent work, show the answer, log the
// exchange.
package interaction

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mberthelot/valet/pkg/agent"
	"github.com/mberthelot/valet/pkg/history"
	"github.com/mberthelot/valet/pkg/llm"
	"github.com/mberthelot/valet/pkg/router"
	"github.com/mberthelot/valet/pkg/ui"
)

// Words that end the session when typed alone.
var exitWords = map[string]bool{
	"exit":    true,
	"goodbye": true,
	"quit":    true,
}

type Options struct {
	Team               *agent.Team
	UI                 *ui.UI
	BaseDir            string // session storage root, normally ~/.valet
	CWD                string
	SaveSession        bool
	RecoverLastSession bool
	Log                *zap.Logger
}

type Interaction struct {
	team    *agent.Team
	ui      *ui.UI
	router  *router.Router
	session *history.SessionManager
	current agent.Runner
	log     *zap.Logger
}

func New(opts Options) (*Interaction, error) {
	it := &Interaction{
		team:   opts.Team,
		ui:     opts.UI,
		router: router.New(opts.Log),
		log:    opts.Log.Named("interaction"),
	}

	if opts.RecoverLastSession {
		byAgent, err := history.RecoverLast(opts.BaseDir, opts.CWD)
		if err != nil {
			it.ui.PrettyPrint(fmt.Sprintf("No session to recover: %v", err), ui.ColorWarning)
		} else {
			for role, msgs := range byAgent {
				if runner, ok := it.team.Agents[role]; ok {
					runner.Restore(msgs)
				}
			}
			it.ui.PrettyPrint("Recovered last session.", ui.ColorStatus)
		}
	}

	if opts.SaveSession {
		sm, err := history.NewSessionManager(opts.BaseDir, opts.CWD)
		if err != nil {
			return nil, fmt.Errorf("failed to start session log: %w", err)
		}
		it.session = sm
		it.log.Info("session started", zap.String("id", sm.SessionID))
	}

	return it, nil
}

// Run loops until the user types an exit word or cancels the prompt.
func (it *Interaction) Run(ctx context.Context) error {
	for {
		input := it.ui.Prompt("➤ ")
		if input == "" {
			continue
		}
		if exitWords[strings.ToLower(input)] {
			it.ui.PrettyPrint("Goodbye.", ui.ColorStatus)
			return nil
		}

		if err := it.handle(ctx, input); err != nil {
			it.ui.PrettyPrint(fmt.Sprintf("Error: %v", err), ui.ColorFailure)
		}
	}
}

func (it *Interaction) handle(ctx context.Context, input string) error {
	role := it.router.Route(input)
	runner, ok := it.team.Agents[role]
	if !ok {
		return fmt.Errorf("no agent for role %q", role)
	}

	if runner != it.current {
		it.current = runner
		it.ui.PrettyPrint(fmt.Sprintf("[%s agent]", role), ui.ColorStatus)
	}

	it.record(role, llm.Message{Role: llm.RoleUser, Content: input})

	// Stream the model's raw output live, then print the cleaned answer.
	out := make(chan string, 64)
	type outcome struct {
		res *agent.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := runner.Process(ctx, input, out)
		close(out)
		done <- outcome{res, err}
	}()
	it.ui.DisplayStream(out)

	o := <-done
	if o.err != nil {
		return o.err
	}

	it.showResult(o.res)
	it.record(role, llm.Message{Role: llm.RoleAssistant, Content: o.res.Answer})
	return nil
}

func (it *Interaction) showResult(res *agent.Result) {
	for _, ex := range res.Executions {
		status := ui.ColorSuccess
		if ex.Err != nil || strings.HasPrefix(ex.Output, "Error:") {
			status = ui.ColorWarning
		}
		it.ui.PrettyPrint(fmt.Sprintf("› %s", ex.Block.Name()), status)
	}
	if res.Answer != "" {
		it.ui.Print("")
		it.ui.PrettyPrint(res.Answer, ui.ColorDefault)
	}
}

func (it *Interaction) record(role string, msg llm.Message) {
	if it.session == nil {
		return
	}
	if err := it.session.Append(role, msg); err != nil {
		it.log.Warn("failed to log message", zap.Error(err))
	}
}
