package reconcile

import (
	"context"
	"errors"

	"go.uber.org/multierr"

	pkgerrors "github.com/angelmondragon/spesa/pkg/errors"
	"github.com/angelmondragon/spesa/pkg/logger"
	"github.com/angelmondragon/spesa/pkg/metrics"
)

const (
	OutcomeApplied     = "applied"
	OutcomeCommitted   = "committed"
	OutcomeCompensated = "compensated"
	OutcomeNoop        = "noop"
	OutcomeRejected    = "rejected"
)

// Change is reported to the OnChange hook after every state transition.
type Change struct {
	Command string
	Outcome string
	Err     error
}

// Executor runs commands against one State. Begin and Finish must be called
// from the goroutine that owns the State; Pending.Commit may run anywhere.
type Executor struct {
	state    *State
	remote   Remote
	logg     *logger.Logger
	metrics  *metrics.ClientMetrics
	onChange func(Change)
}

type Option func(*Executor)

func WithLogger(logg *logger.Logger) Option {
	return func(e *Executor) {
		if logg != nil {
			e.logg = logg
		}
	}
}

func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// OnChange registers the hook that re-derives the views.
func OnChange(fn func(Change)) Option {
	return func(e *Executor) { e.onChange = fn }
}

func NewExecutor(state *State, remote Remote, opts ...Option) *Executor {
	e := &Executor{state: state, remote: remote, logg: logger.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) State() *State { return e.state }

// Pending is an applied command waiting for its remote commit.
type Pending struct {
	cmd    Command
	remote Remote
	owner  *Executor
}

func (p *Pending) Command() Command { return p.cmd }

// Commit mirrors the command to the server.
func (p *Pending) Commit(ctx context.Context) error {
	return p.cmd.Commit(ctx, p.remote)
}

// Begin applies cmd locally. ErrNoChange and lookup errors are returned
// without anything to commit.
func (e *Executor) Begin(ctx context.Context, cmd Command) (*Pending, error) {
	if err := cmd.Apply(e.state); err != nil {
		outcome := OutcomeRejected
		if errors.Is(err, ErrNoChange) {
			outcome = OutcomeNoop
		}
		e.metrics.IncCommand(cmd.Name(), outcome)
		e.logg.Debug(e.logg.WithField(ctx, "command", cmd.Name()), "command not applied: "+err.Error())
		return nil, err
	}
	e.notify(Change{Command: cmd.Name(), Outcome: OutcomeApplied})
	return &Pending{cmd: cmd, remote: e.remote, owner: e}, nil
}

// Owns reports whether p was begun on e. A Pending from an executor that has
// since been replaced must not touch e's State.
func (e *Executor) Owns(p *Pending) bool {
	return p != nil && p.owner == e
}

// Finish settles or compensates p depending on commitErr and returns it.
// A Pending begun on another executor is dropped without effect.
func (e *Executor) Finish(ctx context.Context, p *Pending, commitErr error) error {
	name := p.cmd.Name()
	ctx = e.logg.WithField(ctx, "command", name)
	if !e.Owns(p) {
		e.logg.Debug(ctx, "dropping result of a command from a replaced state")
		return nil
	}
	if commitErr != nil {
		p.cmd.Compensate(e.state)
		e.metrics.IncCommand(name, OutcomeCompensated)
		fields := pkgerrors.Dump(commitErr).Fields()
		e.logg.Warn(e.logg.WithFields(ctx, fields), "remote commit failed, local change reverted")
		e.notify(Change{Command: name, Outcome: OutcomeCompensated, Err: commitErr})
		return commitErr
	}
	if s, ok := p.cmd.(Settler); ok {
		s.Settle(e.state)
	}
	e.metrics.IncCommand(name, OutcomeCommitted)
	e.notify(Change{Command: name, Outcome: OutcomeCommitted})
	return nil
}

// Execute runs a command to completion on the calling goroutine. A no-op
// command returns nil.
func (e *Executor) Execute(ctx context.Context, cmd Command) error {
	p, err := e.Begin(ctx, cmd)
	if errors.Is(err, ErrNoChange) {
		return nil
	}
	if err != nil {
		return err
	}
	return e.Finish(ctx, p, p.Commit(ctx))
}

// ExecuteAll runs each command independently; failures are compensated one
// by one and combined in the returned error.
func (e *Executor) ExecuteAll(ctx context.Context, cmds []Command) error {
	var err error
	for _, cmd := range cmds {
		err = multierr.Append(err, e.Execute(ctx, cmd))
	}
	return err
}

// Clear asks confirm before clearing the cart. A declined confirmation is a
// no-op.
func (e *Executor) Clear(ctx context.Context, confirm func() bool) error {
	if confirm == nil || !confirm() {
		return nil
	}
	return e.Execute(ctx, &ClearCart{})
}

// Finalize finalizes the bought rows and returns the count reported by the
// server. It returns 0 and no error when nothing is bought.
func (e *Executor) Finalize(ctx context.Context) (int, error) {
	cmd := &Finalize{}
	if err := e.Execute(ctx, cmd); err != nil {
		return 0, err
	}
	return cmd.Count(), nil
}

// ToggleAllVisible applies the select-all / deselect-all flip.
func (e *Executor) ToggleAllVisible(ctx context.Context, visible []int64) error {
	return e.ExecuteAll(ctx, ToggleAllVisible(e.state, visible))
}

func (e *Executor) notify(c Change) {
	if e.onChange != nil {
		e.onChange(c)
	}
}
