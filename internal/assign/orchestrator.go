// Package assign drives an assign/reassign attempt to a terminal state,
// folding conflict verdicts and the user's override decision into one flow.
package assign

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/atiapp/inviteboard/internal/conflict"
)

type State int

const (
	Idle State = iota
	Evaluating
	AwaitingOverride
	Committing
	Committed
	Abandoned
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Evaluating:
		return "evaluating"
	case AwaitingOverride:
		return "awaiting_override"
	case Committing:
		return "committing"
	case Committed:
		return "committed"
	case Abandoned:
		return "abandoned"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the attempt is finished.
func (s State) Terminal() bool {
	return s == Committed || s == Abandoned || s == Failed
}

type Request struct {
	InvitationID uint
	PersonID     uint
	Role         string
	Comment      string
	Substitute   bool
}

// Evaluator computes a local verdict over a fresh-enough snapshot before any
// mutation is attempted.
type Evaluator interface {
	Evaluate(ctx context.Context, req Request) (*conflict.Verdict, error)
}

// Decider is the user-decision suspension point: shown a verdict, the user
// answers whether to override it.
type Decider interface {
	Decide(ctx context.Context, v *conflict.Verdict) (bool, error)
}

// Committer issues the actual mutation. A *conflict.Error return means the
// backend re-validated and rejected; anything else non-nil is fatal.
type Committer interface {
	Commit(ctx context.Context, req Request, force bool) error
}

type Result struct {
	State   State
	Verdict *conflict.Verdict
}

type Orchestrator struct {
	logger    *slog.Logger
	evaluator Evaluator
	committer Committer
	decider   Decider

	mx sync.Mutex
}

func New(e Evaluator, c Committer, d Decider) *Orchestrator {
	return &Orchestrator{
		logger:    slog.Default().With("logger", "assign"),
		evaluator: e,
		committer: c,
		decider:   d,
	}
}

// Run processes one assignment attempt. Attempts are serialized: a second
// call blocks until the first reaches a terminal state, the way the
// dashboard disables its trigger button while a request is pending.
//
// The returned error is nil for Committed and Abandoned; Failed carries the
// underlying error.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	o.mx.Lock()
	defer o.mx.Unlock()

	res := &Result{State: Evaluating}

	v, err := o.evaluator.Evaluate(ctx, req)
	if err != nil {
		res.State = Failed

		return res, err
	}

	force := false

	if !v.None() {
		res.State = AwaitingOverride
		res.Verdict = v

		ok, err := o.decider.Decide(ctx, v)
		if err != nil {
			res.State = Failed

			return res, err
		}

		if !ok {
			res.State = Abandoned

			return res, nil
		}

		force = true
	}

	for {
		res.State = Committing

		err := o.committer.Commit(ctx, req, force)
		if err == nil {
			res.State = Committed

			return res, nil
		}

		var ce *conflict.Error

		if !errors.As(err, &ce) {
			res.State = Failed

			return res, err
		}

		// the backend re-validated against fresher data; its verdict
		// replaces the local one
		o.logger.Info("server-side conflict", slog.String("level", string(ce.Verdict.Level)))

		res.State = AwaitingOverride
		res.Verdict = &ce.Verdict

		ok, derr := o.decider.Decide(ctx, &ce.Verdict)
		if derr != nil {
			res.State = Failed

			return res, derr
		}

		if !ok {
			res.State = Abandoned

			return res, nil
		}

		force = true
	}
}
