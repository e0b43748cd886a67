package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/tally/internal/action"
	"github.com/roach88/tally/internal/classifier"
	"github.com/roach88/tally/internal/compose"
	"github.com/roach88/tally/internal/executor"
	"github.com/roach88/tally/internal/pending"
)

// ErrNoOwner is returned when Stage or Resolve is called without an owner.
var ErrNoOwner = errors.New("owner is required")

// Catalog supplies the owner's item names as classifier context.
type Catalog interface {
	ItemNames(ctx context.Context, owner string) ([]string, error)
}

// Executor applies a confirmed payload.
type Executor interface {
	Execute(ctx context.Context, owner string, p action.Payload) (executor.Result, error)
}

// Journal records staged actions and how they ended. Journal writes are
// best effort: a failed write is logged and never changes an outcome.
type Journal interface {
	RecordStaged(ctx context.Context, st action.Staged) error
	RecordResolution(ctx context.Context, id, outcome, code string) error
}

// Orchestrator wires the protocol's collaborators together. It holds no
// state of its own; all shared state lives in the pending store, so one
// Orchestrator may serve any number of goroutines.
type Orchestrator struct {
	classifier classifier.Classifier
	pending    pending.Store
	catalog    Catalog
	executor   Executor
	composer   *compose.Composer
	journal    Journal
	ids        action.IDGenerator
	clock      action.Clock
	logger     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithIDGenerator replaces the default action.TimeOwnerGenerator.
func WithIDGenerator(g action.IDGenerator) Option {
	return func(o *Orchestrator) {
		o.ids = g
	}
}

// WithJournal records every staged action and every resolution that
// consumed one.
func WithJournal(j Journal) Option {
	return func(o *Orchestrator) {
		o.journal = j
	}
}

// WithClock replaces the wall clock used for issue times.
func WithClock(c action.Clock) Option {
	return func(o *Orchestrator) {
		o.clock = c
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an Orchestrator.
func New(
	cls classifier.Classifier,
	store pending.Store,
	catalog Catalog,
	exec Executor,
	composer *compose.Composer,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		classifier: cls,
		pending:    store,
		catalog:    catalog,
		executor:   exec,
		composer:   composer,
		ids:        action.TimeOwnerGenerator{},
		clock:      action.SystemClock{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// TTL is how long a staged action stays resolvable.
func (o *Orchestrator) TTL() time.Duration {
	return o.pending.TTL()
}

// Stage classifies text and, if it describes a valid action, stages it
// for owner. Input that is empty, unclassifiable, not an action, or
// invalid yields Staged=false with a Reason; no id is minted for it.
// Only a failure to store the staged action is returned as an error.
func (o *Orchestrator) Stage(ctx context.Context, owner, text, locale string) (StageResult, error) {
	if owner == "" {
		return StageResult{}, ErrNoOwner
	}
	tag := o.composer.Match(locale).String()

	if strings.TrimSpace(text) == "" {
		return o.notStaged(tag, ReasonEmptyInput, ""), nil
	}

	names, err := o.catalog.ItemNames(ctx, owner)
	if err != nil {
		o.logger.Warn("catalog unavailable for classification",
			"owner", owner, "error", err, "event", "catalog_context_failed")
		names = nil
	}

	intent, err := o.classifier.Classify(ctx, classifier.Request{Text: text, Locale: tag, ItemNames: names})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return StageResult{}, ctxErr
		}
		o.logger.Warn("classification failed",
			"owner", owner, "error", err, "event", "classification_failed")
		return o.notStaged(tag, ReasonClassificationFailed, err.Error()), nil
	}
	if !intent.IsAction {
		o.logger.Debug("not an action", "owner", owner, "reason", intent.Reason, "event", "not_an_action")
		return o.notStaged(tag, ReasonNotAnAction, intent.Reason), nil
	}
	if err := action.Validate(intent.Payload); err != nil {
		o.logger.Info("classified action rejected",
			"owner", owner, "kind", intent.Kind().String(), "error", err, "event", "validation_failed")
		return o.notStaged(tag, ReasonValidationFailed, err.Error()), nil
	}

	now := o.clock.Now()
	st := action.Staged{
		ID:         o.ids.Generate(owner, now),
		Owner:      owner,
		Payload:    intent.Payload,
		Locale:     tag,
		IssuedAt:   now,
		SourceText: text,
		Confidence: intent.Confidence,
	}
	if err := o.pending.Put(ctx, st); err != nil {
		return StageResult{}, fmt.Errorf("stage: %w", err)
	}

	o.recordStaged(ctx, st)
	o.logger.Info("action staged",
		"id", st.ID, "owner", owner, "kind", st.Kind().String(), "event", "staged")

	return StageResult{
		Staged:     true,
		ID:         st.ID,
		Kind:       st.Kind(),
		Payload:    st.Payload,
		Preview:    o.composer.Preview(st.Payload, tag),
		Confidence: st.Confidence,
		ExpiresAt:  st.ExpiresAt(o.pending.TTL()),
	}, nil
}

func (o *Orchestrator) notStaged(tag string, reason StageReason, detail string) StageResult {
	return StageResult{
		Reason:  reason,
		Detail:  detail,
		Message: o.composer.NotAction(tag),
	}
}

// Resolve confirms or cancels the staged action id on behalf of owner.
//
// The action is taken out of the pending store before anything else
// happens, so of any number of concurrent Resolves for one id exactly one
// proceeds. Once taken it stays consumed even if execution fails.
// Messages use locale, or the locale the action was staged with when
// locale is empty.
func (o *Orchestrator) Resolve(ctx context.Context, owner, id string, confirmed bool, locale string) (ResolveResult, error) {
	if owner == "" {
		return ResolveResult{}, ErrNoOwner
	}

	st, err := o.pending.Take(ctx, id, owner)
	switch {
	case pending.IsNotFound(err):
		o.logger.Debug("nothing pending", "id", id, "owner", owner, "event", "resolve_not_found")
		return ResolveResult{
			Outcome: OutcomeNotFound,
			ID:      id,
			Message: o.composer.NothingPending(locale),
		}, nil
	case pending.IsForbidden(err):
		o.logger.Warn("resolve by non-owner rejected", "id", id, "owner", owner, "event", "resolve_forbidden")
		return ResolveResult{
			Outcome: OutcomeForbidden,
			ID:      id,
			Message: o.composer.Forbidden(locale),
		}, nil
	case err != nil:
		return ResolveResult{}, fmt.Errorf("resolve %s: %w", id, err)
	}

	if locale == "" {
		locale = st.Locale
	}
	kind := st.Kind()

	if !confirmed {
		o.logger.Info("action cancelled", "id", id, "owner", owner, "kind", kind.String(), "event", "cancelled")
		o.recordResolution(ctx, id, OutcomeCancelled, "")
		return ResolveResult{
			Outcome: OutcomeCancelled,
			ID:      id,
			Kind:    kind,
			Message: o.composer.Cancelled(locale),
		}, nil
	}

	res, err := o.executor.Execute(ctx, owner, st.Payload)
	if err != nil {
		problem := compose.Problem{Code: string(executor.CodeInternal)}
		out := ResolveResult{Outcome: OutcomeFailed, ID: id, Kind: kind, Code: executor.CodeInternal}
		if ee, ok := executor.AsExecError(err); ok {
			out.Code, out.Item = ee.Code, ee.Item
			problem = compose.Problem{
				Code:      string(ee.Code),
				Item:      ee.Item,
				Available: ee.Available,
				Requested: ee.Requested,
			}
		}
		out.Message = o.composer.Failure(locale, problem)
		o.logger.Info("action failed",
			"id", id, "owner", owner, "kind", kind.String(), "code", string(out.Code), "event", "execute_failed")
		o.recordResolution(ctx, id, OutcomeFailed, out.Code)
		return out, nil
	}

	o.logger.Info("action executed", "id", id, "owner", owner, "kind", kind.String(), "event", "executed")
	o.recordResolution(ctx, id, OutcomeExecuted, "")
	return ResolveResult{
		Outcome: OutcomeExecuted,
		ID:      id,
		Kind:    kind,
		Result:  &res,
		Message: o.composer.Success(locale, summarize(res)),
	}, nil
}

func (o *Orchestrator) recordStaged(ctx context.Context, st action.Staged) {
	if o.journal == nil {
		return
	}
	if err := o.journal.RecordStaged(ctx, st); err != nil {
		o.logger.Warn("journal write failed", "id", st.ID, "error", err, "event", "journal_failed")
	}
}

func (o *Orchestrator) recordResolution(ctx context.Context, id string, outcome Outcome, code executor.Code) {
	if o.journal == nil {
		return
	}
	if err := o.journal.RecordResolution(ctx, id, string(outcome), string(code)); err != nil {
		o.logger.Warn("journal write failed", "id", id, "error", err, "event", "journal_failed")
	}
}

func summarize(r executor.Result) compose.Summary {
	return compose.Summary{
		Kind:     r.Kind,
		Item:     r.Item,
		Total:    r.Total,
		Amount:   r.Amount,
		Category: r.Category,
		OnHand:   r.OnHand,
	}
}
