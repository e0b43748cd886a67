package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/tally/internal/action"
	"github.com/roach88/tally/internal/classifier"
	"github.com/roach88/tally/internal/compose"
	"github.com/roach88/tally/internal/executor"
	"github.com/roach88/tally/internal/ledger"
	"github.com/roach88/tally/internal/orchestrator"
	"github.com/roach88/tally/internal/pending"
	"github.com/roach88/tally/internal/testutil"
)

// Harness is the test execution engine for one scenario.
type Harness struct {
	scenario *Scenario
	ledger   *ledger.SQLStore
	pending  *pending.MemoryStore
	sweeper  *pending.Sweeper
	orch     *orchestrator.Orchestrator
	clock    *testutil.ManualClock
	names    map[string]string // "as" name -> staged id
	logger   *slog.Logger
}

// Option configures Run.
type Option func(*Harness)

// WithLogger routes pipeline logs to l instead of discarding them.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// Run executes a scenario in a fresh, isolated pipeline and returns the
// result. Expect and assertion mismatches are reported in the result;
// an error means the scenario could not be executed at all.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		scenario: scenario,
		clock:    testutil.NewManualClock(testutil.Epoch),
		names:    make(map[string]string),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	led, err := ledger.Open(string(ledger.DialectSQLite), ":memory:",
		ledger.WithClock(h.clock),
		ledger.WithIDFunc(testutil.NewSequenceGenerator("rec").Next),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory ledger: %w", err)
	}
	defer led.Close()
	h.ledger = led

	cls, err := classifier.NewScripted()
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}
	for text, raw := range scenario.Replies {
		cls.Reply(text, raw)
	}

	comp, err := compose.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create composer: %w", err)
	}

	h.pending = pending.NewMemoryStore(scenario.TTL, pending.WithClock(h.clock))
	h.sweeper = pending.NewSweeper(h.pending, 0, pending.WithSweepLogger(h.logger))
	h.orch = orchestrator.New(cls, h.pending, led, executor.New(led, h.logger), comp,
		orchestrator.WithIDGenerator(testutil.NewSequenceGenerator("act")),
		orchestrator.WithClock(h.clock),
		orchestrator.WithLogger(h.logger),
		orchestrator.WithJournal(led),
	)

	if err := h.seed(ctx); err != nil {
		return nil, fmt.Errorf("failed to seed catalog: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	for _, msg := range EvaluateAssertions(ctx, h, scenario.Assertions) {
		result.AddError(msg)
	}

	items, err := led.ListItems(ctx, scenario.Owner)
	if err != nil {
		return nil, fmt.Errorf("failed to read final stock: %w", err)
	}
	for _, it := range items {
		result.Stock[it.Name] = action.FormatQuantity(it.Quantity)
	}

	return result, nil
}

func (h *Harness) seed(ctx context.Context) error {
	for i, item := range h.scenario.Catalog {
		in := ledger.NewItem{Owner: h.scenario.Owner, Name: item.Name, Category: item.Category}
		fields := []struct {
			raw string
			dst *decimal.Decimal
		}{
			{item.Quantity, &in.Quantity},
			{item.CostPrice, &in.CostPrice},
			{item.Price, &in.Price},
		}
		for _, f := range fields {
			if f.raw == "" {
				continue
			}
			d, err := decimal.NewFromString(f.raw)
			if err != nil {
				return fmt.Errorf("catalog[%d]: %w", i, err)
			}
			*f.dst = d
		}
		if _, err := h.ledger.CreateItem(ctx, in); err != nil {
			return fmt.Errorf("catalog[%d]: %w", i, err)
		}
	}
	return nil
}

func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) error {
	owner := step.Owner
	if owner == "" {
		owner = h.scenario.Owner
	}

	var (
		ev       TraceEvent
		mismatch []string
	)
	switch step.Kind() {
	case StepStage:
		res, err := h.orch.Stage(ctx, owner, step.Stage, h.scenario.Locale)
		if err != nil {
			return err
		}
		if res.Staged && step.As != "" {
			h.names[step.As] = res.ID
		}
		ev = TraceEvent{Step: StepStage, Owner: owner, ID: res.ID, Reason: string(res.Reason), Message: res.Message}
		if res.Staged {
			ev.Kind = res.Kind.String()
			ev.Message = res.Preview
		}
		mismatch = checkStage(step.Expect, res, ev.Message)

	case StepConfirm, StepCancel:
		ref, confirmed := step.Confirm, true
		if step.Kind() == StepCancel {
			ref, confirmed = step.Cancel, false
		}
		id, ok := h.names[ref]
		if !ok {
			id = ref
		}
		res, err := h.orch.Resolve(ctx, owner, id, confirmed, h.scenario.Locale)
		if err != nil {
			return err
		}
		ev = TraceEvent{
			Step:    step.Kind(),
			Owner:   owner,
			ID:      id,
			Outcome: string(res.Outcome),
			Code:    string(res.Code),
			Message: res.Message,
		}
		if res.Kind.Valid() {
			ev.Kind = res.Kind.String()
		}
		mismatch = checkResolve(step.Expect, res)

	case StepAdvance:
		h.clock.Advance(step.Advance)
		ev = TraceEvent{Step: StepAdvance, Message: step.Advance.String()}

	case StepSweep:
		removed := h.sweeper.SweepOnce(ctx)
		ev = TraceEvent{Step: StepSweep, Removed: removed}
		if step.Expect != nil && step.Expect.Removed != nil && *step.Expect.Removed != removed {
			mismatch = append(mismatch, fmt.Sprintf("removed: expected %d, got %d", *step.Expect.Removed, removed))
		}
	}

	ev.At = h.clock.Now().UTC().Format(time.RFC3339)
	result.record(ev)

	for _, m := range mismatch {
		result.AddError(fmt.Sprintf("steps[%d] (%s): %s", i, ev.Step, m))
	}

	h.logger.Info("scenario step completed",
		"step", i,
		"kind", ev.Step,
		"id", ev.ID,
		"outcome", ev.Outcome,
	)
	return nil
}

func checkStage(want *Expect, got orchestrator.StageResult, message string) []string {
	if want == nil {
		return nil
	}
	var out []string
	if want.Staged != nil && *want.Staged != got.Staged {
		out = append(out, fmt.Sprintf("staged: expected %t, got %t (reason %q, detail %q)",
			*want.Staged, got.Staged, got.Reason, got.Detail))
	}
	if want.Kind != "" && (!got.Staged || got.Kind.String() != want.Kind) {
		out = append(out, fmt.Sprintf("kind: expected %s, got %s", want.Kind, got.Kind))
	}
	if want.Reason != "" && string(got.Reason) != want.Reason {
		out = append(out, fmt.Sprintf("reason: expected %s, got %q", want.Reason, got.Reason))
	}
	if want.Outcome != "" || want.Code != "" {
		out = append(out, "outcome and code do not apply to a stage step")
	}
	return append(out, checkContains(want.Contains, message)...)
}

func checkResolve(want *Expect, got orchestrator.ResolveResult) []string {
	if want == nil {
		return nil
	}
	var out []string
	if want.Outcome != "" && string(got.Outcome) != want.Outcome {
		out = append(out, fmt.Sprintf("outcome: expected %s, got %s", want.Outcome, got.Outcome))
	}
	if want.Code != "" && string(got.Code) != want.Code {
		out = append(out, fmt.Sprintf("code: expected %s, got %q", want.Code, got.Code))
	}
	if want.Kind != "" && got.Kind.String() != want.Kind {
		out = append(out, fmt.Sprintf("kind: expected %s, got %s", want.Kind, got.Kind))
	}
	if want.Staged != nil || want.Reason != "" {
		out = append(out, "staged and reason do not apply to a resolve step")
	}
	return append(out, checkContains(want.Contains, got.Message)...)
}

func checkContains(want []string, message string) []string {
	var out []string
	for _, s := range want {
		if !strings.Contains(message, s) {
			out = append(out, fmt.Sprintf("message %q does not contain %q", message, s))
		}
	}
	return out
}
