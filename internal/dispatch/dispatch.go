// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/orb-tui/internal/conversation"
	"github.com/jeranaias/orb-tui/internal/extract"
	"github.com/jeranaias/orb-tui/internal/jsonvalue"
	"github.com/jeranaias/orb-tui/internal/webhook"
)

// =============================================================================
// STATE
// =============================================================================

// Phase is the dispatcher's request state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
)

func (p Phase) String() string {
	if p == PhasePending {
		return "pending"
	}
	return "idle"
}

// Status is a snapshot of the dispatcher.
type Status struct {
	Phase Phase
	// Err is the last failure, cleared by the next accepted submit.
	Err error
}

// Pending reports whether a request is in flight.
func (s Status) Pending() bool { return s.Phase == PhasePending }

// Outcome describes what a submit did.
type Outcome int

const (
	// OutcomeRejected: empty input or already pending; nothing changed.
	OutcomeRejected Outcome = iota
	// OutcomeRecorded: an exchange was appended.
	OutcomeRecorded
	// OutcomeEmpty: the webhook answered with no text; nothing appended.
	OutcomeEmpty
	// OutcomeFailed: the request failed; Status.Err is set.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRejected:
		return "rejected"
	case OutcomeRecorded:
		return "recorded"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of one submit.
type Result struct {
	Outcome  Outcome
	Exchange conversation.Exchange
	// Source is the extraction rule that produced the answer.
	Source extract.Source
	Err    error
}

// =============================================================================
// ERRORS
// =============================================================================

// FailureMessage is shown for failures that carry no message of their own.
const FailureMessage = "Failed to get response. Please try again."

// ErrEmptyAnswer is reported for blank answers when ReportEmpty is set.
var ErrEmptyAnswer = errors.New("The server returned an empty answer")

// FailureError wraps an unexpected failure behind FailureMessage.
type FailureError struct {
	Cause error
}

func (e *FailureError) Error() string { return FailureMessage }

func (e *FailureError) Unwrap() error { return e.Cause }

// userFacing keeps errors that already carry a display message and wraps
// the rest.
func userFacing(err error) error {
	var clientErr *webhook.ClientError
	if errors.As(err, &clientErr) {
		return err
	}
	var persistErr *conversation.PersistError
	if errors.As(err, &persistErr) {
		return err
	}
	if errors.Is(err, ErrEmptyAnswer) {
		return err
	}
	return &FailureError{Cause: err}
}

// =============================================================================
// DISPATCHER
// =============================================================================

// Asker sends a query and returns the raw response payload.
type Asker interface {
	Ask(ctx context.Context, query string) (jsonvalue.Value, error)
}

// Options tune a Dispatcher. Zero values select defaults.
type Options struct {
	// ReportEmpty turns blank answers into ErrEmptyAnswer.
	ReportEmpty bool
	Logger      *zap.Logger
	// Now stamps exchanges (default time.Now).
	Now func() time.Time
	// NewID names exchanges (default random UUIDs).
	NewID func() string
}

// Dispatcher serializes queries against one conversation.
type Dispatcher struct {
	asker Asker
	store *conversation.Store
	log   *zap.Logger
	now   func() time.Time
	newID func() string

	mu          sync.Mutex
	status      Status
	abort       context.CancelFunc
	reportEmpty bool
}

// New creates an idle dispatcher.
func New(asker Asker, store *conversation.Store, opts Options) *Dispatcher {
	d := &Dispatcher{
		asker:       asker,
		store:       store,
		log:         opts.Logger,
		now:         opts.Now,
		newID:       opts.NewID,
		reportEmpty: opts.ReportEmpty,
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.newID == nil {
		d.newID = uuid.NewString
	}
	return d
}

// Status returns a snapshot of the dispatcher state.
func (d *Dispatcher) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Store returns the conversation the dispatcher appends to.
func (d *Dispatcher) Store() *conversation.Store {
	return d.store
}

// SetReportEmpty changes how blank answers are reported.
func (d *Dispatcher) SetReportEmpty(report bool) {
	d.mu.Lock()
	d.reportEmpty = report
	d.mu.Unlock()
}

// Normalize trims input and converts it to NFC.
func Normalize(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}

// Accept validates raw and, if it can be sent, moves the dispatcher to
// Pending and clears the previous error. It returns false without any side
// effect for blank input or while a request is pending.
func (d *Dispatcher) Accept(raw string) (*Request, bool) {
	query := Normalize(raw)
	if query == "" {
		return nil, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.status.Phase == PhasePending {
		return nil, false
	}

	abortCtx, abort := context.WithCancel(context.Background())
	d.status = Status{Phase: PhasePending}
	d.abort = abort

	return &Request{
		Query:       query,
		d:           d,
		abortCtx:    abortCtx,
		abort:       abort,
		reportEmpty: d.reportEmpty,
	}, true
}

// Submit is Accept followed by Run.
func (d *Dispatcher) Submit(ctx context.Context, raw string) Result {
	req, ok := d.Accept(raw)
	if !ok {
		return Result{Outcome: OutcomeRejected}
	}
	return req.Run(ctx)
}

// Cancel aborts the in-flight request. It reports whether one was pending.
func (d *Dispatcher) Cancel() bool {
	d.mu.Lock()
	abort := d.abort
	d.mu.Unlock()

	if abort == nil {
		return false
	}
	abort()
	return true
}

// finish returns the dispatcher to Idle with err as the visible error.
func (d *Dispatcher) finish(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = Status{Phase: PhaseIdle, Err: err}
	d.abort = nil
}

// =============================================================================
// REQUEST
// =============================================================================

// Request is an accepted query waiting to be sent.
type Request struct {
	// Query is the trimmed, normalized text that will be sent.
	Query string

	d           *Dispatcher
	abortCtx    context.Context
	abort       context.CancelFunc
	reportEmpty bool
	ran         atomic.Bool
}

// Run sends the query and records the answer. It blocks until the webhook
// answers, the request times out, ctx is done or the dispatcher is
// cancelled. The dispatcher is Idle again when Run returns.
func (r *Request) Run(ctx context.Context) (res Result) {
	if !r.ran.CompareAndSwap(false, true) {
		return Result{Outcome: OutcomeRejected}
	}

	d := r.d
	log := d.log.With(zap.Int("query_length", len(r.Query)))
	start := d.now()

	defer func() {
		if p := recover(); p != nil {
			log.Error("dispatch panicked", zap.Any("panic", p))
			res = Result{Outcome: OutcomeFailed, Err: &FailureError{Cause: errors.New("internal error")}}
		}
		r.abort()
		d.finish(res.Err)
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(r.abortCtx, cancel)
	defer stop()

	log.Debug("dispatching query")
	payload, err := d.asker.Ask(runCtx, r.Query)
	if err != nil {
		err = userFacing(err)
		log.Warn("query failed", zap.Error(err))
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	extracted := extract.Extract(payload)
	if strings.TrimSpace(extracted.Text) == "" {
		log.Info("webhook returned an empty answer", zap.Stringer("source", extracted.Source))
		if r.reportEmpty {
			return Result{Outcome: OutcomeEmpty, Source: extracted.Source, Err: ErrEmptyAnswer}
		}
		return Result{Outcome: OutcomeEmpty, Source: extracted.Source}
	}

	ex := conversation.NewExchange(d.newID(), r.Query, extracted.Text, d.now())
	if err := d.store.Append(ex); err != nil {
		var persistErr *conversation.PersistError
		if errors.As(err, &persistErr) {
			// The exchange is visible; only the session copy is stale.
			log.Error("exchange recorded but not persisted", zap.Error(err))
			return Result{Outcome: OutcomeRecorded, Exchange: ex, Source: extracted.Source, Err: err}
		}
		err = userFacing(err)
		log.Error("failed to record exchange", zap.Error(err))
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	log.Info("exchange recorded",
		zap.String("id", ex.ID),
		zap.Stringer("source", extracted.Source),
		zap.Duration("elapsed", d.now().Sub(start)))
	return Result{Outcome: OutcomeRecorded, Exchange: ex, Source: extracted.Source}
}
