package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
)

// StepStatus tracks a step through its lifecycle. Transitions are monotonic:
// pending -> submitted -> confirmed|failed. A confirmed or failed step never
// changes again, and submitted never returns to pending.
type StepStatus string

const (
	StatusPending   StepStatus = "pending"
	StatusSubmitted StepStatus = "submitted"
	StatusConfirmed StepStatus = "confirmed"
	StatusFailed    StepStatus = "failed"
)

// ErrorKind classifies step failures so callers can pick a recovery action.
type ErrorKind string

const (
	// KindInvalidInput: malformed parameters, rejected before any step runs.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindBuildError: the step could not construct a transaction from the
	// run context. Nothing was submitted.
	KindBuildError ErrorKind = "build_error"
	// KindSubmissionError: the signer or gateway rejected the transaction.
	KindSubmissionError ErrorKind = "submission_error"
	// KindConfirmationTimeout: the transaction was submitted but did not
	// confirm in time. It may still land on-chain; outcome is unknown.
	KindConfirmationTimeout ErrorKind = "confirmation_timeout"
	// KindReverted: the ledger executed and rejected the transaction
	// (e.g. the minimum-out guard fired).
	KindReverted ErrorKind = "reverted"
)

// StepError is a step failure tagged with its kind.
type StepError struct {
	Step string
	Kind ErrorKind
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %s: %v", e.Step, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// TxPayload is a built but unsigned transaction: the instruction list plus
// any extra keypairs that must co-sign (e.g. a freshly generated mint).
// The fee payer signature is added by the wallet gateway.
type TxPayload struct {
	Instructions []solana.Instruction
	Signers      []solana.PrivateKey
}

// Step is one ordered unit of work. Build produces the transaction payload
// from the accumulated run context, plus the outputs to merge into the
// context once this step's transaction confirms. Steps hold no state of
// their own.
type Step struct {
	Name  string
	Build func(ctx context.Context, values Context) (*TxPayload, map[string]string, error)
}

// Context accumulates outputs of confirmed steps (e.g. the mint address
// feeding the associated-account step). Owned exclusively by one run.
type Context map[string]string

// Clone returns an independent copy.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge folds step outputs into the context. Merging the same outputs twice
// yields the same context, so re-applying a confirmed step's outputs is a
// no-op.
func (c Context) Merge(outputs map[string]string) {
	for k, v := range outputs {
		c[k] = v
	}
}

// StepResult is the per-step outcome recorded on the run.
type StepResult struct {
	Name      string     `json:"name"`
	Status    StepStatus `json:"status"`
	Signature string     `json:"signature,omitempty"`
	Err       *StepError `json:"-"`
	ErrKind   ErrorKind  `json:"error_kind,omitempty"`
	ErrMsg    string     `json:"error,omitempty"`
}

// Run is the mutable execution record for one workflow. It is created when
// the workflow starts, mutated only by the orchestrator, and terminal once
// any step fails or the last step confirms.
type Run struct {
	ID         string        `json:"id"`
	Workflow   string        `json:"workflow"`
	Steps      []*StepResult `json:"steps"`
	Context    Context       `json:"context"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Canceled   bool          `json:"canceled,omitempty"`
}

// Succeeded reports whether every step confirmed.
func (r *Run) Succeeded() bool {
	for _, s := range r.Steps {
		if s.Status != StatusConfirmed {
			return false
		}
	}
	return len(r.Steps) > 0
}

// Err returns the first step failure, or nil if no step failed. A canceled
// run with a step left submitted has no failure: its outcome is unknown.
func (r *Run) Err() *StepError {
	for _, s := range r.Steps {
		if s.Err != nil {
			return s.Err
		}
	}
	return nil
}

// markStatus enforces monotonic step transitions.
func (s *StepResult) markStatus(next StepStatus) {
	switch s.Status {
	case StatusConfirmed, StatusFailed:
		return // terminal, never changes
	case StatusSubmitted:
		if next == StatusPending {
			return
		}
	}
	s.Status = next
}

func (s *StepResult) fail(kind ErrorKind, err error) {
	s.markStatus(StatusFailed)
	s.Err = &StepError{Step: s.Name, Kind: kind, Err: err}
	s.ErrKind = kind
	s.ErrMsg = err.Error()
}
