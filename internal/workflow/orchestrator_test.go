package workflow

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiralabs/launchpad/internal/ledger"
)

type fakeWallet struct {
	calls   int
	sendErr error
}

func (f *fakeWallet) SignAndSend(_ context.Context, _ *TxPayload) (string, error) {
	f.calls++
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return fmt.Sprintf("sig_%d", f.calls), nil
}

type fakeLedger struct {
	confirmErr map[string]error // per-signature outcome, nil entry = confirmed
}

func (f *fakeLedger) Confirm(_ context.Context, signature string, _ time.Duration) error {
	return f.confirmErr[signature]
}

func newTestOrchestrator(t *testing.T, w WalletGateway, l LedgerGateway) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(OrchestratorConfig{Wallet: w, Ledger: l, ConfirmTimeout: time.Second})
	require.NoError(t, err)
	return o
}

func buildStep(name string, outputs map[string]string) Step {
	return Step{
		Name: name,
		Build: func(_ context.Context, _ Context) (*TxPayload, map[string]string, error) {
			return &TxPayload{}, outputs, nil
		},
	}
}

func TestRun_AllStepsConfirm(t *testing.T) {
	o := newTestOrchestrator(t, &fakeWallet{}, &fakeLedger{})

	steps := []Step{
		buildStep("one", map[string]string{"a": "1"}),
		buildStep("two", map[string]string{"b": "2"}),
		{
			Name: "three",
			Build: func(_ context.Context, values Context) (*TxPayload, map[string]string, error) {
				// Later steps see the outputs of earlier confirmed steps.
				if values["a"] != "1" || values["b"] != "2" {
					return nil, nil, fmt.Errorf("missing upstream outputs: %v", values)
				}
				return &TxPayload{}, nil, nil
			},
		},
	}

	run := o.Run(context.Background(), "test", steps, nil)

	assert.True(t, run.Succeeded())
	assert.Nil(t, run.Err())
	assert.False(t, run.Canceled)
	for _, s := range run.Steps {
		assert.Equal(t, StatusConfirmed, s.Status)
		assert.NotEmpty(t, s.Signature)
	}
	assert.Equal(t, "1", run.Context["a"])
	assert.Equal(t, "2", run.Context["b"])
	assert.False(t, run.FinishedAt.Before(run.StartedAt))
}

func TestRun_HaltsAtFirstBuildFailure(t *testing.T) {
	o := newTestOrchestrator(t, &fakeWallet{}, &fakeLedger{})

	thirdBuilt := false
	steps := []Step{
		buildStep("one", nil),
		{
			Name: "two",
			Build: func(_ context.Context, _ Context) (*TxPayload, map[string]string, error) {
				return nil, nil, fmt.Errorf("dependency missing")
			},
		},
		{
			Name: "three",
			Build: func(_ context.Context, _ Context) (*TxPayload, map[string]string, error) {
				thirdBuilt = true
				return &TxPayload{}, nil, nil
			},
		},
	}

	run := o.Run(context.Background(), "test", steps, nil)

	assert.False(t, run.Succeeded())
	assert.Equal(t, StatusConfirmed, run.Steps[0].Status)
	assert.Equal(t, StatusFailed, run.Steps[1].Status)
	assert.Equal(t, KindBuildError, run.Steps[1].ErrKind)
	assert.Equal(t, StatusPending, run.Steps[2].Status)
	assert.False(t, thirdBuilt, "step after a failure must never be built")

	stepErr := run.Err()
	require.NotNil(t, stepErr)
	assert.Equal(t, "two", stepErr.Step)
}

func TestRun_SubmissionError(t *testing.T) {
	w := &fakeWallet{sendErr: fmt.Errorf("node rejected")}
	o := newTestOrchestrator(t, w, &fakeLedger{})

	run := o.Run(context.Background(), "test", []Step{buildStep("one", nil)}, nil)

	assert.Equal(t, StatusFailed, run.Steps[0].Status)
	assert.Equal(t, KindSubmissionError, run.Steps[0].ErrKind)
	assert.Empty(t, run.Steps[0].Signature)
}

func TestRun_SignerDeclined(t *testing.T) {
	w := &fakeWallet{sendErr: fmt.Errorf("%w: co-signer unavailable", ErrUserRejected)}
	o := newTestOrchestrator(t, w, &fakeLedger{})

	run := o.Run(context.Background(), "test", []Step{buildStep("one", nil)}, nil)

	// Nothing reached the ledger; the step fails as a retryable submission
	// error carrying the rejection sentinel.
	assert.Equal(t, StatusFailed, run.Steps[0].Status)
	assert.Equal(t, KindSubmissionError, run.Steps[0].ErrKind)
	assert.Empty(t, run.Steps[0].Signature)
	assert.Contains(t, run.Steps[0].ErrMsg, "rejected")
}

func TestRun_Reverted(t *testing.T) {
	l := &fakeLedger{confirmErr: map[string]error{
		"sig_1": &ledger.RevertedError{Signature: "sig_1", Reason: "slippage exceeded"},
	}}
	o := newTestOrchestrator(t, &fakeWallet{}, l)

	run := o.Run(context.Background(), "test", []Step{buildStep("swap", nil), buildStep("after", nil)}, nil)

	assert.Equal(t, StatusFailed, run.Steps[0].Status)
	assert.Equal(t, KindReverted, run.Steps[0].ErrKind)
	assert.Equal(t, StatusPending, run.Steps[1].Status)
}

func TestRun_ConfirmationTimeout(t *testing.T) {
	l := &fakeLedger{confirmErr: map[string]error{"sig_1": ledger.ErrConfirmTimeout}}
	o := newTestOrchestrator(t, &fakeWallet{}, l)

	run := o.Run(context.Background(), "test", []Step{buildStep("one", nil)}, nil)

	assert.Equal(t, StatusFailed, run.Steps[0].Status)
	assert.Equal(t, KindConfirmationTimeout, run.Steps[0].ErrKind)
	assert.NotEmpty(t, run.Steps[0].Signature, "timed-out step keeps its signature for manual checking")
}

func TestRun_AmbiguousConfirmError(t *testing.T) {
	// Errors that are neither reverts nor cancellation are ambiguous: the
	// transaction may have landed, so they classify as timeout, never revert.
	l := &fakeLedger{confirmErr: map[string]error{"sig_1": fmt.Errorf("rpc flaked")}}
	o := newTestOrchestrator(t, &fakeWallet{}, l)

	run := o.Run(context.Background(), "test", []Step{buildStep("one", nil)}, nil)

	assert.Equal(t, KindConfirmationTimeout, run.Steps[0].ErrKind)
}

func TestRun_CancellationLeavesSubmitted(t *testing.T) {
	l := &fakeLedger{confirmErr: map[string]error{"sig_2": context.Canceled}}
	o := newTestOrchestrator(t, &fakeWallet{}, l)

	steps := []Step{buildStep("one", nil), buildStep("two", nil), buildStep("three", nil)}
	run := o.Run(context.Background(), "test", steps, nil)

	assert.True(t, run.Canceled)
	assert.Equal(t, StatusConfirmed, run.Steps[0].Status)
	assert.Equal(t, StatusSubmitted, run.Steps[1].Status)
	assert.Equal(t, StatusPending, run.Steps[2].Status)
	assert.Nil(t, run.Err(), "a canceled step has an unknown outcome, not a failure")
	assert.False(t, run.Succeeded())
}

func TestRun_InitialContextIsCopied(t *testing.T) {
	o := newTestOrchestrator(t, &fakeWallet{}, &fakeLedger{})

	initial := Context{"seed": "x"}
	run := o.Run(context.Background(), "test", []Step{buildStep("one", map[string]string{"out": "y"})}, initial)

	assert.Equal(t, "x", run.Context["seed"])
	assert.Equal(t, "y", run.Context["out"])
	_, leaked := initial["out"]
	assert.False(t, leaked, "run outputs must not mutate the caller's map")
}

func TestContextMergeIdempotent(t *testing.T) {
	c := Context{"a": "1"}
	outputs := map[string]string{"b": "2"}

	c.Merge(outputs)
	first := c.Clone()
	c.Merge(outputs)

	assert.Equal(t, first, c)
}

func TestStepStatusMonotonic(t *testing.T) {
	s := &StepResult{Name: "x", Status: StatusPending}

	s.markStatus(StatusSubmitted)
	assert.Equal(t, StatusSubmitted, s.Status)

	// submitted never returns to pending
	s.markStatus(StatusPending)
	assert.Equal(t, StatusSubmitted, s.Status)

	s.markStatus(StatusConfirmed)
	assert.Equal(t, StatusConfirmed, s.Status)

	// terminal states never change
	s.markStatus(StatusFailed)
	assert.Equal(t, StatusConfirmed, s.Status)

	f := &StepResult{Name: "y", Status: StatusSubmitted}
	f.fail(KindReverted, fmt.Errorf("boom"))
	assert.Equal(t, StatusFailed, f.Status)
	f.markStatus(StatusConfirmed)
	assert.Equal(t, StatusFailed, f.Status)
}
