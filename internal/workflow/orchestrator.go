package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kiralabs/launchpad/internal/ledger"
)

// WalletGateway signs a built transaction (fee payer plus any payload
// signers) and submits it, returning the transaction signature.
type WalletGateway interface {
	SignAndSend(ctx context.Context, payload *TxPayload) (string, error)
}

// LedgerGateway waits for a submitted transaction to reach finality.
// Implementations report ledger.ErrConfirmTimeout when the deadline passes
// and *ledger.RevertedError when the ledger rejected the transaction.
type LedgerGateway interface {
	Confirm(ctx context.Context, signature string, timeout time.Duration) error
}

// ErrUserRejected is returned by wallet gateways when the signer declined
// or could not produce a required signature. The step fails as a submission
// error; nothing reached the ledger, so the caller may retry the same step.
var ErrUserRejected = errors.New("workflow: signature rejected by wallet")

// Orchestrator executes a run's steps strictly in order. Each step is its
// own independently committed transaction: build, sign-and-send, confirm,
// merge outputs, advance. On the first failure the remaining steps are
// never attempted: confirmed ledger transactions are irreversible, so
// there is no rollback and no automatic retry.
type Orchestrator struct {
	wallet         WalletGateway
	ledger         LedgerGateway
	confirmTimeout time.Duration
	logger         *logrus.Logger
}

// OrchestratorConfig holds dependencies and tuning for an Orchestrator.
type OrchestratorConfig struct {
	Wallet         WalletGateway
	Ledger         LedgerGateway
	ConfirmTimeout time.Duration
	Logger         *logrus.Logger
}

func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.Wallet == nil {
		return nil, fmt.Errorf("workflow: wallet gateway is required")
	}
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("workflow: ledger gateway is required")
	}
	if cfg.ConfirmTimeout == 0 {
		cfg.ConfirmTimeout = 60 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Orchestrator{
		wallet:         cfg.Wallet,
		ledger:         cfg.Ledger,
		confirmTimeout: cfg.ConfirmTimeout,
		logger:         cfg.Logger,
	}, nil
}

// Run drives the steps to a terminal state and returns the run record.
// Failures are attached to the step that produced them, never returned as
// a bare error: the caller inspects the run to see which steps confirmed
// before deciding whether to retry or abandon.
func (o *Orchestrator) Run(ctx context.Context, workflow string, steps []Step, initial Context) *Run {
	run := &Run{
		ID:        fmt.Sprintf("run_%d", time.Now().UnixNano()),
		Workflow:  workflow,
		Context:   initial.Clone(),
		StartedAt: time.Now(),
	}
	if run.Context == nil {
		run.Context = Context{}
	}
	for _, s := range steps {
		run.Steps = append(run.Steps, &StepResult{Name: s.Name, Status: StatusPending})
	}

	log := o.logger.WithFields(logrus.Fields{"run": run.ID, "workflow": workflow})

	for i, step := range steps {
		res := run.Steps[i]

		payload, outputs, err := step.Build(ctx, run.Context)
		if err != nil {
			log.WithError(err).WithField("step", step.Name).Warn("step build failed")
			res.fail(KindBuildError, err)
			break
		}

		sig, err := o.wallet.SignAndSend(ctx, payload)
		if err != nil {
			if errors.Is(err, ErrUserRejected) {
				log.WithError(err).WithField("step", step.Name).Warn("signature declined, nothing submitted")
			} else {
				log.WithError(err).WithField("step", step.Name).Warn("step submission failed")
			}
			res.fail(KindSubmissionError, err)
			break
		}
		res.Signature = sig
		res.markStatus(StatusSubmitted)

		err = o.ledger.Confirm(ctx, sig, o.confirmTimeout)
		switch {
		case err == nil:
			run.Context.Merge(outputs)
			res.markStatus(StatusConfirmed)
			log.WithFields(logrus.Fields{"step": step.Name, "signature": sig}).Info("step confirmed")
			continue
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			// Caller cancellation while awaiting confirmation. The
			// transaction is in flight; the step stays submitted and must be
			// reconciled manually, never coerced to confirmed or failed.
			run.Canceled = true
			log.WithField("step", step.Name).Warn("run canceled while awaiting confirmation")
		case errors.Is(err, ledger.ErrConfirmTimeout):
			res.fail(KindConfirmationTimeout, err)
			log.WithError(err).WithFields(logrus.Fields{"step": step.Name, "signature": sig}).
				Warn("confirmation timed out, outcome unknown, check manually")
		default:
			var reverted *ledger.RevertedError
			if errors.As(err, &reverted) {
				res.fail(KindReverted, err)
			} else {
				res.fail(KindConfirmationTimeout, err)
			}
			log.WithError(err).WithField("step", step.Name).Warn("step failed")
		}
		break
	}

	run.FinishedAt = time.Now()
	return run
}
