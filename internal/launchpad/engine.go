package launchpad

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/kiralabs/launchpad/internal/amm"
	"github.com/kiralabs/launchpad/internal/config"
	"github.com/kiralabs/launchpad/internal/flags"
	"github.com/kiralabs/launchpad/internal/ledger"
	"github.com/kiralabs/launchpad/internal/models"
	"github.com/kiralabs/launchpad/internal/storage"
	"github.com/kiralabs/launchpad/internal/wallet"
	"github.com/kiralabs/launchpad/internal/workflow"
)

// ErrWorkflowDisabled means an operational kill switch turned the requested
// workflow off.
var ErrWorkflowDisabled = errors.New("launchpad: workflow is disabled")

// QuoteRequest asks for a price on a token pair.
type QuoteRequest struct {
	InputMint   string `json:"input_mint"`
	OutputMint  string `json:"output_mint"`
	AmountIn    uint64 `json:"amount_in"`
	SlippageBps uint16 `json:"slippage_bps"`
}

// SwapRequest asks for a quote plus immediate execution.
type SwapRequest = QuoteRequest

// IssueResult pairs the run record with the descriptor of the token it
// attempted to create.
type IssueResult struct {
	Run      *workflow.Run
	Mint     string
	Decimals uint8
}

// SwapResult pairs the run record with the quote it executed against.
type SwapResult struct {
	Run   *workflow.Run
	Quote *amm.Quote
	Pool  string
}

// EngineConfig holds the engine's collaborators. Cache, Store, and Flags are
// optional; the engine runs without history or kill switches when they are nil.
type EngineConfig struct {
	Ledger   *ledger.Client
	Wallet   *wallet.Wallet
	Registry amm.Registry

	ConfirmTimeout     time.Duration
	DefaultSlippageBps uint16

	Cache storage.RunCache
	Store storage.RunStore
	Flags *flags.Store

	Logger *logrus.Logger
}

// Engine ties the workflow orchestrator to the wallet, ledger, pool registry,
// and run history. It is the single entry point both the CLI and the HTTP API
// drive.
type Engine struct {
	ledger       *ledger.Client
	wallet       *wallet.Wallet
	registry     amm.Registry
	orchestrator *workflow.Orchestrator

	defaultSlippageBps uint16

	cache storage.RunCache
	store storage.RunStore
	flags *flags.Store

	logger *logrus.Logger
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("launchpad: ledger client is required")
	}
	if cfg.Wallet == nil {
		return nil, fmt.Errorf("launchpad: wallet is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("launchpad: pool registry is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.DefaultSlippageBps == 0 {
		cfg.DefaultSlippageBps = 100
	}

	orch, err := workflow.NewOrchestrator(workflow.OrchestratorConfig{
		Wallet:         cfg.Wallet,
		Ledger:         cfg.Ledger,
		ConfirmTimeout: cfg.ConfirmTimeout,
		Logger:         cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Engine{
		ledger:             cfg.Ledger,
		wallet:             cfg.Wallet,
		registry:           cfg.Registry,
		orchestrator:       orch,
		defaultSlippageBps: cfg.DefaultSlippageBps,
		cache:              cfg.Cache,
		store:              cfg.Store,
		flags:              cfg.Flags,
		logger:             cfg.Logger,
	}, nil
}

// NewEngineFromEnv wires an engine from environment configuration: ledger
// client, local keypair wallet, and a file or remote pool registry.
func NewEngineFromEnv(cfg *config.Config, opts EngineConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}

	ledgerClient, err := ledger.NewClient(ledger.ClientConfig{
		RPCURL:       cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Commitment:   cfg.Commitment,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	w, err := wallet.New(wallet.Config{
		PrivateKey:    cfg.WalletPrivateKey,
		SkipPreflight: cfg.SkipPreflight,
	}, ledgerClient)
	if err != nil {
		return nil, err
	}

	var registry amm.Registry
	if cfg.PoolRegistryURL != "" {
		registry = amm.NewRemoteRegistry(cfg.PoolRegistryURL, cfg.PoolRegistryKey)
	} else {
		registry, err = amm.NewFileRegistry(cfg.PoolConfigPath)
		if err != nil {
			return nil, err
		}
	}

	opts.Ledger = ledgerClient
	opts.Wallet = w
	opts.Registry = registry
	opts.ConfirmTimeout = cfg.ConfirmTimeout
	opts.DefaultSlippageBps = cfg.DefaultSlippageBps
	opts.Logger = logger
	return NewEngine(opts)
}

// WalletAddress returns the fee payer's address.
func (e *Engine) WalletAddress() string { return e.wallet.Address() }

// IssueToken launches a token: create and initialize the mint with metadata,
// create the creator's token account, mint the supply. Each step commits its
// own transaction; the returned run shows how far the sequence got.
func (e *Engine) IssueToken(ctx context.Context, params workflow.IssuanceParams) (*IssueResult, error) {
	if err := e.checkEnabled(ctx, flags.IssuanceEnabled); err != nil {
		return nil, err
	}

	steps, desc, err := workflow.NewIssuanceSteps(e.ledger, e.wallet.PublicKey(), params)
	if err != nil {
		return nil, err
	}

	run := e.orchestrator.Run(ctx, "issuance", steps, nil)
	e.recordRun(run, desc.Mint.String())

	return &IssueResult{
		Run:      run,
		Mint:     desc.Mint.String(),
		Decimals: desc.Decimals,
	}, nil
}

// QuoteSwap resolves the pool for the pair, snapshots its reserves, and
// prices the trade. Nothing is submitted.
func (e *Engine) QuoteSwap(ctx context.Context, req QuoteRequest) (*amm.Quote, error) {
	quote, _, _, err := e.quote(ctx, req)
	return quote, err
}

// ExecuteSwap quotes and then executes the swap as one orchestrated run. The
// quote's minimum-out rides in the swap instruction, so a price moving past
// the slippage tolerance between quote and execution reverts on-chain.
func (e *Engine) ExecuteSwap(ctx context.Context, req SwapRequest) (*SwapResult, error) {
	if err := e.checkEnabled(ctx, flags.SwapEnabled); err != nil {
		return nil, err
	}

	quote, pool, intent, err := e.quote(ctx, req)
	if err != nil {
		return nil, err
	}

	params := workflow.SwapParams{
		InputMint:   intent.InputMint,
		OutputMint:  intent.OutputMint,
		AmountIn:    intent.AmountIn,
		SlippageBps: quote.SlippageBps,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	steps := workflow.NewSwapSteps(e.ledger, e.wallet.PublicKey(), pool, quote, params)
	run := e.orchestrator.Run(ctx, "swap", steps, nil)
	e.recordRun(run, "")
	if run.Succeeded() {
		e.recordSwap(run, quote, pool, req)
	}

	return &SwapResult{Run: run, Quote: quote, Pool: pool.Name}, nil
}

// GetRecentRuns returns recent run history from the cache, newest first.
func (e *Engine) GetRecentRuns(ctx context.Context, limit int64) ([]*models.RunEvent, error) {
	if e.cache == nil {
		return []*models.RunEvent{}, nil
	}
	return e.cache.GetRecentRuns(ctx, limit)
}

// GetRun returns one cached run by id.
func (e *Engine) GetRun(ctx context.Context, runID string) (*models.RunEvent, error) {
	if e.cache == nil {
		return nil, fmt.Errorf("launchpad: run history is not configured")
	}
	return e.cache.GetRun(ctx, runID)
}

// Flags exposes the kill-switch store, or nil when not configured.
func (e *Engine) Flags() *flags.Store { return e.flags }

func (e *Engine) Close() error {
	var firstErr error
	if e.cache != nil {
		if err := e.cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// quote parses and prices the request, returning the parsed intent so
// callers never re-parse the mint strings.
func (e *Engine) quote(ctx context.Context, req QuoteRequest) (*amm.Quote, *amm.Pool, amm.TradeIntent, error) {
	var intent amm.TradeIntent

	inputMint, err := solana.PublicKeyFromBase58(req.InputMint)
	if err != nil {
		return nil, nil, intent, fmt.Errorf("%w: invalid input mint: %v", workflow.ErrInvalidInput, err)
	}
	outputMint, err := solana.PublicKeyFromBase58(req.OutputMint)
	if err != nil {
		return nil, nil, intent, fmt.Errorf("%w: invalid output mint: %v", workflow.ErrInvalidInput, err)
	}
	intent = amm.TradeIntent{
		InputMint:  inputMint,
		OutputMint: outputMint,
		AmountIn:   req.AmountIn,
	}

	slippage := req.SlippageBps
	if slippage == 0 {
		slippage = e.defaultSlippageBps
	}

	pool, err := e.registry.FindPool(ctx, inputMint, outputMint)
	if err != nil {
		return nil, nil, intent, err
	}

	state, err := amm.RefreshPoolState(ctx, e.ledger, pool)
	if err != nil {
		return nil, nil, intent, err
	}

	quote, err := amm.ComputeQuote(state, intent, slippage)
	if err != nil {
		return nil, nil, intent, err
	}
	return quote, pool, intent, nil
}

func (e *Engine) checkEnabled(ctx context.Context, key string) error {
	if e.flags == nil {
		return nil
	}
	enabled, err := e.flags.Enabled(ctx, key)
	if err != nil {
		// Unreachable flag storage must not block signing traffic.
		e.logger.WithError(err).Warn("flag check failed, continuing")
		return nil
	}
	if !enabled {
		return fmt.Errorf("%w: %s", ErrWorkflowDisabled, key)
	}
	return nil
}

// recordRun persists a terminal run to cache and store, best effort. History
// failures are logged, never surfaced: the ledger already holds the truth.
func (e *Engine) recordRun(run *workflow.Run, mint string) {
	event := runEvent(run, mint)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if e.cache != nil {
		if err := e.cache.AddRecentRun(ctx, event); err != nil {
			e.logger.WithError(err).Warn("failed to cache run")
		}
		if err := e.cache.PublishRun(ctx, event); err != nil {
			e.logger.WithError(err).Warn("failed to publish run")
		}
	}
	if e.store != nil {
		if err := e.store.InsertRun(ctx, event); err != nil {
			e.logger.WithError(err).Warn("failed to store run")
		}
	}
}

func (e *Engine) recordSwap(run *workflow.Run, quote *amm.Quote, pool *amm.Pool, req SwapRequest) {
	if e.store == nil {
		return
	}

	signature := ""
	for _, s := range run.Steps {
		if s.Name == "swap" {
			signature = s.Signature
		}
	}

	event := &models.SwapEvent{
		Signature:  signature,
		Timestamp:  run.FinishedAt,
		Pair:       pool.Name,
		InputMint:  req.InputMint,
		OutputMint: req.OutputMint,
		AmountIn:   quote.AmountIn,
		AmountOut:  quote.AmountOut,
		MinimumOut: quote.MinimumOut,
		Price:      quote.EffectivePrice,
		FeeBps:     quote.FeeBps,
		Pool:       pool.SwapAccount.String(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.store.InsertSwap(ctx, event); err != nil {
		e.logger.WithError(err).Warn("failed to store swap")
	}
}

func runEvent(run *workflow.Run, mint string) *models.RunEvent {
	event := &models.RunEvent{
		RunID:      run.ID,
		Workflow:   run.Workflow,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Succeeded:  run.Succeeded(),
		Canceled:   run.Canceled,
		Mint:       mint,
	}
	if stepErr := run.Err(); stepErr != nil {
		event.ErrorKind = string(stepErr.Kind)
		event.Error = stepErr.Err.Error()
	}
	for _, s := range run.Steps {
		event.Steps = append(event.Steps, models.StepOutcome{
			Name:      s.Name,
			Status:    string(s.Status),
			Signature: s.Signature,
			Error:     s.ErrMsg,
		})
	}
	return event
}
