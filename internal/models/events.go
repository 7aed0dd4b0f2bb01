package models

import "time"

// StepOutcome is the persisted per-step summary of a workflow run.
type StepOutcome struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Signature string `json:"signature,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RunEvent is the persisted summary of one workflow run (issuance or swap).
type RunEvent struct {
	RunID      string        `json:"run_id"`
	Workflow   string        `json:"workflow"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Succeeded  bool          `json:"succeeded"`
	Canceled   bool          `json:"canceled"`
	ErrorKind  string        `json:"error_kind,omitempty"`
	Error      string        `json:"error,omitempty"`
	Mint       string        `json:"mint,omitempty"`
	Steps      []StepOutcome `json:"steps"`
}

// SwapEvent records an executed swap for history and analytics.
type SwapEvent struct {
	Signature  string    `json:"signature"`
	Timestamp  time.Time `json:"timestamp"`
	Pair       string    `json:"pair"`
	InputMint  string    `json:"input_mint"`
	OutputMint string    `json:"output_mint"`
	AmountIn   uint64    `json:"amount_in"`
	AmountOut  uint64    `json:"amount_out"`
	MinimumOut uint64    `json:"minimum_out"`
	Price      float64   `json:"price"`
	FeeBps     uint16    `json:"fee_bps"`
	Pool       string    `json:"pool"`
}
