package flags

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("flag not found")

// Well-known toggles consulted before starting a workflow.
const (
	IssuanceEnabled = "issuance.enabled"
	SwapEnabled     = "swap.enabled"
)

type Flag struct {
	Key       string    `json:"key"`
	Value     bool      `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
