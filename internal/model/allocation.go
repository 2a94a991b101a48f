package model

import "time"

// SettlementStatus classifies a PSP's rollover position for one date.
type SettlementStatus string

// Settlement statuses. The status is a pure function of rollover and net
// amount; it is never stored independently of those two.
const (
	StatusPSPOwesBusiness SettlementStatus = "psp_owes_business"
	StatusSmallResidual   SettlementStatus = "small_residual"
	StatusBusinessOwesPSP SettlementStatus = "business_owes_psp"
)

// RolloverResult is the outcome of a rollover computation.
type RolloverResult struct {
	Rollover float64          `json:"rollover"`
	Status   SettlementStatus `json:"status"`
}

// PSPAllocation is one payment service provider's settlement record for one
// date: the net amount the PSP transacted, the amount an operator has marked
// as settled, and the derived rollover position.
type PSPAllocation struct {
	ID              string           `json:"id"`
	PSP             string           `json:"psp"`
	Date            time.Time        `json:"date"`
	NetAmount       float64          `json:"netAmount"`
	AllocatedAmount float64          `json:"allocatedAmount"`
	Rollover        float64          `json:"rollover"`
	Status          SettlementStatus `json:"status"`
	UpdatedAt       time.Time        `json:"updatedAt,omitempty"`
}
