package escrow

import "time"

// Transaction mirrors the transactions table. It is created in
// escrow_funded once an offer is accepted and funds are committed, and is
// advanced only through the permitted transitions in machine.go.
type Transaction struct {
	ID            string
	DealID        string
	WholesalerID  string
	InvestorID    string
	SalePrice     float64
	PurchasePrice float64
	Status        Status
	StatusHistory []StatusChange
	PlatformFee   *float64
	NetProceeds   *float64
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StatusChange is one append-only entry in a transaction's status history.
// The last entry's status always equals the transaction's current status.
type StatusChange struct {
	Status    Status
	Timestamp time.Time
}

const (
	// OutboxTopicEscrowFunded is published when a transaction is opened.
	OutboxTopicEscrowFunded = "escrow.funded"
	// OutboxTopicStatusChanged is published on every status transition.
	OutboxTopicStatusChanged = "escrow.status_changed"
)
