package escrow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dealflow/fee"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatusService commits status transitions ensuring the permission check,
// history append, timeline and outbox writes all happen in one database
// transaction. The SELECT ... FOR UPDATE serializes concurrent transition
// attempts on the same transaction id, so the graph check is evaluated
// against the row state at commit time, not at request-read time.
type StatusService struct {
	pool  *pgxpool.Pool
	repo  *Repository
	now   func() time.Time
	idGen func() string
}

func NewStatusService(pool *pgxpool.Pool) *StatusService {
	return &StatusService{
		pool:  pool,
		repo:  NewRepository(pool),
		now:   time.Now,
		idGen: func() string { return uuid.NewString() },
	}
}

func (s *StatusService) WithClock(now func() time.Time) *StatusService {
	s.now = now
	return s
}

func (s *StatusService) WithIDGenerator(gen func() string) *StatusService {
	s.idGen = gen
	return s
}

// Get returns the transaction with its status history.
func (s *StatusService) Get(ctx context.Context, transactionID string) (Transaction, error) {
	return s.repo.Get(ctx, transactionID)
}

// ListForUser returns the transactions the user participates in.
func (s *StatusService) ListForUser(ctx context.Context, userID string) ([]Transaction, error) {
	return s.repo.ListForUser(ctx, userID)
}

// OpenParams enumerates the fields required to open a transaction once an
// offer has been accepted and funds are committed.
type OpenParams struct {
	DealID        string
	WholesalerID  string
	InvestorID    string
	SalePrice     float64
	PurchasePrice float64
}

// Open creates a transaction in escrow_funded, writes the initial status
// history entry, marks the deal under contract, and enqueues the funding
// event, all in one database transaction.
func (s *StatusService) Open(ctx context.Context, params OpenParams) (Transaction, error) {
	if params.DealID == "" {
		return Transaction{}, fmt.Errorf("escrow: open missing deal id")
	}
	if params.WholesalerID == "" || params.InvestorID == "" {
		return Transaction{}, fmt.Errorf("escrow: open missing party ids")
	}
	if params.SalePrice <= 0 {
		return Transaction{}, fmt.Errorf("escrow: open invalid sale price")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("escrow: begin open tx: %w", err)
	}
	defer tx.Rollback(ctx)

	id := s.idGen()
	openedAt := s.now().UTC()

	if _, err := tx.Exec(ctx, `
        INSERT INTO transactions (id, deal_id, wholesaler_id, investor_id, sale_price, purchase_price, status, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7::transaction_status,$8,$8)
    `, id, params.DealID, params.WholesalerID, params.InvestorID, params.SalePrice, params.PurchasePrice, StatusEscrowFunded, openedAt); err != nil {
		return Transaction{}, fmt.Errorf("escrow: insert transaction: %w", err)
	}

	if _, err := tx.Exec(ctx, `
        INSERT INTO transaction_status_history (transaction_id, status, changed_at, changed_by)
        VALUES ($1,$2::transaction_status,$3,$4::uuid)
    `, id, StatusEscrowFunded, openedAt, params.InvestorID); err != nil {
		return Transaction{}, fmt.Errorf("escrow: insert initial history: %w", err)
	}

	if _, err := tx.Exec(ctx, `
        UPDATE deals SET status = 'under_contract', updated_at = $2 WHERE id = $1
    `, params.DealID, openedAt); err != nil {
		return Transaction{}, fmt.Errorf("escrow: mark deal under contract: %w", err)
	}

	if _, err := tx.Exec(ctx, `
        INSERT INTO outbox (topic, payload)
        VALUES ($1,$2::jsonb)
    `, OutboxTopicEscrowFunded, toJSON(map[string]any{
		"transaction_id": id,
		"deal_id":        params.DealID,
		"sale_price":     params.SalePrice,
	})); err != nil {
		return Transaction{}, fmt.Errorf("escrow: enqueue open outbox: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Transaction{}, fmt.Errorf("escrow: commit open: %w", err)
	}

	return s.repo.Get(ctx, id)
}

// TransitionParams identifies the transition to apply and who requested it.
type TransitionParams struct {
	TransactionID string
	ActorID       string
	Next          Status
	Payload       map[string]any
}

// Transition advances a transaction to the next status. It fails with
// ErrInvalidTransition when the status graph does not permit the move.
// When the transaction completes, the platform fee for the wholesaler's
// subscription tier is calculated and frozen onto the row.
func (s *StatusService) Transition(ctx context.Context, params TransitionParams) (Transaction, error) {
	if params.TransactionID == "" {
		return Transaction{}, fmt.Errorf("escrow: transition missing transaction id")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("escrow: begin transition tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		rawStatus    string
		salePrice    float64
		wholesalerID string
	)
	if err := tx.QueryRow(ctx, `
        SELECT status::text, sale_price, wholesaler_id
        FROM transactions
        WHERE id = $1
        FOR UPDATE
    `, params.TransactionID).Scan(&rawStatus, &salePrice, &wholesalerID); err != nil {
		return Transaction{}, fmt.Errorf("escrow: lock transaction: %w", err)
	}

	current, err := ParseStatus(rawStatus)
	if err != nil {
		return Transaction{}, err
	}

	changedAt := s.now().UTC()
	advanced, err := Transition(Transaction{Status: current}, params.Next, changedAt)
	if err != nil {
		return Transaction{}, err
	}

	if _, err := tx.Exec(ctx, `
        UPDATE transactions
        SET status = $1::transaction_status,
            completed_at = $2,
            updated_at = $3
        WHERE id = $4
    `, advanced.Status, advanced.CompletedAt, changedAt, params.TransactionID); err != nil {
		return Transaction{}, fmt.Errorf("escrow: update status: %w", err)
	}

	if advanced.Status == StatusCompleted {
		if err := s.freezeFees(ctx, tx, params.TransactionID, salePrice, wholesalerID); err != nil {
			return Transaction{}, err
		}
	}

	var actorPtr *string
	if params.ActorID != "" {
		actorPtr = &params.ActorID
	}

	if _, err := tx.Exec(ctx, `
        INSERT INTO transaction_status_history (transaction_id, status, changed_at, changed_by)
        VALUES ($1,$2::transaction_status,$3,$4::uuid)
    `, params.TransactionID, advanced.Status, changedAt, actorPtr); err != nil {
		return Transaction{}, fmt.Errorf("escrow: append history: %w", err)
	}

	payload := map[string]any{
		"previous_status": current,
		"next_status":     advanced.Status,
	}
	for k, v := range params.Payload {
		payload[k] = v
	}
	if params.ActorID != "" {
		payload["actor_id"] = params.ActorID
	}

	if _, err := tx.Exec(ctx, `
        INSERT INTO timeline_events (transaction_id, type, payload, actor_id)
        VALUES ($1,'TRANSACTION_STATUS_CHANGED',$2::jsonb,$3::uuid)
    `, params.TransactionID, toJSON(payload), actorPtr); err != nil {
		return Transaction{}, fmt.Errorf("escrow: insert timeline: %w", err)
	}

	if _, err := tx.Exec(ctx, `
        INSERT INTO outbox (topic, payload)
        VALUES ($1,$2::jsonb)
    `, OutboxTopicStatusChanged, toJSON(map[string]any{
		"transaction_id": params.TransactionID,
		"previous":       current,
		"next":           advanced.Status,
	})); err != nil {
		return Transaction{}, fmt.Errorf("escrow: enqueue outbox: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Transaction{}, fmt.Errorf("escrow: commit transition: %w", err)
	}

	return s.repo.Get(ctx, params.TransactionID)
}

// freezeFees snapshots the platform cut onto the completed transaction so
// later tier changes cannot retroactively alter settled amounts.
func (s *StatusService) freezeFees(ctx context.Context, tx pgx.Tx, transactionID string, salePrice float64, wholesalerID string) error {
	var tier string
	if err := tx.QueryRow(ctx, `SELECT subscription_tier::text FROM users WHERE id = $1`, wholesalerID).Scan(&tier); err != nil {
		return fmt.Errorf("escrow: load seller tier: %w", err)
	}

	breakdown := fee.PlatformFee(salePrice, fee.Tier(tier))
	if _, err := tx.Exec(ctx, `
        UPDATE transactions SET platform_fee = $1, net_proceeds = $2 WHERE id = $3
    `, breakdown.Fee, breakdown.NetToWholesaler, transactionID); err != nil {
		return fmt.Errorf("escrow: freeze fees: %w", err)
	}
	return nil
}

func toJSON(m map[string]any) string {
	b, err := json.Marshal(m)
	if err != nil {
		panic(err)
	}
	return string(b)
}
