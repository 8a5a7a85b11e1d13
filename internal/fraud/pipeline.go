package fraud

import (
	"context"
	"time"

	"walletbank/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is one committed transaction handed off for scoring. AccountID is
// the acting account; BalanceBefore its primary balance before the mutation.
type Event struct {
	TransactionID string
	AccountID     string
	Amount        int64
	BalanceBefore int64
	CommittedAt   time.Time
}

type AlertStore interface {
	Create(ctx context.Context, input store.FraudAlertInput) error
}

type HistoryStore interface {
	CountInitiatedSince(ctx context.Context, accountID string, since time.Time) (int, error)
}

// Pipeline consumes committed transactions off an in-process queue and
// persists advisory alerts. It never influences the outcome already
// returned to the caller: evaluation failures are logged and dropped.
type Pipeline struct {
	alerts  AlertStore
	history HistoryStore
	queue   chan Event
	logger  *zap.Logger
	now     func() time.Time
}

func NewPipeline(alerts AlertStore, history HistoryStore, capacity int, logger *zap.Logger) *Pipeline {
	if capacity <= 0 {
		capacity = 256
	}
	return &Pipeline{
		alerts:  alerts,
		history: history,
		queue:   make(chan Event, capacity),
		logger:  logger,
		now:     time.Now,
	}
}

// Submit is fire-and-forget: if the queue is saturated the event is dropped
// rather than blocking the request path.
func (p *Pipeline) Submit(event Event) {
	select {
	case p.queue <- event:
	default:
		p.logger.Warn("risk queue full, dropping event",
			zap.String("transaction_id", event.TransactionID),
			zap.String("account_id", event.AccountID))
	}
}

func (p *Pipeline) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-p.queue:
			p.process(ctx, event)
		}
	}
}

func (p *Pipeline) process(ctx context.Context, event Event) {
	now := p.now()
	lastHour, err := p.history.CountInitiatedSince(ctx, event.AccountID, now.Add(-time.Hour))
	if err != nil {
		p.logger.Error("risk history scan failed",
			zap.String("transaction_id", event.TransactionID), zap.Error(err))
		return
	}
	last10, err := p.history.CountInitiatedSince(ctx, event.AccountID, now.Add(-10*time.Minute))
	if err != nil {
		p.logger.Error("risk history scan failed",
			zap.String("transaction_id", event.TransactionID), zap.Error(err))
		return
	}

	result, flagged := Evaluate(Input{
		Amount:         event.Amount,
		BalanceBefore:  event.BalanceBefore,
		CountLastHour:  lastHour,
		CountLast10Min: last10,
		At:             event.CommittedAt,
	})
	if !flagged {
		return
	}

	transactionID := event.TransactionID
	if err := p.alerts.Create(ctx, store.FraudAlertInput{
		ID:            uuid.NewString(),
		AccountID:     event.AccountID,
		TransactionID: &transactionID,
		AlertType:     result.AlertType,
		RiskScore:     result.Score,
		Description:   result.Description,
	}); err != nil {
		p.logger.Error("failed to persist fraud alert",
			zap.String("transaction_id", event.TransactionID), zap.Error(err))
		return
	}
	p.logger.Info("fraud alert created",
		zap.String("transaction_id", event.TransactionID),
		zap.String("account_id", event.AccountID),
		zap.String("alert_type", result.AlertType),
		zap.Float64("risk_score", result.Score))
}
