package app

import (
	"context"

	"github.com/BuidlZone-Labs/zicket-contract/internal/auth"
	"github.com/BuidlZone-Labs/zicket-contract/internal/clock"
	"github.com/BuidlZone-Labs/zicket-contract/internal/domain"
	"github.com/BuidlZone-Labs/zicket-contract/internal/metrics"
	"github.com/BuidlZone-Labs/zicket-contract/internal/notify"
)

type PaymentRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetConfig(ctx context.Context) (domain.EscrowConfig, bool, error)
	InitConfig(ctx context.Context, cfg domain.EscrowConfig) error
	NextPaymentID(ctx context.Context) (int64, error)
	CreatePayment(ctx context.Context, payment domain.PaymentRecord) error
	GetPayment(ctx context.Context, paymentID int64) (domain.PaymentRecord, error)
	ListEventPayments(ctx context.Context, eventID string) ([]int64, error)
	AddEventRevenue(ctx context.Context, eventID string, amount int64) error
	GetEventRevenue(ctx context.Context, eventID string) (int64, error)
}

// FundsMover moves funds between identities in the custodial ledger. A
// failed move aborts the surrounding operation with no record written.
type FundsMover interface {
	Move(ctx context.Context, from, to string, amount int64) error
}

// CustodialAccount is the identity holding escrowed funds until release or
// refund.
const CustodialAccount = "escrow"

// PaymentService records payment intents, holds funds in custody, and
// accumulates per-event revenue.
type PaymentService struct {
	repo     PaymentRepository
	funds    FundsMover
	clock    clock.Clock
	verifier auth.Verifier
	sink     notify.Sink
}

func NewPaymentService(repo PaymentRepository, funds FundsMover, clk clock.Clock, verifier auth.Verifier, sink notify.Sink) *PaymentService {
	return &PaymentService{
		repo:     repo,
		funds:    funds,
		clock:    clk,
		verifier: verifier,
		sink:     sink,
	}
}

// Initialize records the admin identity and accepted currency token. A
// repeat call is a silent no-op that preserves the first-set values.
func (s *PaymentService) Initialize(ctx context.Context, admin, token string) error {
	if err := s.verifier.Verify(ctx, admin); err != nil {
		return err
	}
	if admin == "" || token == "" {
		return domain.ErrInvalidInput
	}

	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		_, initialized, err := s.repo.GetConfig(txCtx)
		if err != nil {
			return err
		}
		if initialized {
			return nil
		}
		return s.repo.InitConfig(txCtx, domain.EscrowConfig{Admin: admin, Token: token})
	})
}

type PayInput struct {
	Payer   string
	EventID string
	Amount  int64
}

// PayForTicket moves the amount from the payer into custody and records a
// Held payment. The payment id is allocated only after the transfer
// succeeds, so a failed transfer never consumes an id.
func (s *PaymentService) PayForTicket(ctx context.Context, in PayInput) (int64, error) {
	if err := s.verifier.Verify(ctx, in.Payer); err != nil {
		return 0, err
	}
	if in.Amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	if in.EventID == "" {
		return 0, domain.ErrInvalidInput
	}

	now := s.clock.Now()
	var paymentID int64

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		cfg, initialized, err := s.repo.GetConfig(txCtx)
		if err != nil {
			return err
		}
		if !initialized {
			return domain.ErrNotInitialized
		}

		if err := s.funds.Move(txCtx, in.Payer, CustodialAccount, in.Amount); err != nil {
			return err
		}

		paymentID, err = s.repo.NextPaymentID(txCtx)
		if err != nil {
			return err
		}

		if err := s.repo.CreatePayment(txCtx, domain.PaymentRecord{
			ID:        paymentID,
			EventID:   in.EventID,
			Payer:     in.Payer,
			Amount:    in.Amount,
			Token:     cfg.Token,
			Status:    domain.PaymentStatusHeld,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		return s.repo.AddEventRevenue(txCtx, in.EventID, in.Amount)
	})
	if err != nil {
		return 0, err
	}

	s.sink.Publish(ctx, notify.New(notify.TypePaymentReceived, now, notify.PaymentReceivedPayload{
		PaymentID: paymentID,
		EventID:   in.EventID,
		Payer:     in.Payer,
		Amount:    in.Amount,
	}))
	metrics.PaymentsReceived.Inc()

	return paymentID, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, paymentID int64) (domain.PaymentRecord, error) {
	return s.repo.GetPayment(ctx, paymentID)
}

// GetEventRevenue returns the cumulative revenue for an event, zero when no
// payments were recorded.
func (s *PaymentService) GetEventRevenue(ctx context.Context, eventID string) (int64, error) {
	return s.repo.GetEventRevenue(ctx, eventID)
}

// EventPayments returns the event's payment ids in payment order.
func (s *PaymentService) EventPayments(ctx context.Context, eventID string) ([]int64, error) {
	return s.repo.ListEventPayments(ctx, eventID)
}
