package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"solana-cli/internal/observability"
	"solana-cli/internal/solana"
)

// Confirmation errors.
var (
	ErrConfirmationTimeout = errors.New("transaction not confirmed before timeout")
	ErrTransactionFailed   = errors.New("transaction failed")
)

// Chain is the node capability needed to send transactions.
type Chain interface {
	GetLatestBlockhash(ctx context.Context) (*solana.Blockhash, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
	SendTransaction(ctx context.Context, wire string) (string, error)
	GetSignatureStatuses(ctx context.Context, signatures []string) ([]*solana.SignatureStatus, error)
}

// Subscriber pushes signature notifications.
type Subscriber interface {
	SubscribeSignature(ctx context.Context, signature, commitment string) (<-chan solana.SignatureNotification, error)
}

// SenderConfig holds confirmation settings.
type SenderConfig struct {
	Commitment     string
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
}

// DefaultSenderConfig returns confirmed commitment with a 60s timeout.
// Zero fields passed to NewSender fall back to these values.
func DefaultSenderConfig() SenderConfig {
	return SenderConfig{
		Commitment:     solana.CommitmentConfirmed,
		ConfirmTimeout: 60 * time.Second,
		PollInterval:   2 * time.Second,
	}
}

// Sender submits transactions and waits for confirmation.
type Sender struct {
	chain      Chain
	subscriber Subscriber
	config     SenderConfig
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewSender creates a sender. subscriber and metrics may be nil; without a
// subscriber confirmation relies on polling alone.
func NewSender(chain Chain, subscriber Subscriber, config SenderConfig, logger *zap.Logger, metrics *observability.Metrics) *Sender {
	if config.Commitment == "" {
		config.Commitment = solana.CommitmentConfirmed
	}
	defaults := DefaultSenderConfig()
	if config.ConfirmTimeout <= 0 {
		config.ConfirmTimeout = defaults.ConfirmTimeout
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	return &Sender{
		chain:      chain,
		subscriber: subscriber,
		config:     config,
		logger:     logger.Named("sender"),
		metrics:    metrics,
	}
}

// Transfer moves lamports from the owner of from to to and returns the
// confirmed signature.
func (s *Sender) Transfer(ctx context.Context, from solanago.PrivateKey, to solanago.PublicKey, lamports uint64) (string, error) {
	blockhash, err := s.blockhash(ctx)
	if err != nil {
		return "", err
	}
	tx, err := BuildTransfer(blockhash, from, to, lamports)
	if err != nil {
		return "", err
	}
	return s.submit(ctx, "transfer", tx)
}

// CreateMint creates and initializes mint, paid for by payer, and returns
// the confirmed signature.
func (s *Sender) CreateMint(ctx context.Context, payer, mint solanago.PrivateKey, decimals uint8) (string, error) {
	rent, err := s.chain.GetMinimumBalanceForRentExemption(ctx, solana.MintAccountSize)
	if err != nil {
		return "", err
	}
	blockhash, err := s.blockhash(ctx)
	if err != nil {
		return "", err
	}
	tx, err := BuildCreateMint(blockhash, payer, mint, rent, decimals)
	if err != nil {
		return "", err
	}
	return s.submit(ctx, "create_mint", tx)
}

func (s *Sender) blockhash(ctx context.Context) (solanago.Hash, error) {
	bh, err := s.chain.GetLatestBlockhash(ctx)
	if err != nil {
		return solanago.Hash{}, err
	}
	hash, err := solanago.HashFromBase58(bh.Blockhash)
	if err != nil {
		return solanago.Hash{}, fmt.Errorf("parse blockhash %q: %w", bh.Blockhash, err)
	}
	return hash, nil
}

// submit sends tx and blocks until it reaches the configured commitment.
func (s *Sender) submit(ctx context.Context, kind string, tx *solanago.Transaction) (string, error) {
	wire, err := encodeWire(tx)
	if err != nil {
		return "", err
	}
	expected := tx.Signatures[0].String()

	ctx, cancel := context.WithTimeout(ctx, s.config.ConfirmTimeout)
	defer cancel()

	notifications := s.subscribe(ctx, expected)

	start := time.Now()
	signature, err := s.chain.SendTransaction(ctx, wire)
	if err != nil {
		return "", err
	}
	if signature != expected {
		s.logger.Warn("Node returned an unexpected signature",
			zap.String("expected", expected), zap.String("got", signature))
	}
	s.logger.Info("Transaction sent", zap.String("kind", kind), zap.String("signature", signature))

	if err := s.confirm(ctx, signature, notifications); err != nil {
		return signature, err
	}
	s.metrics.RecordTransaction(kind, time.Since(start))
	return signature, nil
}

// subscribe opens a signature subscription, nil when unavailable.
func (s *Sender) subscribe(ctx context.Context, signature string) <-chan solana.SignatureNotification {
	if s.subscriber == nil {
		return nil
	}
	ch, err := s.subscriber.SubscribeSignature(ctx, signature, s.config.Commitment)
	if err != nil {
		s.logger.Warn("Signature subscription failed, polling instead", zap.Error(err))
		return nil
	}
	return ch
}

// confirm waits for a websocket notification or a polled status, whichever
// comes first.
func (s *Sender) confirm(ctx context.Context, signature string, notifications <-chan solana.SignatureNotification) error {
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: %s", ErrConfirmationTimeout, signature)
			}
			return ctx.Err()

		case n, ok := <-notifications:
			if !ok {
				notifications = nil
				continue
			}
			if n.Err != nil {
				return fmt.Errorf("%w: %s: %v", ErrTransactionFailed, signature, n.Err)
			}
			s.logger.Debug("Confirmed via subscription", zap.Uint64("slot", n.Slot))
			return nil

		case <-ticker.C:
			statuses, err := s.chain.GetSignatureStatuses(ctx, []string{signature})
			if err != nil {
				s.logger.Debug("Status poll failed", zap.Error(err))
				continue
			}
			if len(statuses) == 0 || statuses[0] == nil {
				continue
			}
			status := statuses[0]
			if status.Err != nil {
				return fmt.Errorf("%w: %s: %v", ErrTransactionFailed, signature, status.Err)
			}
			if status.Reached(s.config.Commitment) {
				s.logger.Debug("Confirmed via polling", zap.Uint64("slot", status.Slot))
				return nil
			}
		}
	}
}
