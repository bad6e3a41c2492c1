package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/freshnest/freshnest-api/internal/events"
	"github.com/freshnest/freshnest-api/internal/redact"
	"github.com/freshnest/freshnest-api/internal/store"
)

// maxCodeAttempts bounds the retry loop for unique code generation.
// Collisions in a 32^12 space are vanishingly rare; hitting the bound
// indicates something is wrong with the randomness source.
const maxCodeAttempts = 10

// PurchaseGiftCardInput carries a gift card purchase request. The card is
// created unpaid; MarkPaid settles it once the payment intent clears.
type PurchaseGiftCardInput struct {
	Amount         float64 `json:"amount"`
	RecipientEmail string  `json:"recipient_email"`
	Message        string  `json:"message,omitempty"`
}

// GiftCardValidation describes whether a code can be redeemed and, when it
// cannot, the first failing condition in priority order: not found,
// inactive, unpaid, depleted.
type GiftCardValidation struct {
	Valid   bool    `json:"valid"`
	Message string  `json:"message,omitempty"`
	Balance float64 `json:"balance,omitempty"`
}

// GiftCardService provides gift card purchase, validation and redemption.
type GiftCardService interface {
	// Purchase creates an unpaid gift card with a freshly generated
	// unique code.
	Purchase(ctx context.Context, purchaserID uuid.UUID, input PurchaseGiftCardInput) (*domain.GiftCard, error)

	// MarkPaid settles the card's payment intent, making it redeemable,
	// and notifies the recipient (best-effort).
	MarkPaid(ctx context.Context, cardID uuid.UUID) error

	// Validate reports whether the code can currently be redeemed.
	Validate(ctx context.Context, code string) (*GiftCardValidation, error)

	// ApplyToOrder debits the card against the order. The applied amount
	// is clamped to the balance; the debit and the usage record commit
	// atomically. Returns the amount actually applied.
	ApplyToOrder(ctx context.Context, code string, requestedAmount float64, orderID, userID uuid.UUID) (float64, error)

	// GetByCode retrieves a gift card by its code.
	GetByCode(ctx context.Context, code string) (*domain.GiftCard, error)

	// Usages returns the card's redemption history, oldest first.
	Usages(ctx context.Context, cardID uuid.UUID) ([]*domain.GiftCardUsage, error)
}

type giftCardServiceImpl struct {
	db           *sql.DB
	cardStore    store.GiftCardStore
	eventEmitter events.EventEmitter
	// random feeds code generation; injectable so tests can fix the codes
	random io.Reader
	logger *slog.Logger
}

// NewGiftCardService creates a new GiftCardService. A nil random source
// defaults to crypto/rand.
func NewGiftCardService(
	db *sql.DB,
	cardStore store.GiftCardStore,
	eventEmitter events.EventEmitter,
	random io.Reader,
	logger *slog.Logger,
) (GiftCardService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if cardStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "cardStore cannot be nil"}
	}
	if eventEmitter == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "eventEmitter cannot be nil"}
	}
	if random == nil {
		random = rand.Reader
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &giftCardServiceImpl{
		db:           db,
		cardStore:    cardStore,
		eventEmitter: eventEmitter,
		random:       random,
		logger:       logger.With("component", "gift_card_service"),
	}, nil
}

// Purchase generates a unique code and creates the card unpaid.
func (s *giftCardServiceImpl) Purchase(
	ctx context.Context,
	purchaserID uuid.UUID,
	input PurchaseGiftCardInput,
) (*domain.GiftCard, error) {
	code, err := s.generateUniqueCode(ctx)
	if err != nil {
		return nil, NewServiceError("purchase_gift_card", "failed to generate code", err)
	}

	card, err := domain.NewGiftCard(code, input.Amount, purchaserID)
	if err != nil {
		return nil, NewServiceError("purchase_gift_card", "invalid gift card data", err)
	}
	card.RecipientEmail = input.RecipientEmail
	card.Message = input.Message

	if err := s.cardStore.Create(ctx, card); err != nil {
		// A concurrent purchase may have claimed the code between the
		// existence check and the insert; one fresh code is enough.
		if errors.Is(err, store.ErrGiftCardCodeExists) {
			code, err = s.generateUniqueCode(ctx)
			if err != nil {
				return nil, NewServiceError("purchase_gift_card", "failed to regenerate code", err)
			}
			card.Code = code
			if err := s.cardStore.Create(ctx, card); err != nil {
				return nil, NewServiceError("purchase_gift_card", "failed to save gift card", err)
			}
		} else {
			return nil, NewServiceError("purchase_gift_card", "failed to save gift card", err)
		}
	}

	s.logger.Info("gift card purchased",
		"gift_card_id", card.ID,
		"purchaser_id", purchaserID,
		"amount", card.OriginalAmount,
		"code", redact.Code(card.Code))
	return card, nil
}

// MarkPaid settles the card and notifies the recipient.
func (s *giftCardServiceImpl) MarkPaid(ctx context.Context, cardID uuid.UUID) error {
	if err := s.cardStore.SetPaid(ctx, cardID); err != nil {
		if errors.Is(err, store.ErrGiftCardNotFound) {
			return err
		}
		return NewServiceError("mark_gift_card_paid", "failed to mark paid", err)
	}

	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		s.logger.Warn("skipping gift card notification, lookup failed",
			"gift_card_id", cardID, "error", err)
		return nil
	}
	if card.RecipientEmail == "" {
		return nil
	}

	event, err := events.NewNotificationEvent(events.TypeGiftCardPurchased, events.GiftCardPurchasedPayload{
		GiftCardID:     card.ID,
		RecipientEmail: card.RecipientEmail,
		Code:           card.Code,
		Amount:         card.OriginalAmount,
		Message:        card.Message,
	})
	if err != nil {
		s.logger.Warn("failed to build gift card event", "gift_card_id", cardID, "error", err)
		return nil
	}
	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Warn("failed to emit gift card event", "gift_card_id", cardID, "error", err)
	}
	return nil
}

// Validate checks the redeemability conditions in priority order and
// reports the first failure.
func (s *giftCardServiceImpl) Validate(ctx context.Context, code string) (*GiftCardValidation, error) {
	card, err := s.cardStore.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrGiftCardNotFound) {
			return &GiftCardValidation{Valid: false, Message: "gift card not found"}, nil
		}
		return nil, NewServiceError("validate_gift_card", "failed to load gift card", err)
	}

	switch {
	case !card.IsActive:
		return &GiftCardValidation{Valid: false, Message: "gift card is not active"}, nil
	case !card.IsPaid:
		return &GiftCardValidation{Valid: false, Message: "gift card has not been paid"}, nil
	case card.CurrentBalance <= 0:
		return &GiftCardValidation{Valid: false, Message: "gift card balance is depleted"}, nil
	}

	return &GiftCardValidation{Valid: true, Balance: card.CurrentBalance}, nil
}

// ApplyToOrder debits the card under a row lock so two concurrent
// redemptions can never double-spend the same balance. The balance change
// and the usage record are one atomic unit.
func (s *giftCardServiceImpl) ApplyToOrder(
	ctx context.Context,
	code string,
	requestedAmount float64,
	orderID, userID uuid.UUID,
) (float64, error) {
	if requestedAmount <= 0 {
		return 0, NewServiceError("apply_gift_card", "requested amount must be positive", domain.ErrInvalidAmount)
	}

	var applied float64

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txCards := s.cardStore.WithTx(tx)

		card, err := txCards.GetByCodeForUpdate(ctx, code)
		if err != nil {
			if errors.Is(err, store.ErrGiftCardNotFound) {
				return fmt.Errorf("%w: not found", ErrGiftCardUnusable)
			}
			return NewServiceError("apply_gift_card", "failed to load gift card", err)
		}
		if !card.Redeemable() {
			return fmt.Errorf("%w: inactive, unpaid or depleted", ErrGiftCardUnusable)
		}

		applied = card.Debit(requestedAmount)

		if err := txCards.UpdateBalance(ctx, card.ID, card.CurrentBalance); err != nil {
			return NewServiceError("apply_gift_card", "failed to update balance", err)
		}

		usage := &domain.GiftCardUsage{
			ID:           uuid.New(),
			GiftCardID:   card.ID,
			OrderID:      orderID,
			UserID:       userID,
			AmountUsed:   applied,
			BalanceAfter: card.CurrentBalance,
			UsedAt:       time.Now().UTC(),
		}
		if err := txCards.CreateUsage(ctx, usage); err != nil {
			return NewServiceError("apply_gift_card", "failed to record usage", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("gift card applied to order",
		"code", redact.Code(code),
		"order_id", orderID,
		"user_id", userID,
		"applied", applied)
	return applied, nil
}

// GetByCode retrieves a gift card by its code.
func (s *giftCardServiceImpl) GetByCode(ctx context.Context, code string) (*domain.GiftCard, error) {
	card, err := s.cardStore.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrGiftCardNotFound) {
			return nil, err
		}
		return nil, NewServiceError("get_gift_card", "failed to load gift card", err)
	}
	return card, nil
}

// Usages returns the card's redemption history.
func (s *giftCardServiceImpl) Usages(ctx context.Context, cardID uuid.UUID) ([]*domain.GiftCardUsage, error) {
	usages, err := s.cardStore.ListUsages(ctx, cardID)
	if err != nil {
		return nil, NewServiceError("list_gift_card_usages", "failed to list usages", err)
	}
	return usages, nil
}

// generateUniqueCode draws codes from the injected randomness source until
// one passes the existence check.
func (s *giftCardServiceImpl) generateUniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateGiftCardCode(s.random)
		if err != nil {
			return "", err
		}

		exists, err := s.cardStore.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}

		s.logger.Warn("gift card code collision, retrying", "attempt", attempt+1)
	}
	return "", fmt.Errorf("could not generate a unique gift card code in %d attempts", maxCodeAttempts)
}

// generateGiftCardCode produces a XXXX-XXXX-XXXX code from the unambiguous
// alphabet, mapping random bytes onto the alphabet by modulo. The alphabet
// has 32 characters, so the modulo introduces no bias.
func generateGiftCardCode(random io.Reader) (string, error) {
	const groups = 3
	const groupLen = 4

	raw := make([]byte, groups*groupLen)
	if _, err := io.ReadFull(random, raw); err != nil {
		return "", fmt.Errorf("failed to read randomness: %w", err)
	}

	var b strings.Builder
	for i, rb := range raw {
		if i > 0 && i%groupLen == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(domain.GiftCardCodeAlphabet[int(rb)%len(domain.GiftCardCodeAlphabet)])
	}
	return b.String(), nil
}
