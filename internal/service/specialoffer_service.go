package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/freshnest/freshnest-api/internal/events"
	"github.com/freshnest/freshnest-api/internal/store"
	"github.com/freshnest/freshnest-api/internal/task"
)

// CreateOfferInput carries the fields for creating a special offer.
type CreateOfferInput struct {
	Name               string              `json:"name"`
	Type               domain.OfferType    `json:"type"`
	DiscountType       domain.DiscountType `json:"discount_type"`
	DiscountValue      float64             `json:"discount_value"`
	ValidFrom          *time.Time          `json:"valid_from,omitempty"`
	ValidTo            *time.Time          `json:"valid_to,omitempty"`
	MinimumOrderAmount float64             `json:"minimum_order_amount"`
	FirstTimeOnly      bool                `json:"first_time_only"`
}

// OfferValidation describes whether a grant can currently be redeemed.
type OfferValidation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// AvailableOffer pairs a redeemable grant with its offer details.
type AvailableOffer struct {
	Offer *domain.SpecialOffer     `json:"offer"`
	Grant *domain.UserSpecialOffer `json:"grant"`
}

// SpecialOfferService manages offer creation, granting and redemption.
type SpecialOfferService interface {
	// CreateOffer creates an offer. For non-first-time offers the grants
	// are fanned out to eligible users in the background, best-effort.
	CreateOffer(ctx context.Context, input CreateOfferInput) (*domain.SpecialOffer, error)

	// GetOffer retrieves an offer by ID.
	GetOffer(ctx context.Context, id uuid.UUID) (*domain.SpecialOffer, error)

	// DeactivateOffer retires an offer so it can no longer be granted or
	// redeemed. Existing consumed grants keep their history.
	DeactivateOffer(ctx context.Context, id uuid.UUID) error

	// GrantFirstTimeOfferIfEligible grants the active first-time offer to
	// the user if they are still a first-time customer. Idempotent: an
	// existing grant is not an error.
	GrantFirstTimeOfferIfEligible(ctx context.Context, userID uuid.UUID) error

	// UseSpecialOffer consumes the user's unused grant of the offer against
	// the order. Returns false without error when no redeemable grant
	// exists; the grant is consumed at most once even under concurrency.
	UseSpecialOffer(ctx context.Context, userID, offerID, orderID uuid.UUID) (bool, error)

	// ValidateSpecialOffer reports whether the user can currently redeem
	// the offer.
	ValidateSpecialOffer(ctx context.Context, userID, offerID uuid.UUID) (*OfferValidation, error)

	// GetUserAvailableOffers returns the offers the user can redeem right
	// now: granted, unused, unexpired, with the offer active and inside
	// its validity window.
	GetUserAvailableOffers(ctx context.Context, userID uuid.UUID) ([]*AvailableOffer, error)
}

type specialOfferServiceImpl struct {
	db           *sql.DB
	offerStore   store.SpecialOfferStore
	userStore    store.UserStore
	eventEmitter events.EventEmitter
	runner       *task.Runner
	logger       *slog.Logger
}

// NewSpecialOfferService creates a new SpecialOfferService. The runner is
// optional; without it offer fan-out runs synchronously.
func NewSpecialOfferService(
	db *sql.DB,
	offerStore store.SpecialOfferStore,
	userStore store.UserStore,
	eventEmitter events.EventEmitter,
	runner *task.Runner,
	logger *slog.Logger,
) (SpecialOfferService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if offerStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "offerStore cannot be nil"}
	}
	if userStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "userStore cannot be nil"}
	}
	if eventEmitter == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "eventEmitter cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &specialOfferServiceImpl{
		db:           db,
		offerStore:   offerStore,
		userStore:    userStore,
		eventEmitter: eventEmitter,
		runner:       runner,
		logger:       logger.With("component", "special_offer_service"),
	}, nil
}

// CreateOffer persists the offer and schedules grant fan-out for campaign
// offers. First-time offers are never fanned out; they are granted lazily
// per user at registration.
func (s *specialOfferServiceImpl) CreateOffer(ctx context.Context, input CreateOfferInput) (*domain.SpecialOffer, error) {
	offer, err := domain.NewSpecialOffer(input.Name, input.Type, input.DiscountType, input.DiscountValue)
	if err != nil {
		return nil, NewServiceError("create_offer", "invalid offer data", err)
	}
	offer.ValidFrom = input.ValidFrom
	offer.ValidTo = input.ValidTo
	offer.MinimumOrderAmount = input.MinimumOrderAmount
	offer.FirstTimeOnly = input.FirstTimeOnly
	if err := offer.Validate(); err != nil {
		return nil, NewServiceError("create_offer", "invalid offer data", err)
	}

	if err := s.offerStore.CreateOffer(ctx, offer); err != nil {
		return nil, NewServiceError("create_offer", "failed to save offer", err)
	}

	s.logger.Info("special offer created",
		"offer_id", offer.ID, "offer_type", offer.Type, "name", offer.Name)

	if offer.Type != domain.OfferTypeFirstTime {
		s.scheduleFanOut(ctx, offer)
	}

	return offer, nil
}

// GetOffer retrieves an offer by ID.
func (s *specialOfferServiceImpl) GetOffer(ctx context.Context, id uuid.UUID) (*domain.SpecialOffer, error) {
	offer, err := s.offerStore.GetOffer(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrOfferNotFound) {
			return nil, err
		}
		return nil, NewServiceError("get_offer", "failed to load offer", err)
	}
	return offer, nil
}

// DeactivateOffer flips the offer's activity flag off. Redemption and
// fan-out both check the flag, so the offer is dead immediately.
func (s *specialOfferServiceImpl) DeactivateOffer(ctx context.Context, id uuid.UUID) error {
	offer, err := s.offerStore.GetOffer(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrOfferNotFound) {
			return err
		}
		return NewServiceError("deactivate_offer", "failed to load offer", err)
	}
	if !offer.IsActive {
		return nil
	}

	offer.IsActive = false
	if err := s.offerStore.UpdateOffer(ctx, offer); err != nil {
		if errors.Is(err, store.ErrOfferNotFound) {
			return err
		}
		return NewServiceError("deactivate_offer", "failed to save offer", err)
	}

	s.logger.Info("special offer deactivated", "offer_id", id)
	return nil
}

// GrantFirstTimeOfferIfEligible grants the active first-time offer to a
// first-time customer. Missing offers and duplicate grants are both
// quietly tolerated so registration never fails on offer state.
func (s *specialOfferServiceImpl) GrantFirstTimeOfferIfEligible(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return err
		}
		return NewServiceError("grant_first_time_offer", "failed to load user", err)
	}
	if !user.FirstTimeOrder {
		return nil
	}

	offer, err := s.offerStore.GetActiveOfferByType(ctx, domain.OfferTypeFirstTime)
	if err != nil {
		if errors.Is(err, store.ErrOfferNotFound) {
			// Nothing configured to grant.
			return nil
		}
		return NewServiceError("grant_first_time_offer", "failed to load offer", err)
	}

	exists, err := s.offerStore.GrantExists(ctx, userID, offer.ID)
	if err != nil {
		return NewServiceError("grant_first_time_offer", "failed to check existing grant", err)
	}
	if exists {
		return nil
	}

	grant, err := domain.NewUserSpecialOffer(userID, offer.ID, offer.ValidTo)
	if err != nil {
		return NewServiceError("grant_first_time_offer", "invalid grant data", err)
	}

	// The pre-check races with concurrent registrations; the unique
	// constraint behind ErrGrantExists is the backstop.
	if err := s.offerStore.CreateGrant(ctx, grant); err != nil {
		if errors.Is(err, store.ErrGrantExists) {
			return nil
		}
		return NewServiceError("grant_first_time_offer", "failed to save grant", err)
	}

	s.logger.Info("first-time offer granted", "user_id", userID, "offer_id", offer.ID)
	s.emitOfferGranted(ctx, user, offer)
	return nil
}

// UseSpecialOffer consumes the user's grant inside a transaction. The row
// lock on the grant plus the is_used guard in MarkGrantUsed make the
// consumption at-most-once even when two orders race for the same grant.
func (s *specialOfferServiceImpl) UseSpecialOffer(ctx context.Context, userID, offerID, orderID uuid.UUID) (bool, error) {
	var used bool

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txOffers := s.offerStore.WithTx(tx)

		grant, err := txOffers.GetUnusedGrantForUpdate(ctx, userID, offerID)
		if err != nil {
			if errors.Is(err, store.ErrGrantNotFound) {
				return nil
			}
			return NewServiceError("use_special_offer", "failed to load grant", err)
		}

		now := time.Now().UTC()
		if grant.Expired(now) {
			return nil
		}

		if err := txOffers.MarkGrantUsed(ctx, grant.ID, orderID, now); err != nil {
			if errors.Is(err, store.ErrGrantNotFound) {
				return nil
			}
			return NewServiceError("use_special_offer", "failed to consume grant", err)
		}

		used = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if used {
		s.logger.Info("special offer redeemed",
			"user_id", userID, "offer_id", offerID, "order_id", orderID)
	}
	return used, nil
}

// ValidateSpecialOffer reports redeemability with the first failing
// condition: no grant, grant expired, offer inactive, offer outside its
// validity window.
func (s *specialOfferServiceImpl) ValidateSpecialOffer(ctx context.Context, userID, offerID uuid.UUID) (*OfferValidation, error) {
	offer, err := s.offerStore.GetOffer(ctx, offerID)
	if err != nil {
		if errors.Is(err, store.ErrOfferNotFound) {
			return &OfferValidation{Valid: false, Message: "offer not found"}, nil
		}
		return nil, NewServiceError("validate_special_offer", "failed to load offer", err)
	}

	grants, err := s.offerStore.ListUnusedGrants(ctx, userID)
	if err != nil {
		return nil, NewServiceError("validate_special_offer", "failed to list grants", err)
	}

	var grant *domain.UserSpecialOffer
	for _, g := range grants {
		if g.OfferID == offerID {
			grant = g
			break
		}
	}

	now := time.Now().UTC()
	switch {
	case grant == nil:
		return &OfferValidation{Valid: false, Message: "offer has not been granted or is already used"}, nil
	case grant.Expired(now):
		return &OfferValidation{Valid: false, Message: "offer grant has expired"}, nil
	case !offer.IsActive:
		return &OfferValidation{Valid: false, Message: "offer is not active"}, nil
	case !offer.InValidityWindow(now):
		return &OfferValidation{Valid: false, Message: "offer is outside its validity period"}, nil
	}

	return &OfferValidation{Valid: true}, nil
}

// GetUserAvailableOffers returns the user's currently redeemable offers.
func (s *specialOfferServiceImpl) GetUserAvailableOffers(ctx context.Context, userID uuid.UUID) ([]*AvailableOffer, error) {
	grants, err := s.offerStore.ListUnusedGrants(ctx, userID)
	if err != nil {
		return nil, NewServiceError("list_available_offers", "failed to list grants", err)
	}

	now := time.Now().UTC()
	available := make([]*AvailableOffer, 0, len(grants))
	for _, grant := range grants {
		if grant.Expired(now) {
			continue
		}

		offer, err := s.offerStore.GetOffer(ctx, grant.OfferID)
		if err != nil {
			if errors.Is(err, store.ErrOfferNotFound) {
				s.logger.Warn("grant references missing offer",
					"grant_id", grant.ID, "offer_id", grant.OfferID)
				continue
			}
			return nil, NewServiceError("list_available_offers", "failed to load offer", err)
		}

		if !offer.IsActive || !offer.InValidityWindow(now) {
			continue
		}
		available = append(available, &AvailableOffer{Offer: offer, Grant: grant})
	}
	return available, nil
}

// scheduleFanOut runs grant fan-out through the task runner when one is
// configured, falling back to a synchronous pass. Fan-out is best-effort:
// individual grant failures are logged and skipped, never rolled back.
func (s *specialOfferServiceImpl) scheduleFanOut(ctx context.Context, offer *domain.SpecialOffer) {
	if s.runner == nil {
		s.fanOut(ctx, offer)
		return
	}

	t := task.NewFunc(task.TaskTypeOfferFanOut, func(ctx context.Context) error {
		s.fanOut(ctx, offer)
		return nil
	})
	if err := s.runner.Submit(t); err != nil {
		s.logger.Warn("offer fan-out not scheduled",
			"offer_id", offer.ID, "error", err)
	}
}

func (s *specialOfferServiceImpl) fanOut(ctx context.Context, offer *domain.SpecialOffer) {
	users, err := s.userStore.ListActive(ctx, offer.FirstTimeOnly)
	if err != nil {
		s.logger.Error("offer fan-out aborted, could not list users",
			"offer_id", offer.ID, "error", err)
		return
	}

	granted := 0
	for _, user := range users {
		grant, err := domain.NewUserSpecialOffer(user.ID, offer.ID, offer.ValidTo)
		if err != nil {
			s.logger.Warn("skipping invalid grant",
				"offer_id", offer.ID, "user_id", user.ID, "error", err)
			continue
		}

		if err := s.offerStore.CreateGrant(ctx, grant); err != nil {
			if errors.Is(err, store.ErrGrantExists) {
				continue
			}
			s.logger.Warn("failed to grant offer",
				"offer_id", offer.ID, "user_id", user.ID, "error", err)
			continue
		}

		granted++
		s.emitOfferGranted(ctx, user, offer)
	}

	s.logger.Info("offer fan-out complete",
		"offer_id", offer.ID, "eligible_users", len(users), "granted", granted)
}

func (s *specialOfferServiceImpl) emitOfferGranted(ctx context.Context, user *domain.User, offer *domain.SpecialOffer) {
	event, err := events.NewNotificationEvent(events.TypeOfferGranted, events.OfferGrantedPayload{
		UserID:    user.ID,
		Email:     user.Email,
		OfferName: offer.Name,
		ExpiresAt: offer.ValidTo,
	})
	if err != nil {
		s.logger.Warn("failed to build offer granted event",
			"user_id", user.ID, "offer_id", offer.ID, "error", err)
		return
	}
	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Warn("failed to emit offer granted event",
			"user_id", user.ID, "offer_id", offer.ID, "error", err)
	}
}
