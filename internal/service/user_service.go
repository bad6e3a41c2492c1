package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/freshnest/freshnest-api/internal/events"
	"github.com/freshnest/freshnest-api/internal/redact"
	"github.com/freshnest/freshnest-api/internal/service/auth"
	"github.com/freshnest/freshnest-api/internal/store"
)

// RegisterInput carries the fields for creating a new account.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// UpdateProfileInput carries optional profile changes. Nil fields are left
// untouched.
type UpdateProfileInput struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Password  *string `json:"password,omitempty"`
}

// RegisterResult pairs the created user with the outcomes of best-effort
// side effects (first-time offer grant, welcome mail). The registration
// itself succeeds even when a side effect fails.
type RegisterResult struct {
	User        *domain.User
	SideEffects SideEffects
}

// UserService provides account registration, authentication and profile
// management.
type UserService interface {
	// Register creates a local account. After the account is saved the
	// first-time offer grant and the welcome notification run best-effort;
	// their failures are reported in the result, not as errors.
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)

	// Authenticate verifies the email/password pair and returns the user.
	// Returns ErrInvalidCredentials for unknown emails and wrong passwords
	// alike.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// UpdateProfile applies the non-nil fields of input to the user.
	UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*domain.User, error)
}

type userServiceImpl struct {
	userStore    store.UserStore
	offerService SpecialOfferService
	eventEmitter events.EventEmitter
	verifier     auth.PasswordVerifier
	logger       *slog.Logger
}

// NewUserService creates a new UserService. The offer service is optional;
// without it registration skips the first-time grant.
func NewUserService(
	userStore store.UserStore,
	offerService SpecialOfferService,
	eventEmitter events.EventEmitter,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) (UserService, error) {
	if userStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "userStore cannot be nil"}
	}
	if eventEmitter == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "eventEmitter cannot be nil"}
	}
	if verifier == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "verifier cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		userStore:    userStore,
		offerService: offerService,
		eventEmitter: eventEmitter,
		verifier:     verifier,
		logger:       logger.With("component", "user_service"),
	}, nil
}

// Register creates the account, then runs the post-registration side
// effects. The user store hashes the password and clears the plaintext.
func (s *userServiceImpl) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	user, err := domain.NewUser(input.Email, input.Password)
	if err != nil {
		return nil, NewServiceError("register_user", "invalid user data", err)
	}
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Phone = input.Phone

	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, err
		}
		return nil, NewServiceError("register_user", "failed to save user", err)
	}

	s.logger.Info("user registered",
		"user_id", user.ID, "email", redact.String(user.Email))

	result := &RegisterResult{User: user}

	if s.offerService != nil {
		result.SideEffects.Record("first_time_offer_grant",
			s.offerService.GrantFirstTimeOfferIfEligible(ctx, user.ID))
	}

	event, err := events.NewNotificationEvent(events.TypeUserRegistered, events.UserRegisteredPayload{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
	})
	if err == nil {
		err = s.eventEmitter.EmitEvent(ctx, event)
	}
	result.SideEffects.Record("welcome_notification", err)

	for _, failure := range result.SideEffects.Failures {
		s.logger.Warn("registration side effect failed",
			"user_id", user.ID, "side_effect", failure.Name, "error", failure.Err)
	}

	return result, nil
}

// Authenticate verifies credentials without revealing which check failed.
func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, NewServiceError("authenticate", "failed to load user", err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("password mismatch", "email", redact.String(email))
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *userServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		return nil, NewServiceError("get_user", "failed to load user", err)
	}
	return user, nil
}

// UpdateProfile applies partial profile changes. Setting Password triggers
// a re-hash in the store.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		return nil, NewServiceError("update_profile", "failed to load user", err)
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Password != nil {
		user.Password = *input.Password
	}

	if err := user.Validate(); err != nil {
		return nil, NewServiceError("update_profile", "invalid profile data", err)
	}

	if err := s.userStore.Update(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		return nil, NewServiceError("update_profile", "failed to save user", err)
	}

	s.logger.Info("profile updated", "user_id", id)
	return user, nil
}
