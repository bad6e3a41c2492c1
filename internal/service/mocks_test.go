package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/freshnest/freshnest-api/internal/domain"
	"github.com/freshnest/freshnest-api/internal/events"
	"github.com/freshnest/freshnest-api/internal/store"
)

// ---------------------------------------------------------------------------
// Stub sql driver
//
// The services only use *sql.DB to open transactions; the stores themselves
// are mocked. This driver hands out connections whose transactions commit
// and roll back as no-ops, which is enough to drive RunInTransaction.
// ---------------------------------------------------------------------------

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

var registerStubDriver sync.Once

func newStubDB(t *testing.T) *sql.DB {
	t.Helper()
	registerStubDriver.Do(func() {
		sql.Register("svc_stub", stubDriver{})
	})
	db, err := sql.Open("svc_stub", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---------------------------------------------------------------------------
// Store mocks
// ---------------------------------------------------------------------------

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserStore) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserStore) SetFirstTimeOrder(ctx context.Context, id uuid.UUID, firstTime bool) error {
	return m.Called(ctx, id, firstTime).Error(0)
}

func (m *mockUserStore) ListActive(ctx context.Context, firstTimeOnly bool) ([]*domain.User, error) {
	args := m.Called(ctx, firstTimeOnly)
	users, _ := args.Get(0).([]*domain.User)
	return users, args.Error(1)
}

func (m *mockUserStore) WithTx(tx *sql.Tx) store.UserStore { return m }

type mockOrderStore struct {
	mock.Mock
}

func (m *mockOrderStore) Create(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *mockOrderStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]*domain.Order)
	return orders, args.Error(1)
}

func (m *mockOrderStore) Update(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockOrderStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockOrderStore) WithTx(tx *sql.Tx) store.OrderStore { return m }

type mockCatalogStore struct {
	mock.Mock
}

func (m *mockCatalogStore) GetServiceType(ctx context.Context, id uuid.UUID) (*domain.ServiceType, error) {
	args := m.Called(ctx, id)
	st, _ := args.Get(0).(*domain.ServiceType)
	return st, args.Error(1)
}

func (m *mockCatalogStore) GetService(ctx context.Context, id uuid.UUID) (*domain.Service, error) {
	args := m.Called(ctx, id)
	svc, _ := args.Get(0).(*domain.Service)
	return svc, args.Error(1)
}

func (m *mockCatalogStore) GetExtraService(ctx context.Context, id uuid.UUID) (*domain.ExtraService, error) {
	args := m.Called(ctx, id)
	extra, _ := args.Get(0).(*domain.ExtraService)
	return extra, args.Error(1)
}

func (m *mockCatalogStore) ListServiceTypes(ctx context.Context) ([]*domain.ServiceType, error) {
	args := m.Called(ctx)
	types, _ := args.Get(0).([]*domain.ServiceType)
	return types, args.Error(1)
}

func (m *mockCatalogStore) ListServices(ctx context.Context) ([]*domain.Service, error) {
	args := m.Called(ctx)
	svcs, _ := args.Get(0).([]*domain.Service)
	return svcs, args.Error(1)
}

func (m *mockCatalogStore) ListExtraServices(ctx context.Context) ([]*domain.ExtraService, error) {
	args := m.Called(ctx)
	extras, _ := args.Get(0).([]*domain.ExtraService)
	return extras, args.Error(1)
}

func (m *mockCatalogStore) WithTx(tx *sql.Tx) store.CatalogStore { return m }

type mockApartmentStore struct {
	mock.Mock
}

func (m *mockApartmentStore) Create(ctx context.Context, apt *domain.Apartment) error {
	return m.Called(ctx, apt).Error(0)
}

func (m *mockApartmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Apartment, error) {
	args := m.Called(ctx, id)
	apt, _ := args.Get(0).(*domain.Apartment)
	return apt, args.Error(1)
}

func (m *mockApartmentStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Apartment, error) {
	args := m.Called(ctx, userID)
	apts, _ := args.Get(0).([]*domain.Apartment)
	return apts, args.Error(1)
}

func (m *mockApartmentStore) Update(ctx context.Context, apt *domain.Apartment) error {
	return m.Called(ctx, apt).Error(0)
}

func (m *mockApartmentStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockApartmentStore) WithTx(tx *sql.Tx) store.ApartmentStore { return m }

type mockGiftCardStore struct {
	mock.Mock
}

func (m *mockGiftCardStore) Create(ctx context.Context, card *domain.GiftCard) error {
	return m.Called(ctx, card).Error(0)
}

func (m *mockGiftCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.GiftCard, error) {
	args := m.Called(ctx, id)
	card, _ := args.Get(0).(*domain.GiftCard)
	return card, args.Error(1)
}

func (m *mockGiftCardStore) GetByCode(ctx context.Context, code string) (*domain.GiftCard, error) {
	args := m.Called(ctx, code)
	card, _ := args.Get(0).(*domain.GiftCard)
	return card, args.Error(1)
}

func (m *mockGiftCardStore) GetByCodeForUpdate(ctx context.Context, code string) (*domain.GiftCard, error) {
	args := m.Called(ctx, code)
	card, _ := args.Get(0).(*domain.GiftCard)
	return card, args.Error(1)
}

func (m *mockGiftCardStore) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockGiftCardStore) SetPaid(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockGiftCardStore) UpdateBalance(ctx context.Context, id uuid.UUID, balance float64) error {
	return m.Called(ctx, id, balance).Error(0)
}

func (m *mockGiftCardStore) CreateUsage(ctx context.Context, usage *domain.GiftCardUsage) error {
	return m.Called(ctx, usage).Error(0)
}

func (m *mockGiftCardStore) ListUsages(ctx context.Context, cardID uuid.UUID) ([]*domain.GiftCardUsage, error) {
	args := m.Called(ctx, cardID)
	usages, _ := args.Get(0).([]*domain.GiftCardUsage)
	return usages, args.Error(1)
}

func (m *mockGiftCardStore) WithTx(tx *sql.Tx) store.GiftCardStore { return m }

type mockSpecialOfferStore struct {
	mock.Mock
}

func (m *mockSpecialOfferStore) CreateOffer(ctx context.Context, offer *domain.SpecialOffer) error {
	return m.Called(ctx, offer).Error(0)
}

func (m *mockSpecialOfferStore) GetOffer(ctx context.Context, id uuid.UUID) (*domain.SpecialOffer, error) {
	args := m.Called(ctx, id)
	offer, _ := args.Get(0).(*domain.SpecialOffer)
	return offer, args.Error(1)
}

func (m *mockSpecialOfferStore) GetActiveOfferByType(ctx context.Context, offerType domain.OfferType) (*domain.SpecialOffer, error) {
	args := m.Called(ctx, offerType)
	offer, _ := args.Get(0).(*domain.SpecialOffer)
	return offer, args.Error(1)
}

func (m *mockSpecialOfferStore) GetOfferByName(ctx context.Context, name string) (*domain.SpecialOffer, error) {
	args := m.Called(ctx, name)
	offer, _ := args.Get(0).(*domain.SpecialOffer)
	return offer, args.Error(1)
}

func (m *mockSpecialOfferStore) UpdateOffer(ctx context.Context, offer *domain.SpecialOffer) error {
	return m.Called(ctx, offer).Error(0)
}

func (m *mockSpecialOfferStore) CreateGrant(ctx context.Context, grant *domain.UserSpecialOffer) error {
	return m.Called(ctx, grant).Error(0)
}

func (m *mockSpecialOfferStore) GrantExists(ctx context.Context, userID, offerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, offerID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSpecialOfferStore) GetUnusedGrantForUpdate(ctx context.Context, userID, offerID uuid.UUID) (*domain.UserSpecialOffer, error) {
	args := m.Called(ctx, userID, offerID)
	grant, _ := args.Get(0).(*domain.UserSpecialOffer)
	return grant, args.Error(1)
}

func (m *mockSpecialOfferStore) MarkGrantUsed(ctx context.Context, grantID, orderID uuid.UUID, usedAt time.Time) error {
	return m.Called(ctx, grantID, orderID, usedAt).Error(0)
}

func (m *mockSpecialOfferStore) ListUnusedGrants(ctx context.Context, userID uuid.UUID) ([]*domain.UserSpecialOffer, error) {
	args := m.Called(ctx, userID)
	grants, _ := args.Get(0).([]*domain.UserSpecialOffer)
	return grants, args.Error(1)
}

func (m *mockSpecialOfferStore) WithTx(tx *sql.Tx) store.SpecialOfferStore { return m }

type mockSubscriptionStore struct {
	mock.Mock
}

func (m *mockSubscriptionStore) Create(ctx context.Context, sub *domain.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *mockSubscriptionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	args := m.Called(ctx, id)
	sub, _ := args.Get(0).(*domain.Subscription)
	return sub, args.Error(1)
}

func (m *mockSubscriptionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Subscription, error) {
	args := m.Called(ctx, userID)
	subs, _ := args.Get(0).([]*domain.Subscription)
	return subs, args.Error(1)
}

func (m *mockSubscriptionStore) Update(ctx context.Context, sub *domain.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *mockSubscriptionStore) WithTx(tx *sql.Tx) store.SubscriptionStore { return m }

// captureEmitter records emitted events for assertions.
type captureEmitter struct {
	mu     sync.Mutex
	events []*events.NotificationEvent
	err    error
}

func (c *captureEmitter) EmitEvent(ctx context.Context, event *events.NotificationEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}

func (c *captureEmitter) emitted() []*events.NotificationEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*events.NotificationEvent, len(c.events))
	copy(out, c.events)
	return out
}
