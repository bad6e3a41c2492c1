package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Order-specific validation errors
var (
	ErrEmptyOrderID      = errors.New("order ID cannot be empty")
	ErrEmptyOrderOwner   = errors.New("order owner cannot be empty")
	ErrEmptyServiceType  = errors.New("order service type cannot be empty")
	ErrZeroServiceDate   = errors.New("order service date cannot be zero")
	ErrNegativeTips      = errors.New("tips cannot be negative")
	ErrNegativeDiscount  = errors.New("discount amount cannot be negative")
)

// CancellationNotice is the minimum lead time required to cancel an order
// before its scheduled service date.
const CancellationNotice = 24 * time.Hour

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusDone      OrderStatus = "done"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether the status is a known lifecycle state.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusDone, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status permits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDone || s == OrderStatusCancelled
}

// OrderServiceItem is a line item referencing a catalog Service.
// Name, cost and duration are snapshots taken when the item is added, so
// later catalog price changes never alter existing orders.
type OrderServiceItem struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ServiceID uuid.UUID `json:"service_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	// Cost is the total snapshot cost for the line (unit cost × quantity).
	Cost float64 `json:"cost"`
	// Duration is the total added service time in minutes.
	Duration int `json:"duration"`
}

// OrderExtraServiceItem is a line item referencing a catalog ExtraService.
// Hour-based extras are billed price × hours; the rest price × quantity.
type OrderExtraServiceItem struct {
	ID             uuid.UUID `json:"id"`
	OrderID        uuid.UUID `json:"order_id"`
	ExtraServiceID uuid.UUID `json:"extra_service_id"`
	Name           string    `json:"name"`
	Quantity       int       `json:"quantity"`
	Hours          float64   `json:"hours"`
	IsHourBased    bool      `json:"is_hour_based"`
	Cost           float64   `json:"cost"`
	Duration       int       `json:"duration"`
}

// Order is a booked cleaning with its priced line items.
// Money fields satisfy total == (subtotal − discountAmount) + tax + tips,
// with tax a fixed TaxRate share of the discounted subtotal.
type Order struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	ApartmentID *uuid.UUID `json:"apartment_id,omitempty"`

	ServiceTypeID   uuid.UUID `json:"service_type_id"`
	ServiceTypeName string    `json:"service_type_name"`
	// BasePrice is the service type price snapshot taken at creation.
	BasePrice float64 `json:"base_price"`

	Status      OrderStatus `json:"status"`
	ServiceDate time.Time   `json:"service_date"`
	// Duration is the estimated total service time in minutes.
	Duration int `json:"duration"`

	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	Tax            float64 `json:"tax"`
	Tips           float64 `json:"tips"`
	Total          float64 `json:"total"`
	PromoCode      string  `json:"promo_code,omitempty"`

	Services      []OrderServiceItem      `json:"services"`
	ExtraServices []OrderExtraServiceItem `json:"extra_services"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewOrder creates a pending Order for the given user, snapshotting the
// service type's name, base price and duration. Line items are added with
// AddService/AddExtraService and totals derived with Recalculate.
func NewOrder(userID uuid.UUID, serviceType *ServiceType, serviceDate time.Time, tips float64) (*Order, error) {
	if serviceType == nil {
		return nil, ErrEmptyServiceType
	}

	order := &Order{
		ID:              uuid.New(),
		UserID:          userID,
		ServiceTypeID:   serviceType.ID,
		ServiceTypeName: serviceType.Name,
		BasePrice:       serviceType.BasePrice,
		Status:          OrderStatusPending,
		ServiceDate:     serviceDate,
		Duration:        serviceType.BaseDuration,
		Tips:            tips,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	return order, nil
}

// Validate checks if the Order has valid data.
// Returns an error if any field fails validation.
func (o *Order) Validate() error {
	if o.ID == uuid.Nil {
		return ErrEmptyOrderID
	}
	if o.UserID == uuid.Nil {
		return ErrEmptyOrderOwner
	}
	if o.ServiceTypeID == uuid.Nil {
		return ErrEmptyServiceType
	}
	if !o.Status.Valid() {
		return ErrInvalidOrderStatus
	}
	if o.ServiceDate.IsZero() {
		return ErrZeroServiceDate
	}
	if o.Tips < 0 {
		return ErrNegativeTips
	}
	if o.DiscountAmount < 0 {
		return ErrNegativeDiscount
	}
	return nil
}

// AddService appends a snapshot line item for the given catalog service.
func (o *Order) AddService(svc *Service, quantity int) {
	if quantity <= 0 {
		quantity = 1
	}
	o.Services = append(o.Services, OrderServiceItem{
		ID:        uuid.New(),
		OrderID:   o.ID,
		ServiceID: svc.ID,
		Name:      svc.Name,
		Quantity:  quantity,
		Cost:      RoundCurrency(svc.Cost * float64(quantity)),
		Duration:  svc.Duration * quantity,
	})
}

// AddExtraService appends a snapshot line item for the given extra service.
// For hour-based extras the cost is price × hours; otherwise price × quantity.
func (o *Order) AddExtraService(extra *ExtraService, quantity int, hours float64) {
	if quantity <= 0 {
		quantity = 1
	}

	var cost float64
	var duration int
	if extra.IsHourBased {
		if hours <= 0 {
			hours = 1
		}
		cost = extra.Price * hours
		duration = int(float64(extra.Duration) * hours)
	} else {
		hours = 0
		cost = extra.Price * float64(quantity)
		duration = extra.Duration * quantity
	}

	o.ExtraServices = append(o.ExtraServices, OrderExtraServiceItem{
		ID:             uuid.New(),
		OrderID:        o.ID,
		ExtraServiceID: extra.ID,
		Name:           extra.Name,
		Quantity:       quantity,
		Hours:          hours,
		IsHourBased:    extra.IsHourBased,
		Cost:           RoundCurrency(cost),
		Duration:       duration,
	})
}

// ClearItems removes all line items, resetting the duration to zero so the
// caller can rebuild the order from scratch before Recalculate.
func (o *Order) ClearItems() {
	o.Services = nil
	o.ExtraServices = nil
}

// Recalculate derives subtotal, tax, total and duration from the base price
// snapshot and the current line items, keeping the stored discount amount.
func (o *Order) Recalculate(baseDuration int) {
	subtotal := o.BasePrice
	duration := baseDuration

	for _, item := range o.Services {
		subtotal += item.Cost
		duration += item.Duration
	}
	for _, item := range o.ExtraServices {
		subtotal += item.Cost
		duration += item.Duration
	}

	totals := CalculateTotals(subtotal, o.DiscountAmount, o.Tips)
	o.Subtotal = totals.Subtotal
	o.DiscountAmount = totals.DiscountAmount
	o.Tax = totals.Tax
	o.Total = totals.Total
	o.Duration = duration
	o.UpdatedAt = time.Now().UTC()
}

// Modifiable reports whether the order may still be edited.
// Orders freeze once done or cancelled.
func (o *Order) Modifiable() bool {
	return !o.Status.Terminal()
}

// CancellableAt reports whether the order may be cancelled at the given
// time. Cancellation is blocked inside the notice window before service;
// exactly at the boundary it is still blocked.
func (o *Order) CancellableAt(now time.Time) bool {
	if o.Status.Terminal() {
		return false
	}
	return o.ServiceDate.After(now.Add(CancellationNotice))
}
