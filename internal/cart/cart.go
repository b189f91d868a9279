package cart

import (
	"context" // Passed through to the registry
	"errors"  // Validation sentinels
	"sync"    // Guard session state
	"time"    // Order date stamping

	"mobile_sale/internal/domain" // Record types

	"github.com/sirupsen/logrus" // Logging library
)

// Registry is the slice of the repository the cart needs: price lookups at
// add-time, customer validation and order persistence at submit-time.
type Registry interface {
	GetProduct(ctx context.Context, name string) (domain.Product, error)
	GetCustomer(ctx context.Context, owner, name string) (domain.Customer, error)
	NextOrderID(ctx context.Context) (string, error)
	AppendOrder(ctx context.Context, o domain.Order) error
}

// Validation failures that block submission
var (
	ErrEmptyCart   = errors.New("cart: no line items")
	ErrNoCustomer  = errors.New("cart: no customer selected")
	ErrBadQuantity = errors.New("cart: quantity must be positive")
)

// Cart accumulates line items for one logged-in user until submission.
// Unit prices are snapshotted when a line is added and never re-resolved,
// so a later catalog change does not alter a cart in progress.
type Cart struct {
	owner    string
	registry Registry

	mu    sync.Mutex
	lines []domain.CartLine
}

// New returns an empty cart for the given owner
func New(owner string, registry Registry) *Cart {
	return &Cart{owner: owner, registry: registry}
}

// AddLine resolves the product's current unit price and appends a line.
// The quantity must be positive and the product must exist in the catalog.
func (c *Cart) AddLine(ctx context.Context, product string, qty int) (domain.CartLine, error) {
	if qty < 1 {
		return domain.CartLine{}, ErrBadQuantity
	}
	p, err := c.registry.GetProduct(ctx, product)
	if err != nil {
		return domain.CartLine{}, err
	}
	line := domain.CartLine{Product: p.Name, Quantity: qty, UnitPrice: p.Price}
	c.mu.Lock()
	c.lines = append(c.lines, line)
	c.mu.Unlock()
	return line, nil
}

// Lines returns a copy of the current line items
func (c *Cart) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total returns the sum of quantity times unit price over all lines
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0.0
	for _, l := range c.lines {
		total += l.LineTotal()
	}
	return total
}

// Clear discards all line items without submitting
func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

// Submit validates the cart, mints an order identifier and persists the
// order. The cart is cleared only after the store write succeeds; on a
// store failure the lines stay in place so the user can retry. A minted
// identifier is never reused, so an order that fails to persist leaves a
// gap in the sequence rather than a collision.
func (c *Cart) Submit(ctx context.Context, customer, note string) (domain.Order, error) {
	if customer == "" {
		return domain.Order{}, ErrNoCustomer
	}
	c.mu.Lock()
	lines := make([]domain.OrderLine, len(c.lines))
	for i, l := range c.lines {
		lines[i] = domain.OrderLine{Product: l.Product, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}
	c.mu.Unlock()
	if len(lines) == 0 {
		return domain.Order{}, ErrEmptyCart
	}
	// The customer must belong to this user
	if _, err := c.registry.GetCustomer(ctx, c.owner, customer); err != nil {
		return domain.Order{}, err
	}
	orderID, err := c.registry.NextOrderID(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	total := 0.0
	for _, l := range lines {
		total += float64(l.Quantity) * l.UnitPrice
	}
	order := domain.Order{
		OrderID:  orderID,
		Date:     time.Now().Format("2006-01-02"),
		Customer: customer,
		Lines:    lines,
		Total:    total,
		Owner:    c.owner,
		Note:     note,
	}
	if err := c.registry.AppendOrder(ctx, order); err != nil {
		// Keep the cart populated for retry
		logrus.WithFields(logrus.Fields{
			"order_id": orderID, // Minted identifier, now a sequence gap
			"owner":    c.owner, // Submitting user
			"error":    err.Error(),
		}).Error("Order submission failed")
		return domain.Order{}, err
	}
	c.Clear()
	logrus.WithFields(logrus.Fields{
		"order_id": orderID,    // Persisted order identifier
		"owner":    c.owner,    // Submitting user
		"customer": customer,   // Selected customer
		"total":    total,      // Grand total
		"lines":    len(lines), // Line item count
	}).Info("Order submitted")
	return order, nil
}

// Manager hands out one cart per logged-in user. Carts are transient
// session state only; nothing here is persisted.
type Manager struct {
	registry Registry

	mu    sync.Mutex
	carts map[string]*Cart
}

// NewManager returns an empty cart manager
func NewManager(registry Registry) *Manager {
	return &Manager{registry: registry, carts: make(map[string]*Cart)}
}

// Get returns the owner's cart, creating an empty one on first use
func (m *Manager) Get(owner string) *Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[owner]
	if !ok {
		c = New(owner, m.registry)
		m.carts[owner] = c
	}
	return c
}

// Drop discards the owner's cart, used when the session ends
func (m *Manager) Drop(owner string) {
	m.mu.Lock()
	delete(m.carts, owner)
	m.mu.Unlock()
}
