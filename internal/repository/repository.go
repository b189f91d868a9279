package repository

import (
	"context"       // Passed through to the store backend
	"encoding/json" // Line-item serialization inside the orders dataset
	"errors"        // Sentinel errors and inspection
	"fmt"           // Identifier and error formatting
	"strconv"       // Numeric column codec
	"time"          // Retry pacing bounds

	"mobile_sale/internal/domain" // Record types
	"mobile_sale/internal/store"  // Dataset persistence

	"github.com/cenkalti/backoff/v5" // Exponential backoff for write retries
	"github.com/sirupsen/logrus"     // Logging library
)

// Dataset names and schemas. The schemas are the CSV headers of the three
// persisted tables plus the counter table that owns identifier sequences.
const (
	datasetCustomers = "customers"
	datasetProducts  = "products"
	datasetOrders    = "orders"
	datasetCounters  = "counters"
)

var (
	customerColumns = []string{"name", "address", "phone", "tax_id", "owner"}
	productColumns  = []string{"sku", "name", "price"}
	orderColumns    = []string{"order_id", "date", "customer", "items", "total", "owner", "note"}
	counterColumns  = []string{"name", "value"}
)

// ErrNoSuchCustomer reports a customer lookup miss for the given owner
var ErrNoSuchCustomer = errors.New("repository: no such customer")

// ErrNoSuchProduct reports a product lookup miss
var ErrNoSuchProduct = errors.New("repository: no such product")

// ErrNoSuchOrder reports an order lookup miss for the given owner
var ErrNoSuchOrder = errors.New("repository: no such order")

// Repository owns the persisted datasets. Every mutation is a whole-table
// read-modify-write against the backend, guarded by the backend's version
// marker and retried with exponential backoff when a concurrent writer wins
// the race. No table state is cached between calls.
type Repository struct {
	backend     store.Backend
	eagerCreate bool // Local variant materializes missing datasets on first load
}

// NewRepository wraps a store backend. eagerCreate selects the local-variant
// behavior of persisting an empty dataset immediately when none exists;
// remote backends create datasets lazily on first write instead.
func NewRepository(backend store.Backend, eagerCreate bool) *Repository {
	return &Repository{backend: backend, eagerCreate: eagerCreate}
}

// loadTable loads a dataset, substituting an empty table of the schema when
// no backing resource exists yet. The returned version is "" for a dataset
// that has never been written, which tells Store to create it.
func (r *Repository) loadTable(ctx context.Context, name string, columns []string) (*store.Table, string, error) {
	data, version, err := r.backend.Load(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		table := store.NewTable(columns...)
		if r.eagerCreate {
			empty, merr := table.Marshal()
			if merr != nil {
				return nil, "", merr
			}
			// Ignore a create race: the loser simply re-reads on next use
			if v, serr := r.backend.Store(ctx, name, empty, ""); serr == nil {
				version = v
			}
		}
		return table, version, nil
	}
	if err != nil {
		return nil, "", err
	}
	table, err := store.UnmarshalTable(data, columns...)
	if err != nil {
		return nil, "", err
	}
	return table, version, nil
}

// saveTable writes a dataset back under its version marker
func (r *Repository) saveTable(ctx context.Context, name string, table *store.Table, version string) error {
	data, err := table.Marshal()
	if err != nil {
		return err
	}
	_, err = r.backend.Store(ctx, name, data, version)
	return err
}

// retryPolicy bounds the read-modify-write retry loop
func retryPolicy() []backoff.RetryOption {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return []backoff.RetryOption{backoff.WithBackOff(b), backoff.WithMaxTries(5)}
}

// mutate runs one load-mutate-save cycle against a dataset and retries the
// whole cycle on a version conflict, so a concurrent append by another
// session is re-read instead of overwritten.
func (r *Repository) mutate(ctx context.Context, name string, columns []string, fn func(*store.Table) error) error {
	op := func() (struct{}, error) {
		table, version, err := r.loadTable(ctx, name, columns)
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		if err := fn(table); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		if err := r.saveTable(ctx, name, table, version); err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				logrus.WithField("dataset", name).Warn("Concurrent write detected, retrying")
				return struct{}{}, err // Retryable: re-read and re-apply
			}
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, nil
	}
	_, err := backoff.Retry(ctx, op, retryPolicy()...)
	return err
}

// AddCustomer appends a customer row and persists immediately.
// Name uniqueness is not enforced; duplicates are allowed.
func (r *Repository) AddCustomer(ctx context.Context, c domain.Customer) error {
	return r.mutate(ctx, datasetCustomers, customerColumns, func(t *store.Table) error {
		return t.Append(c.Name, c.Address, c.Phone, c.TaxID, c.Owner)
	})
}

// ListCustomers returns the owner's customers in insertion order
func (r *Repository) ListCustomers(ctx context.Context, owner string) ([]domain.Customer, error) {
	table, _, err := r.loadTable(ctx, datasetCustomers, customerColumns)
	if err != nil {
		return nil, err
	}
	customers := []domain.Customer{}
	for _, row := range table.Rows {
		if row[4] != owner {
			continue // Customer visibility is scoped to the owning user
		}
		customers = append(customers, domain.Customer{
			Name: row[0], Address: row[1], Phone: row[2], TaxID: row[3], Owner: row[4],
		})
	}
	return customers, nil
}

// GetCustomer returns the owner's first customer with the given name
func (r *Repository) GetCustomer(ctx context.Context, owner, name string) (domain.Customer, error) {
	customers, err := r.ListCustomers(ctx, owner)
	if err != nil {
		return domain.Customer{}, err
	}
	for _, c := range customers {
		if c.Name == name {
			return c, nil
		}
	}
	return domain.Customer{}, ErrNoSuchCustomer
}

// AddProduct appends a product row and persists immediately.
// Products are global; SKU and name uniqueness are not enforced.
func (r *Repository) AddProduct(ctx context.Context, p domain.Product) error {
	return r.mutate(ctx, datasetProducts, productColumns, func(t *store.Table) error {
		return t.Append(p.SKU, p.Name, strconv.FormatFloat(p.Price, 'f', 2, 64))
	})
}

// ListProducts returns all products in insertion order; there is no owner
// filter because the catalog is shared.
func (r *Repository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	table, _, err := r.loadTable(ctx, datasetProducts, productColumns)
	if err != nil {
		return nil, err
	}
	products := []domain.Product{}
	for _, row := range table.Rows {
		price, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("repository: bad price %q for product %q: %w", row[2], row[1], err)
		}
		products = append(products, domain.Product{SKU: row[0], Name: row[1], Price: price})
	}
	return products, nil
}

// GetProduct returns the first product with the given name
func (r *Repository) GetProduct(ctx context.Context, name string) (domain.Product, error) {
	products, err := r.ListProducts(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range products {
		if p.Name == name {
			return p, nil
		}
	}
	return domain.Product{}, ErrNoSuchProduct
}

// AppendOrder persists one order row. Orders are append-only and immutable.
func (r *Repository) AppendOrder(ctx context.Context, o domain.Order) error {
	items, err := json.Marshal(o.Lines)
	if err != nil {
		return err
	}
	return r.mutate(ctx, datasetOrders, orderColumns, func(t *store.Table) error {
		return t.Append(o.OrderID, o.Date, o.Customer, string(items),
			strconv.FormatFloat(o.Total, 'f', 2, 64), o.Owner, o.Note)
	})
}

// ListOrders returns the owner's order history in insertion order
func (r *Repository) ListOrders(ctx context.Context, owner string) ([]domain.Order, error) {
	table, _, err := r.loadTable(ctx, datasetOrders, orderColumns)
	if err != nil {
		return nil, err
	}
	orders := []domain.Order{}
	for _, row := range table.Rows {
		if row[5] != owner {
			continue // Order history is scoped to the owning user
		}
		o, err := orderFromRow(row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// GetOrder returns one of the owner's orders by identifier
func (r *Repository) GetOrder(ctx context.Context, owner, orderID string) (domain.Order, error) {
	orders, err := r.ListOrders(ctx, owner)
	if err != nil {
		return domain.Order{}, err
	}
	for _, o := range orders {
		if o.OrderID == orderID {
			return o, nil
		}
	}
	return domain.Order{}, ErrNoSuchOrder
}

// orderFromRow decodes one orders-dataset row
func orderFromRow(row []string) (domain.Order, error) {
	var lines []domain.OrderLine
	if row[3] != "" {
		if err := json.Unmarshal([]byte(row[3]), &lines); err != nil {
			return domain.Order{}, fmt.Errorf("repository: bad items for order %q: %w", row[0], err)
		}
	}
	total, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		return domain.Order{}, fmt.Errorf("repository: bad total %q for order %q: %w", row[4], row[0], err)
	}
	return domain.Order{
		OrderID: row[0], Date: row[1], Customer: row[2],
		Lines: lines, Total: total, Owner: row[5], Note: row[6],
	}, nil
}

// NextOrderID advances the store-owned order counter and returns a fresh
// identifier. The counter lives in its own dataset and is advanced with the
// same version-checked retry as any other write, so two sessions can never
// mint the same identifier. The first advance seeds the counter from the
// current order row count, continuing an existing dataset's sequence.
// A counter advance is durable even if the subsequent order write fails,
// so identifier sequences may have gaps but never collide.
func (r *Repository) NextOrderID(ctx context.Context) (string, error) {
	var minted string
	err := r.mutate(ctx, datasetCounters, counterColumns, func(t *store.Table) error {
		next := 0
		row := -1
		for i, rec := range t.Rows {
			if rec[0] == datasetOrders {
				n, err := strconv.Atoi(rec[1])
				if err != nil {
					return fmt.Errorf("repository: bad counter value %q: %w", rec[1], err)
				}
				next, row = n, i
				break
			}
		}
		if row < 0 {
			// First use: continue from however many orders already exist
			orders, _, err := r.loadTable(ctx, datasetOrders, orderColumns)
			if err != nil {
				return err
			}
			next = len(orders.Rows)
		}
		next++
		minted = fmt.Sprintf("ORD-%03d", next)
		if row < 0 {
			return t.Append(datasetOrders, strconv.Itoa(next))
		}
		t.Rows[row][1] = strconv.Itoa(next)
		return nil
	})
	if err != nil {
		return "", err
	}
	return minted, nil
}

// ExportOrders renders the owner's order history as delimited text
func (r *Repository) ExportOrders(ctx context.Context, owner string) ([]byte, error) {
	orders, err := r.ListOrders(ctx, owner)
	if err != nil {
		return nil, err
	}
	table := store.NewTable(orderColumns...)
	for _, o := range orders {
		items, err := json.Marshal(o.Lines)
		if err != nil {
			return nil, err
		}
		if err := table.Append(o.OrderID, o.Date, o.Customer, string(items),
			strconv.FormatFloat(o.Total, 'f', 2, 64), o.Owner, o.Note); err != nil {
			return nil, err
		}
	}
	return table.Marshal()
}
