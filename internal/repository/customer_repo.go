package repository

import (
	"context"
	"sort"
	"time"

	"posledger/internal/model"
)

// PostFunc mutates a customer and returns the audit row to record, or nil.
// It must not mutate the customer when it returns an error.
type PostFunc func(c *model.Customer) (*model.LedgerTransaction, error)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	Update(ctx context.Context, id int64, apply func(c *model.Customer)) (*model.Customer, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Customer, error)
	List(ctx context.Context) []model.Customer
	Post(ctx context.Context, id int64, fn PostFunc) (*model.Customer, error)
	Transactions(ctx context.Context, customerID int64) []model.LedgerTransaction
}

type customerRepository struct {
	shop *ShopDataStore
}

func NewCustomerRepository(shop *ShopDataStore) CustomerRepository {
	return &customerRepository{shop: shop}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return r.shop.write(ctx, func(d *model.ShopData) error {
		customer.ID = d.Settings.NextCustomerID
		d.Settings.NextCustomerID++

		now := time.Now()
		customer.CreatedAt = now
		customer.UpdatedAt = now
		customer.LegacyBalance = nil

		stored := *customer
		d.Customers[customer.ID] = &stored
		return nil
	})
}

// Update merges profile fields through apply. Ledger totals are restored
// afterwards; they only change through Post.
func (r *customerRepository) Update(ctx context.Context, id int64, apply func(c *model.Customer)) (*model.Customer, error) {
	var out model.Customer
	err := r.shop.write(ctx, func(d *model.ShopData) error {
		existing, ok := d.Customers[id]
		if !ok {
			return ErrNotFound
		}
		debt, paid, spent := existing.TotalDebt, existing.TotalPaid, existing.TotalSpent
		apply(existing)
		existing.ID = id
		existing.TotalDebt, existing.TotalPaid, existing.TotalSpent = debt, paid, spent
		existing.UpdatedAt = time.Now()
		out = *existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *customerRepository) Delete(ctx context.Context, id int64) error {
	return r.shop.write(ctx, func(d *model.ShopData) error {
		if _, ok := d.Customers[id]; !ok {
			return ErrNotFound
		}
		delete(d.Customers, id)
		return nil
	})
}

func (r *customerRepository) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	var out *model.Customer
	r.shop.read(func(d *model.ShopData) {
		if c, ok := d.Customers[id]; ok {
			cp := *c
			out = &cp
		}
	})
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}

func (r *customerRepository) List(ctx context.Context) []model.Customer {
	var customers []model.Customer
	r.shop.read(func(d *model.ShopData) {
		customers = make([]model.Customer, 0, len(d.Customers))
		for _, c := range d.Customers {
			customers = append(customers, *c)
		}
	})
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })
	return customers
}

// Post is the single mutation path for ledger totals.
func (r *customerRepository) Post(ctx context.Context, id int64, fn PostFunc) (*model.Customer, error) {
	var out model.Customer
	err := r.shop.write(ctx, func(d *model.ShopData) error {
		existing, ok := d.Customers[id]
		if !ok {
			return ErrNotFound
		}
		work := *existing
		txn, err := fn(&work)
		if err != nil {
			return err
		}
		work.UpdatedAt = time.Now()
		*existing = work
		if txn != nil {
			txn.CustomerID = id
			txn.BalanceAfter = work.CurrentBalance()
			d.Transactions = append(d.Transactions, *txn)
		}
		out = work
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *customerRepository) Transactions(ctx context.Context, customerID int64) []model.LedgerTransaction {
	out := make([]model.LedgerTransaction, 0)
	r.shop.read(func(d *model.ShopData) {
		for _, t := range d.Transactions {
			if t.CustomerID == customerID {
				out = append(out, t)
			}
		}
	})
	return out
}
