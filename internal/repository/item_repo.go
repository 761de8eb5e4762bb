package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"posledger/internal/model"
)

type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	Update(ctx context.Context, id int64, apply func(item *model.Item)) (*model.Item, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Item, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Item, error)
	FindByNameOrBarcode(ctx context.Context, query string) (*model.Item, error)
	List(ctx context.Context) []model.Item
	Search(ctx context.Context, query string) []model.Item
}

type itemRepository struct {
	shop *ShopDataStore
}

func NewItemRepository(shop *ShopDataStore) ItemRepository {
	return &itemRepository{shop: shop}
}

// Create assigns the next sequential id and, when the barcode is empty, a
// generated ITM-NNNNNN barcode.
func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	return r.shop.write(ctx, func(d *model.ShopData) error {
		item.ID = d.Settings.NextItemID
		d.Settings.NextItemID++

		if item.Barcode == "" {
			item.Barcode = fmt.Sprintf("ITM-%06d", item.ID)
		}
		now := time.Now()
		item.CreatedAt = now
		item.UpdatedAt = now

		stored := *item
		d.Items[item.ID] = &stored
		return nil
	})
}

func (r *itemRepository) Update(ctx context.Context, id int64, apply func(item *model.Item)) (*model.Item, error) {
	var out model.Item
	err := r.shop.write(ctx, func(d *model.ShopData) error {
		existing, ok := d.Items[id]
		if !ok {
			return ErrNotFound
		}
		apply(existing)
		existing.ID = id
		existing.UpdatedAt = time.Now()
		out = *existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *itemRepository) Delete(ctx context.Context, id int64) error {
	return r.shop.write(ctx, func(d *model.ShopData) error {
		if _, ok := d.Items[id]; !ok {
			return ErrNotFound
		}
		delete(d.Items, id)
		return nil
	})
}

func (r *itemRepository) FindByID(ctx context.Context, id int64) (*model.Item, error) {
	var out *model.Item
	r.shop.read(func(d *model.ShopData) {
		if it, ok := d.Items[id]; ok {
			cp := *it
			out = &cp
		}
	})
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}

func (r *itemRepository) FindByBarcode(ctx context.Context, barcode string) (*model.Item, error) {
	for _, it := range r.List(ctx) {
		if barcode != "" && strings.EqualFold(it.Barcode, barcode) {
			return &it, nil
		}
	}
	return nil, ErrNotFound
}

// FindByNameOrBarcode is an exact, case-insensitive lookup. Barcodes win
// over names when both could match.
func (r *itemRepository) FindByNameOrBarcode(ctx context.Context, query string) (*model.Item, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrNotFound
	}
	if it, err := r.FindByBarcode(ctx, q); err == nil {
		return it, nil
	}
	for _, it := range r.List(ctx) {
		if strings.EqualFold(it.Name, q) {
			return &it, nil
		}
	}
	return nil, ErrNotFound
}

// List returns every item ordered by id, which is insertion order.
func (r *itemRepository) List(ctx context.Context) []model.Item {
	var items []model.Item
	r.shop.read(func(d *model.ShopData) {
		items = make([]model.Item, 0, len(d.Items))
		for _, it := range d.Items {
			items = append(items, *it)
		}
	})
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (r *itemRepository) Search(ctx context.Context, query string) []model.Item {
	all := r.List(ctx)
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}

	matches := make([]model.Item, 0)
	for _, it := range all {
		if strings.Contains(strings.ToLower(it.Name), q) ||
			strings.Contains(strings.ToLower(it.Barcode), q) ||
			strings.Contains(strings.ToLower(it.Description), q) {
			matches = append(matches, it)
		}
	}
	return matches
}
