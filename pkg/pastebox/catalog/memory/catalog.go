// Package memory provides an in-memory pastebox.Catalog, useful for tests
// and throwaway deployments.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pastebox/pastebox/pkg/pastebox"
)

// Catalog implements pastebox.Catalog using in-memory storage. A single
// mutex serializes all mutations, so identifier assignment is atomic.
type Catalog struct {
	mu     sync.RWMutex
	items  map[int64]*pastebox.Item
	nextID int64
}

// New creates a new in-memory catalog
func New() *Catalog {
	return &Catalog{
		items: make(map[int64]*pastebox.Item),
	}
}

func (c *Catalog) Insert(ctx context.Context, item *pastebox.Item) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID

	// Copy to avoid external modifications
	itemCopy := *item
	itemCopy.ID = id
	if itemCopy.CreatedAt.IsZero() {
		itemCopy.CreatedAt = time.Now().UTC()
	}
	c.items[id] = &itemCopy

	return id, nil
}

func (c *Catalog) GetByID(ctx context.Context, id int64) (*pastebox.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[id]
	if !exists {
		return nil, pastebox.ErrItemNotFound
	}

	itemCopy := *item
	return &itemCopy, nil
}

func (c *Catalog) ListPage(ctx context.Context, page, pageSize int) ([]*pastebox.Item, int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if page < 1 {
		page = 1
	}

	all := make([]*pastebox.Item, 0, len(c.items))
	for _, item := range c.items {
		itemCopy := *item
		all = append(all, &itemCopy)
	}

	// Newest first; identifiers break creation-time ties so page windows
	// stay stable.
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	total := int64(len(all))
	offset := (page - 1) * pageSize
	if offset >= len(all) {
		return []*pastebox.Item{}, total, nil
	}
	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}

	return all[offset:end], total, nil
}

func (c *Catalog) Delete(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, id)
	return nil
}

func (c *Catalog) DeleteAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// nextID is kept: identifiers are never reused.
	c.items = make(map[int64]*pastebox.Item)
	return nil
}

func (c *Catalog) AllBlobNames(ctx context.Context) ([]pastebox.BlobNames, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]pastebox.BlobNames, 0, len(c.items))
	for _, item := range c.items {
		names = append(names, pastebox.BlobNames{
			StoredName:    item.StoredName,
			ThumbnailName: item.ThumbnailName,
		})
	}
	return names, nil
}
