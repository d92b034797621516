package service

import (
	"math"
	"sync"

	"bozoruz/internal/domain"
)

// Cart holds the shopper's line items in insertion order.
// Every operation is total: unknown product ids are silently ignored.
type Cart struct {
	mu          sync.Mutex
	items       []domain.LineItem
	subscribers map[int]func(domain.CartSnapshot)
	nextSubID   int
}

// NewCart creates an empty cart
func NewCart() *Cart {
	return &Cart{subscribers: make(map[int]func(domain.CartSnapshot))}
}

// AddItem increments the quantity of an existing line item or appends a new
// one with quantity 1. Stock is not enforced.
func (c *Cart) AddItem(product domain.Product) domain.CartSnapshot {
	return c.mutate(func() {
		if i := c.indexOf(product.ID); i >= 0 {
			if c.items[i].Quantity < math.MaxInt {
				c.items[i].Quantity++
			}
			return
		}
		c.items = append(c.items, domain.LineItem{Product: product.Clone(), Quantity: 1})
	})
}

// UpdateQuantity sets the quantity of a line item; quantity <= 0 removes it
func (c *Cart) UpdateQuantity(productID string, quantity int) domain.CartSnapshot {
	if quantity <= 0 {
		return c.RemoveItem(productID)
	}
	return c.mutate(func() {
		if i := c.indexOf(productID); i >= 0 {
			c.items[i].Quantity = quantity
		}
	})
}

// RemoveItem deletes the line item for productID if present
func (c *Cart) RemoveItem(productID string) domain.CartSnapshot {
	return c.mutate(func() {
		if i := c.indexOf(productID); i >= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
		}
	})
}

// Clear empties the cart
func (c *Cart) Clear() domain.CartSnapshot {
	return c.mutate(func() {
		c.items = nil
	})
}

// Take empties the cart and returns what it held, read under the same lock
// so no concurrent mutation falls between the read and the clear
func (c *Cart) Take() domain.CartSnapshot {
	var taken domain.CartSnapshot
	c.mutate(func() {
		taken = c.snapshot()
		c.items = nil
	})
	return taken
}

// PutBack merges items into the cart. Quantities of lines already present
// are added together; other lines are appended in the given order.
func (c *Cart) PutBack(items []domain.LineItem) domain.CartSnapshot {
	return c.mutate(func() {
		for _, item := range items {
			if item.Quantity <= 0 {
				continue
			}
			i := c.indexOf(item.Product.ID)
			if i < 0 {
				c.items = append(c.items, domain.LineItem{Product: item.Product.Clone(), Quantity: item.Quantity})
				continue
			}
			if c.items[i].Quantity > math.MaxInt-item.Quantity {
				c.items[i].Quantity = math.MaxInt
			} else {
				c.items[i].Quantity += item.Quantity
			}
		}
	})
}

// Items returns a copy of the line items
func (c *Cart) Items() []domain.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyItems()
}

// TotalItems returns the sum of all quantities
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalItems()
}

// TotalPrice returns the sum of price * quantity using the captured prices
func (c *Cart) TotalPrice() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPrice()
}

// Snapshot returns the items and totals read under one lock
func (c *Cart) Snapshot() domain.CartSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Subscribe registers fn to receive the cart state after every mutation.
// The returned function removes the subscription.
func (c *Cart) Subscribe(fn func(domain.CartSnapshot)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// mutate applies change under the lock, then notifies subscribers outside it
func (c *Cart) mutate(change func()) domain.CartSnapshot {
	c.mu.Lock()
	change()
	snap := c.snapshot()
	subs := make([]func(domain.CartSnapshot), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return snap
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) snapshot() domain.CartSnapshot {
	return domain.CartSnapshot{
		Items:      c.copyItems(),
		TotalItems: c.totalItems(),
		TotalPrice: c.totalPrice(),
	}
}

func (c *Cart) copyItems() []domain.LineItem {
	items := make([]domain.LineItem, len(c.items))
	for i, item := range c.items {
		items[i] = domain.LineItem{Product: item.Product.Clone(), Quantity: item.Quantity}
	}
	return items
}

func (c *Cart) totalItems() int {
	return domain.SumQuantities(c.items)
}

func (c *Cart) totalPrice() int64 {
	return domain.SumSubtotals(c.items)
}
