package service

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Skotchmaster/kicks_premium/services/cart/internal/models"
)

const StorageKey = "fashionmarket-cart"

// Cart is a state container over one client's cart. Every mutation is
// written through to its Storage.
type Cart struct {
	mu      sync.Mutex
	storage Storage
	state   models.State
}

// NewCart restores the cart from storage. Missing or unreadable state
// yields an empty cart.
func NewCart(storage Storage) *Cart {
	c := &Cart{storage: storage}
	c.state = load(storage)
	return c
}

func load(storage Storage) models.State {
	empty := models.State{Items: []models.CartItem{}}

	data, err := storage.Load(StorageKey)
	if err != nil || len(data) == 0 {
		return empty
	}
	var st models.State
	if err := json.Unmarshal(data, &st); err != nil {
		return empty
	}

	items := make([]models.CartItem, 0, len(st.Items))
	for _, it := range st.Items {
		if it.ProductID == "" || it.Quantity < 1 {
			continue
		}
		items = append(items, it)
	}
	st.Items = items
	return st
}

func (c *Cart) find(productID, size string) int {
	for i, it := range c.state.Items {
		if it.ProductID == productID && it.Size == size {
			return i
		}
	}
	return -1
}

func (c *Cart) persist() error {
	data, err := json.Marshal(c.state)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return c.storage.Save(StorageKey, data)
}

// Add merges quantity into the (product, size) line or appends a new one.
func (c *Cart) Add(item models.CartItem, quantity int, size string) error {
	if quantity <= 0 {
		quantity = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.find(item.ProductID, size); i >= 0 {
		c.state.Items[i].Quantity += quantity
	} else {
		item.Size = size
		item.Quantity = quantity
		c.state.Items = append(c.state.Items, item)
	}
	return c.persist()
}

func (c *Cart) Remove(productID, size string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(productID, size)
	return c.persist()
}

func (c *Cart) remove(productID, size string) {
	kept := c.state.Items[:0]
	for _, it := range c.state.Items {
		if it.ProductID == productID && it.Size == size {
			continue
		}
		kept = append(kept, it)
	}
	c.state.Items = kept
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
// Unknown lines are left alone.
func (c *Cart) UpdateQuantity(productID, size string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.find(productID, size)
	if i < 0 {
		return nil
	}
	if quantity <= 0 {
		c.remove(productID, size)
	} else {
		c.state.Items[i].Quantity = quantity
	}
	return c.persist()
}

func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = models.State{Items: []models.CartItem{}}
	return c.persist()
}

func (c *Cart) Toggle() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.IsOpen = !c.state.IsOpen
	return c.persist()
}

func (c *Cart) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.IsOpen = true
	return c.persist()
}

func (c *Cart) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.IsOpen = false
	return c.persist()
}

func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, it := range c.state.Items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.state.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CartItem{}, c.state.Items...)
}

func (c *Cart) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.IsOpen
}
