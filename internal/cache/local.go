package cache

import (
	"context"
	"sync"
	"time"
)

// LocalTier is the in-process tier: a small LRU with per-entry expiry.
// Sub-millisecond, bounded by capacity, safe for concurrent use.
type LocalTier struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*lruNode
	head     *lruNode
	tail     *lruNode
	now      func() time.Time
}

type lruNode struct {
	key       string
	value     []byte
	expiresAt time.Time
	prev      *lruNode
	next      *lruNode
}

// NewLocalTier creates a local tier holding at most capacity entries.
func NewLocalTier(capacity int) *LocalTier {
	if capacity <= 0 {
		capacity = 1000
	}
	return &LocalTier{
		capacity: capacity,
		items:    make(map[string]*lruNode),
		now:      time.Now,
	}
}

// Name implements Tier.
func (c *LocalTier) Name() string { return "local" }

// Get implements Tier. Expired entries are evicted on read.
func (c *LocalTier) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.items[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	if c.now().After(node.expiresAt) {
		c.removeNode(node)
		delete(c.items, key)
		return nil, ErrCacheMiss
	}
	c.moveToHead(node)
	return node.value, nil
}

// Set implements Tier.
func (c *LocalTier) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.items[key]; ok {
		node.value = value
		node.expiresAt = c.now().Add(ttl)
		c.moveToHead(node)
		return nil
	}

	if len(c.items) >= c.capacity {
		c.evictTail()
	}

	node := &lruNode{
		key:       key,
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
	c.items[key] = node
	c.addToHead(node)
	return nil
}

// Len returns the number of resident entries, expired or not.
func (c *LocalTier) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LocalTier) addToHead(node *lruNode) {
	node.prev = nil
	node.next = c.head
	if c.head != nil {
		c.head.prev = node
	}
	c.head = node
	if c.tail == nil {
		c.tail = node
	}
}

func (c *LocalTier) removeNode(node *lruNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		c.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		c.tail = node.prev
	}
}

func (c *LocalTier) moveToHead(node *lruNode) {
	if node == c.head {
		return
	}
	c.removeNode(node)
	c.addToHead(node)
}

func (c *LocalTier) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.items, c.tail.key)
	c.removeNode(c.tail)
}
