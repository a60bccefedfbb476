// Package pricing - Estimate cache with TTL governance
package pricing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
)

// Cache stores computed breakdowns by CacheKey. Get returns a breakdown the caller
// owns; changing it must not affect what later callers receive.
type Cache interface {
	Get(ctx context.Context, key string) (*types.CostBreakdown, bool, error)
	Set(ctx context.Context, key string, b *types.CostBreakdown) error
}

// CacheKey hashes everything an estimate depends on: the model version, the inputs,
// and the discount that was applied (code plus its current terms)
func CacheKey(modelVersion string, inputs types.CalculatorInputs, code string, desc *types.DiscountDescriptor) string {
	payload := struct {
		Model  string                 `json:"m"`
		Inputs types.CalculatorInputs `json:"i"`
		Code   string                 `json:"c,omitempty"`
		Type   types.DiscountType     `json:"t,omitempty"`
		Amount string                 `json:"a,omitempty"`
	}{
		Model:  modelVersion,
		Inputs: inputs,
		Code:   code,
	}
	if desc != nil {
		payload.Type = desc.Type
		payload.Amount = desc.Amount.String()
	}

	data, _ := json.Marshal(payload)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// CachePolicy defines cache behavior
type CachePolicy struct {
	// TTL for entries
	TTL time.Duration

	// MaxEntries caps memory use; expired entries are evicted first, then the oldest
	MaxEntries int
}

// DefaultCachePolicy returns the default policy
func DefaultCachePolicy() *CachePolicy {
	return &CachePolicy{
		TTL:        10 * time.Minute,
		MaxEntries: 10000,
	}
}

// CacheEntry is a cached breakdown with governance metadata
type CacheEntry struct {
	Key         string
	Value       *types.CostBreakdown
	CreatedAt   time.Time
	ExpiresAt   time.Time
	AccessCount int
}

func (e *CacheEntry) expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// CacheStats contains cache statistics
type CacheStats struct {
	TotalEntries int
	Hits         int
	Misses       int
}

// MemoryCache is an in-process Cache
type MemoryCache struct {
	policy  CachePolicy
	now     func() time.Time
	entries map[string]*CacheEntry
	hits    int
	misses  int
	mu      sync.Mutex
}

// NewMemoryCache creates a memory cache; a nil policy uses the default
func NewMemoryCache(policy *CachePolicy) *MemoryCache {
	if policy == nil {
		policy = DefaultCachePolicy()
	}
	return &MemoryCache{
		policy:  *policy,
		now:     time.Now,
		entries: make(map[string]*CacheEntry),
	}
}

// Get retrieves an entry if it has not expired
func (c *MemoryCache) Get(_ context.Context, key string) (*types.CostBreakdown, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false, nil
	}
	if entry.expired(c.now()) {
		delete(c.entries, key)
		c.misses++
		return nil, false, nil
	}

	entry.AccessCount++
	c.hits++
	return entry.Value.Clone(), true, nil
}

// Set stores an entry, evicting when the cache is full
func (c *MemoryCache) Set(_ context.Context, key string, b *types.CostBreakdown) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && c.policy.MaxEntries > 0 && len(c.entries) >= c.policy.MaxEntries {
		c.evict(now)
	}

	c.entries[key] = &CacheEntry{
		Key:       key,
		Value:     b.Clone(),
		CreatedAt: now,
		ExpiresAt: now.Add(c.policy.TTL),
	}
	return nil
}

// InvalidateExpired removes all expired entries
func (c *MemoryCache) InvalidateExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropExpired(c.now())
}

// Stats returns cache statistics
func (c *MemoryCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{TotalEntries: len(c.entries), Hits: c.hits, Misses: c.misses}
}

// caller holds mu
func (c *MemoryCache) evict(now time.Time) {
	if c.dropExpired(now) > 0 {
		return
	}
	var oldest *CacheEntry
	for _, e := range c.entries {
		if oldest == nil || e.CreatedAt.Before(oldest.CreatedAt) {
			oldest = e
		}
	}
	if oldest != nil {
		delete(c.entries, oldest.Key)
	}
}

// caller holds mu
func (c *MemoryCache) dropExpired(now time.Time) int {
	count := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			count++
		}
	}
	return count
}

var _ Cache = (*MemoryCache)(nil)
