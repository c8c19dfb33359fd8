package cache

import (
	"sync"
	"time"

	"github.com/longnd/toystore-service/internal/models"
)

// RuleCache keeps the active shipping rule list in memory for a short TTL so
// every checkout does not re-read a table that changes only from the admin UI.
type RuleCache struct {
	mu      sync.RWMutex
	rules   []models.ShippingRule
	ttl     time.Duration
	expires time.Time
}

func NewRuleCache(ttl time.Duration) *RuleCache {
	return &RuleCache{ttl: ttl}
}

func (c *RuleCache) Get() ([]models.ShippingRule, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.rules == nil || time.Now().After(c.expires) {
		return nil, false
	}
	return c.rules, true
}

func (c *RuleCache) Set(rules []models.ShippingRule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules = rules
	c.expires = time.Now().Add(c.ttl)
}

func (c *RuleCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules = nil
}
