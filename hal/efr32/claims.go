package efr32

import (
	"sync"

	"efr32hal/errcode"
)

// Claims is a fixed table of claimed flags, one per Resource. Every driver
// constructor claims its block here and gives it back on Release.
type Claims struct {
	mu   sync.Mutex
	held [numResources]bool
}

// Claim marks r as owned. A second claim fails with in_use.
func (c *Claims) Claim(r Resource) error {
	if r >= numResources {
		return &errcode.E{C: errcode.Unsupported, Op: r.String()}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.held[r] {
		return &errcode.E{C: errcode.InUse, Op: r.String()}
	}
	c.held[r] = true
	return nil
}

// Release frees r. Releasing a free resource is a no-op.
func (c *Claims) Release(r Resource) {
	if r >= numResources {
		return
	}
	c.mu.Lock()
	c.held[r] = false
	c.mu.Unlock()
}

func (c *Claims) Held(r Resource) bool {
	if r >= numResources {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.held[r]
}

// block is embedded by every register block.
type block struct {
	claims *Claims
	res    Resource
}

// Claim takes exclusive ownership of the block.
func (b *block) Claim() error { return b.claims.Claim(b.res) }

// Unclaim hands the block back for another driver.
func (b *block) Unclaim() { b.claims.Release(b.res) }

func (b *block) Resource() Resource { return b.res }
func (b *block) Name() string       { return b.res.String() }
