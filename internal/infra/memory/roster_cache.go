package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"rollbook-service/internal/app"
	"rollbook-service/internal/domain"
)

// RosterCache caches roster listings with a TTL to keep board recomputation
// from hammering the backing store. Mutations pass through and invalidate.
type RosterCache struct {
	inner app.Roster
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand
	rndMu sync.Mutex

	mu        sync.RWMutex
	snapshot  []domain.Student
	expiresAt time.Time
}

func NewRosterCache(inner app.Roster, ttl time.Duration) *RosterCache {
	return &RosterCache{
		inner: inner,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *RosterCache) List(ctx context.Context) ([]domain.Student, error) {
	now := c.clock()

	c.mu.RLock()
	if c.snapshot != nil && c.expiresAt.After(now) {
		snapshot := c.snapshot
		c.mu.RUnlock()
		return snapshot, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("list", func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.snapshot != nil && c.expiresAt.After(now) {
			snapshot := c.snapshot
			c.mu.RUnlock()
			return snapshot, nil
		}
		c.mu.RUnlock()

		students, err := c.inner.List(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.snapshot = students
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return students, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Student), nil
}

func (c *RosterCache) Get(ctx context.Context, id string) (domain.Student, error) {
	return c.inner.Get(ctx, id)
}

func (c *RosterCache) Create(ctx context.Context, s domain.Student) (domain.Student, error) {
	created, err := c.inner.Create(ctx, s)
	if err == nil {
		c.invalidate()
	}
	return created, err
}

func (c *RosterCache) CreateBatch(ctx context.Context, students []domain.Student) error {
	err := c.inner.CreateBatch(ctx, students)
	if err == nil {
		c.invalidate()
	}
	return err
}

func (c *RosterCache) Update(ctx context.Context, s domain.Student) error {
	err := c.inner.Update(ctx, s)
	if err == nil {
		c.invalidate()
	}
	return err
}

func (c *RosterCache) Delete(ctx context.Context, id string) error {
	err := c.inner.Delete(ctx, id)
	if err == nil {
		c.invalidate()
	}
	return err
}

func (c *RosterCache) invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.mu.Unlock()
}

func (c *RosterCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
