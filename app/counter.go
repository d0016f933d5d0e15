package app

import "sync"

// messageCounter tracks published messages across all workers. Workers run
// in parallel, so access is mutex guarded.
type messageCounter struct {
	mu    sync.Mutex
	count int
	limit int // 0 means unlimited
}

func newMessageCounter(limit int) *messageCounter {
	return &messageCounter{limit: limit}
}

// inc records one published message and reports the running total and
// whether the limit has been reached.
func (c *messageCounter) inc() (total int, done bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	return c.count, c.limit > 0 && c.count >= c.limit
}

// total returns the current count.
func (c *messageCounter) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
