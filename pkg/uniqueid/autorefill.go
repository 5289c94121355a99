package uniqueid

import (
	"errors"
	"sync"

	"github.com/emirpasic/gods/v2/queues/linkedlistqueue"
)

// DefaultBatchSize is the number of IDs fetched per refill.
const DefaultBatchSize = 500

// ErrEmptyRefill is returned when the wrapped generator yields no IDs for a refill.
var ErrEmptyRefill = errors.New("uniqueid: wrapped generator returned an empty batch")

// AutoRefill caches IDs from a wrapped IDGenerator and refills its buffer a
// whole batch at a time when it runs dry. IDs are handed out in the order
// the wrapped generator produced them.
type AutoRefill struct {
	batchSize int
	generator IDGenerator

	mu     sync.Mutex
	buffer *linkedlistqueue.Queue[ID]
}

// Decorate wraps g with DefaultBatchSize.
func Decorate(g IDGenerator) *AutoRefill {
	return DecorateWithBatchSize(g, DefaultBatchSize)
}

// DecorateWithBatchSize wraps g, fetching batchSize IDs per refill.
// Values below 1 fall back to DefaultBatchSize.
func DecorateWithBatchSize(g IDGenerator, batchSize int) *AutoRefill {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &AutoRefill{
		batchSize: batchSize,
		generator: g,
		buffer:    linkedlistqueue.New[ID](),
	}
}

// BatchSize returns the refill size.
func (a *AutoRefill) BatchSize() int { return a.batchSize }

// Buffered returns the number of cached IDs.
func (a *AutoRefill) Buffered() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buffer.Size()
}

// Generate pops one cached ID, refilling first if the buffer is empty.
func (a *AutoRefill) Generate() (ID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.ensure(1); err != nil {
		return ID{}, err
	}
	id, _ := a.buffer.Dequeue()
	return id, nil
}

// Batch returns n IDs. The buffer is topped up before anything is popped,
// so a failed refill leaves every previously cached ID in place.
func (a *AutoRefill) Batch(n int) ([]ID, error) {
	if n < 0 {
		n = 0
	}
	out := make([]ID, 0, n)
	if n == 0 {
		return out, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.ensure(n); err != nil {
		return nil, err
	}
	for len(out) < n {
		id, _ := a.buffer.Dequeue()
		out = append(out, id)
	}
	return out, nil
}

// ensure refills whole batches until at least n IDs are buffered. Must be
// called with a.mu held.
func (a *AutoRefill) ensure(n int) error {
	for a.buffer.Size() < n {
		ids, err := a.generator.Batch(a.batchSize)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return ErrEmptyRefill
		}
		for _, id := range ids {
			a.buffer.Enqueue(id)
		}
	}
	return nil
}
