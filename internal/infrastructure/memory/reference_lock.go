package memory

import (
	"context"
	"sync"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/payment"
)

// ReferenceLock serializes callbacks for one payment reference inside a
// single process.
type ReferenceLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewReferenceLock() *ReferenceLock {
	return &ReferenceLock{held: make(map[string]struct{})}
}

// Acquire fails fast with payment.ErrReconciliationInProgress when the
// reference is already held.
func (l *ReferenceLock) Acquire(ctx context.Context, reference string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[reference]; busy {
		return nil, payment.ErrReconciliationInProgress
	}
	l.held[reference] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, reference)
			l.mu.Unlock()
		})
	}, nil
}
