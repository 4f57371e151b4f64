package vendorpay

import (
	"context"
	"fmt"
	"sync"
)

// Repository defines vendor payment data access.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	GetPayment(ctx context.Context, id string) (Payment, error)
	ListPayments(ctx context.Context) ([]Payment, error)
}

// TxRepository defines operations within a transaction.
type TxRepository interface {
	GetPayment(ctx context.Context, id string) (Payment, error)
	InsertPayment(ctx context.Context, p Payment) error
	UpdatePayment(ctx context.Context, p Payment) error
	DeletePayment(ctx context.Context, id string) error
	ReferenceExists(ctx context.Context, reference string) (bool, error)
}

var _ Repository = (*MemoryRepository)(nil)
var _ TxRepository = (*memoryTx)(nil)

// MemoryRepository keeps payments in process memory. One lock guards the
// whole collection: transactions are exclusive and readers never observe
// a transaction that has not committed.
type MemoryRepository struct {
	mu       sync.RWMutex
	payments map[string]Payment
	order    []string
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{payments: make(map[string]Payment)}
}

// WithTx runs fn with exclusive access. Staged writes are applied only when fn returns nil.
func (r *MemoryRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &memoryTx{repo: r, staged: make(map[string]*Payment)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (r *MemoryRepository) GetPayment(ctx context.Context, id string) (Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	return p.clone(), nil
}

// ListPayments returns all payments in insertion order.
func (r *MemoryRepository) ListPayments(ctx context.Context) ([]Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Payment, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.payments[id].clone())
	}
	return out, nil
}

type memoryTx struct {
	repo *MemoryRepository
	// staged maps id to the pending record; nil marks a delete.
	staged   map[string]*Payment
	inserted []string
}

func (tx *memoryTx) lookup(id string) (Payment, bool) {
	if p, ok := tx.staged[id]; ok {
		if p == nil {
			return Payment{}, false
		}
		return *p, true
	}
	p, ok := tx.repo.payments[id]
	return p, ok
}

func (tx *memoryTx) GetPayment(ctx context.Context, id string) (Payment, error) {
	p, ok := tx.lookup(id)
	if !ok {
		return Payment{}, ErrNotFound
	}
	return p.clone(), nil
}

func (tx *memoryTx) InsertPayment(ctx context.Context, p Payment) error {
	if _, ok := tx.lookup(p.ID); ok {
		return fmt.Errorf("payment %s already exists", p.ID)
	}
	stored := p.clone()
	tx.staged[p.ID] = &stored
	tx.inserted = append(tx.inserted, p.ID)
	return nil
}

func (tx *memoryTx) UpdatePayment(ctx context.Context, p Payment) error {
	if _, ok := tx.lookup(p.ID); !ok {
		return ErrNotFound
	}
	stored := p.clone()
	tx.staged[p.ID] = &stored
	return nil
}

func (tx *memoryTx) DeletePayment(ctx context.Context, id string) error {
	if _, ok := tx.lookup(id); !ok {
		return ErrNotFound
	}
	tx.staged[id] = nil
	return nil
}

// ReferenceExists reports whether any committed or staged payment carries reference.
func (tx *memoryTx) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	for _, p := range tx.staged {
		if p != nil && p.PaymentReference == reference {
			return true, nil
		}
	}
	for id, p := range tx.repo.payments {
		if staged, ok := tx.staged[id]; ok && staged == nil {
			continue
		}
		if p.PaymentReference == reference {
			return true, nil
		}
	}
	return false, nil
}

// commit applies staged writes. Caller holds the write lock.
func (tx *memoryTx) commit() {
	r := tx.repo
	appended := make(map[string]bool, len(tx.inserted))
	for _, id := range tx.inserted {
		if _, exists := r.payments[id]; !exists && tx.staged[id] != nil && !appended[id] {
			r.order = append(r.order, id)
			appended[id] = true
		}
	}
	deleted := false
	for id, p := range tx.staged {
		if p == nil {
			if _, exists := r.payments[id]; exists {
				delete(r.payments, id)
				deleted = true
			}
			continue
		}
		r.payments[id] = *p
	}
	if deleted {
		kept := r.order[:0]
		for _, id := range r.order {
			if _, ok := r.payments[id]; ok {
				kept = append(kept, id)
			}
		}
		r.order = kept
	}
}
