package vendorpay

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryRollsBackOnError(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		require.NoError(t, tx.InsertPayment(ctx, Payment{ID: "a"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.GetPayment(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepositoryKeepsInsertionOrder(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			return tx.InsertPayment(ctx, Payment{ID: id})
		}))
	}
	require.NoError(t, repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.DeletePayment(ctx, "a")
	}))

	all, err := repo.ListPayments(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, p := range all {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"c", "b"}, ids)
}

func TestMemoryRepositoryTxSeesOwnWrites(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		require.NoError(t, tx.InsertPayment(ctx, Payment{ID: "x", Notes: "one"}))
		require.NoError(t, tx.UpdatePayment(ctx, Payment{ID: "x", Notes: "two"}))
		got, err := tx.GetPayment(ctx, "x")
		require.NoError(t, err)
		assert.Equal(t, "two", got.Notes)
		require.NoError(t, tx.DeletePayment(ctx, "x"))
		require.NoError(t, tx.InsertPayment(ctx, Payment{ID: "x", Notes: "three"}))
		return nil
	}))

	all, err := repo.ListPayments(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "three", all[0].Notes)
}

func TestMemoryRepositoryRejectsDuplicates(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	insert := func() error {
		return repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			return tx.InsertPayment(ctx, Payment{ID: "dup"})
		})
	}
	require.NoError(t, insert())
	require.Error(t, insert())
}

func TestMemoryRepositoryReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.InsertPayment(ctx, Payment{ID: "a", Attachments: []string{"invoice.pdf"}})
	}))

	got, err := repo.GetPayment(ctx, "a")
	require.NoError(t, err)
	got.Attachments[0] = "tampered.pdf"

	again, err := repo.GetPayment(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"invoice.pdf"}, again.Attachments)
}

func TestMemoryRepositoryHonoursCancelledContext(t *testing.T) {
	repo := NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		t.Fatal("fn must not run")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentProcessSucceedsOnce(t *testing.T) {
	svc := newTestService(t)
	p, err := svc.CreatePayment(context.Background(), validInput())
	require.NoError(t, err)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ProcessPayment(context.Background(), TransitionInput{PaymentID: p.ID})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, ErrInvalidTransition) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, rejected)
	stored, err := svc.GetPayment(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version)
}

func TestMemoryRepositoryReferenceExists(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.InsertPayment(ctx, Payment{ID: "a", PaymentReference: "REF-1"})
	}))

	require.NoError(t, repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		taken, err := tx.ReferenceExists(ctx, "REF-1")
		require.NoError(t, err)
		assert.True(t, taken)

		require.NoError(t, tx.InsertPayment(ctx, Payment{ID: "b", PaymentReference: "REF-2"}))
		taken, err = tx.ReferenceExists(ctx, "REF-2")
		require.NoError(t, err)
		assert.True(t, taken, "staged insert")

		require.NoError(t, tx.DeletePayment(ctx, "a"))
		taken, err = tx.ReferenceExists(ctx, "REF-1")
		require.NoError(t, err)
		assert.False(t, taken, "staged delete")
		return nil
	}))
}
