// Package memory provides an in-memory implementation of the persistence
// ports. A single store-wide mutex held from Begin to Commit/Rollback gives
// the same serialization guarantee the database row locks give in production,
// which makes the store suitable for exercising concurrent ledger paths in
// tests without a running database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ggshop-bot/internal/domain/entity"
	errs "ggshop-bot/internal/domain/error"
	coreport "ggshop-bot/internal/domain/port/core"
	"ggshop-bot/internal/domain/port/persistence"
)

// Store keeps users and transactions in maps and slices guarded by one mutex.
type Store struct {
	mu           sync.Mutex
	users        map[int64]*entity.User
	transactions []*entity.Transaction
	nextTxnID    uint64
	timeProvider coreport.TimeProvider
}

// NewStore creates an empty in-memory store.
func NewStore(timeProvider coreport.TimeProvider) *Store {
	return &Store{
		users:        make(map[int64]*entity.User),
		nextTxnID:    1,
		timeProvider: timeProvider,
	}
}

// snapshot captures the full store state so Rollback can restore it.
type snapshot struct {
	users        map[int64]*entity.User
	transactions []*entity.Transaction
	nextTxnID    uint64
}

func (s *Store) takeSnapshot() *snapshot {
	users := make(map[int64]*entity.User, len(s.users))
	for id, u := range s.users {
		copied := *u
		users[id] = &copied
	}
	transactions := make([]*entity.Transaction, len(s.transactions))
	for i, t := range s.transactions {
		copied := *t
		transactions[i] = &copied
	}
	return &snapshot{
		users:        users,
		transactions: transactions,
		nextTxnID:    s.nextTxnID,
	}
}

func (s *Store) restore(snap *snapshot) {
	s.users = snap.users
	s.transactions = snap.transactions
	s.nextTxnID = snap.nextTxnID
}

type txStateKey struct{}

// txState tracks one open unit of work: the lock is held and the snapshot is
// kept until Commit discards it or Rollback restores it.
type txState struct {
	store *Store
	snap  *snapshot
	done  bool
}

// UnitOfWork implements persistence.UnitOfWork over the store.
type UnitOfWork struct {
	store *Store
}

// NewUnitOfWork creates a unit of work bound to the store.
func NewUnitOfWork(store *Store) persistence.UnitOfWork {
	return &UnitOfWork{store: store}
}

// Begin locks the store and snapshots its state. Concurrent units of work
// queue on the mutex, so each sees the committed effects of the previous one.
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	u.store.mu.Lock()
	state := &txState{
		store: u.store,
		snap:  u.store.takeSnapshot(),
	}
	return context.WithValue(ctx, txStateKey{}, state), nil
}

// Commit discards the snapshot and releases the store.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	state, ok := ctx.Value(txStateKey{}).(*txState)
	if !ok || state == nil {
		return fmt.Errorf("no transaction found in context")
	}
	if state.done {
		return nil
	}
	state.done = true
	state.snap = nil
	u.store.mu.Unlock()
	return nil
}

// Rollback restores the snapshot and releases the store.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	state, ok := ctx.Value(txStateKey{}).(*txState)
	if !ok || state == nil {
		return fmt.Errorf("no transaction found in context")
	}
	if state.done {
		return nil
	}
	state.done = true
	u.store.restore(state.snap)
	state.snap = nil
	u.store.mu.Unlock()
	return nil
}

// GetUserRepository returns a user repository bound to the open transaction.
func (u *UnitOfWork) GetUserRepository(ctx context.Context) persistence.UserRepository {
	return &UserRepository{store: u.store, inTx: inTx(ctx)}
}

// GetTransactionRepository returns a transaction repository bound to the open
// transaction.
func (u *UnitOfWork) GetTransactionRepository(ctx context.Context) persistence.TransactionRepository {
	return &TransactionRepository{store: u.store, inTx: inTx(ctx)}
}

func inTx(ctx context.Context) bool {
	state, ok := ctx.Value(txStateKey{}).(*txState)
	return ok && state != nil && !state.done
}

// UserRepository implements persistence.UserRepository over the store.
type UserRepository struct {
	store *Store
	inTx  bool
}

// NewUserRepository creates a standalone (non-transactional) user repository.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	defer r.lock()()
	user, ok := r.store.users[id]
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *UserRepository) CreateIfAbsent(ctx context.Context, id int64, username string) (*entity.User, bool, error) {
	defer r.lock()()
	if existing, ok := r.store.users[id]; ok {
		if username != "" && existing.Username != username {
			existing.Username = username
			existing.UpdatedAt = r.store.timeProvider.Now()
		}
		copied := *existing
		return &copied, false, nil
	}

	user, err := entity.NewUser(id, username, r.store.timeProvider)
	if err != nil {
		return nil, false, err
	}
	r.store.users[id] = user
	copied := *user
	return &copied, true, nil
}

func (r *UserRepository) AdjustBalance(ctx context.Context, id int64, deltaCents int64) (*entity.User, error) {
	defer r.lock()()
	user, ok := r.store.users[id]
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	user.Balance += deltaCents
	user.UpdatedAt = r.store.timeProvider.Now()
	copied := *user
	return &copied, nil
}

func (r *UserRepository) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	defer r.lock()()
	user, ok := r.store.users[id]
	if !ok {
		return errs.ErrUserNotFound
	}
	user.IsAdmin = isAdmin
	user.UpdatedAt = r.store.timeProvider.Now()
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	defer r.lock()()
	users := make([]*entity.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		copied := *u
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Balance > users[j].Balance
	})
	return users, nil
}

// TransactionRepository implements persistence.TransactionRepository over the
// store.
type TransactionRepository struct {
	store *Store
	inTx  bool
}

// NewTransactionRepository creates a standalone (non-transactional)
// transaction repository.
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

func (r *TransactionRepository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *TransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	defer r.lock()()
	if transaction.PaymentID != "" {
		for _, t := range r.store.transactions {
			if t.Provider == transaction.Provider && t.PaymentID == transaction.PaymentID {
				return errs.ErrDuplicateDeposit
			}
		}
	}
	copied := *transaction
	copied.ID = r.store.nextTxnID
	r.store.nextTxnID++
	r.store.transactions = append(r.store.transactions, &copied)
	transaction.ID = copied.ID
	return nil
}

func (r *TransactionRepository) GetByPaymentID(ctx context.Context, provider, paymentID string) (*entity.Transaction, error) {
	defer r.lock()()
	for _, t := range r.store.transactions {
		if t.Provider == provider && t.PaymentID == paymentID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, errs.ErrTransactionNotFound
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entity.Transaction, error) {
	defer r.lock()()
	var transactions []*entity.Transaction
	for i := len(r.store.transactions) - 1; i >= 0; i-- {
		if r.store.transactions[i].UserID == userID {
			copied := *r.store.transactions[i]
			transactions = append(transactions, &copied)
			if limit > 0 && len(transactions) == limit {
				break
			}
		}
	}
	return transactions, nil
}

func (r *TransactionRepository) ListSince(ctx context.Context, since time.Time) ([]*entity.Transaction, error) {
	defer r.lock()()
	var transactions []*entity.Transaction
	for _, t := range r.store.transactions {
		if !t.CreatedAt.Before(since) {
			copied := *t
			transactions = append(transactions, &copied)
		}
	}
	return transactions, nil
}

func (r *TransactionRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	defer r.lock()()
	var count int64
	for _, t := range r.store.transactions {
		if !t.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// SumAmounts returns the total of every ledger entry for a user. Test helper
// for checking the balance invariant.
func (s *Store) SumAmounts(userID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, t := range s.transactions {
		if t.UserID == userID {
			sum += t.AmountCents
		}
	}
	return sum
}
