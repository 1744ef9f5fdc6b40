// Package testutils provides an in-memory UnitOfWork with per-account row
// locks and rollback, for service and concurrency tests.
package testutils

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/repository"
)

// Store is the shared state behind every MemoryUoW created from it.
//
// LockForUpdate inside Do takes an exclusive per-account lock that is held
// until Do returns, mirroring SELECT ... FOR UPDATE. Writes made inside Do are
// undone if fn fails. Reads outside Do are not isolated from in-flight
// writes.
type Store struct {
	mu           sync.Mutex
	accounts     map[uuid.UUID]domain.Account
	cards        map[uuid.UUID]domain.Card
	users        map[uuid.UUID]domain.User
	transactions map[uuid.UUID]domain.Transaction
	atmOps       []domain.AtmOperation

	lockMu   sync.Mutex
	rowLocks map[uuid.UUID]*sync.Mutex

	failures map[string]error
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[uuid.UUID]domain.Account),
		cards:        make(map[uuid.UUID]domain.Card),
		users:        make(map[uuid.UUID]domain.User),
		transactions: make(map[uuid.UUID]domain.Transaction),
		rowLocks:     make(map[uuid.UUID]*sync.Mutex),
		failures:     make(map[string]error),
		now:          time.Now,
	}
}

// UoW returns the outer unit of work.
func (s *Store) UoW() *MemoryUoW {
	return &MemoryUoW{store: s}
}

// FailOn makes the named repository method return err, for example
// FailOn("TransactionRepository.UpdateStatus", errBoom). A nil err clears it.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

func (s *Store) injected(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[method]
}

func (s *Store) rowLock(id uuid.UUID) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.rowLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.rowLocks[id] = l
	}
	return l
}

// Seed helpers write directly, bypassing failure injection.

func (s *Store) SeedUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	s.users[u.ID] = *u
}

func (s *Store) SeedAccount(a *domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}
	s.accounts[a.ID] = *a
}

func (s *Store) SeedCard(c *domain.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now().UTC()
	}
	s.cards[c.ID] = *c
}

func (s *Store) SeedTransaction(tx *domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[tx.ID] = *tx
}

func (s *Store) SeedAtmOperation(op *domain.AtmOperation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.atmOps = append(s.atmOps, *op)
}

// Account returns a snapshot of the stored account.
func (s *Store) Account(id uuid.UUID) (domain.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	return a, ok
}

// Transactions returns every stored transaction ordered by creation time.
func (s *Store) Transactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// AtmOperations returns every stored ATM operation in insertion order.
func (s *Store) AtmOperations() []domain.AtmOperation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AtmOperation(nil), s.atmOps...)
}

// Card returns a snapshot of the stored card.
func (s *Store) Card(id uuid.UUID) (domain.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	return c, ok
}

// memTx tracks what a Do call must release or undo.
type memTx struct {
	held []*sync.Mutex
	ids  map[uuid.UUID]struct{}
	undo []func()
}

// MemoryUoW implements repository.UnitOfWork over a Store.
type MemoryUoW struct {
	store *Store
	tx    *memTx
}

var _ repository.UnitOfWork = (*MemoryUoW)(nil)

// Do runs fn with a transaction-bound unit of work. Nested calls join the
// outer transaction.
func (u *MemoryUoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) (err error) {
	if u.tx != nil {
		return fn(u)
	}
	if err := u.store.injected("UnitOfWork.Do"); err != nil {
		return err
	}

	tx := &memTx{ids: make(map[uuid.UUID]struct{})}
	inner := &MemoryUoW{store: u.store, tx: tx}

	defer func() {
		if r := recover(); r != nil {
			tx.rollback(u.store)
			tx.release()
			panic(r)
		}
		if err != nil {
			tx.rollback(u.store)
		}
		tx.release()
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(inner)
}

func (tx *memTx) rollback(s *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

func (tx *memTx) release() {
	for i := len(tx.held) - 1; i >= 0; i-- {
		tx.held[i].Unlock()
	}
	tx.held = nil
}

// record registers an undo step. Callers hold store.mu.
func (u *MemoryUoW) record(undo func()) {
	if u.tx != nil {
		u.tx.undo = append(u.tx.undo, undo)
	}
}

func (u *MemoryUoW) AccountRepository() repository.AccountRepository {
	return &memAccounts{u}
}

func (u *MemoryUoW) CardRepository() repository.CardRepository {
	return &memCards{u}
}

func (u *MemoryUoW) TransactionRepository() repository.TransactionRepository {
	return &memTransactions{u}
}

func (u *MemoryUoW) AtmOperationRepository() repository.AtmOperationRepository {
	return &memAtmOps{u}
}

func (u *MemoryUoW) UserRepository() repository.UserRepository {
	return &memUsers{u}
}

// ---- accounts ----

type memAccounts struct{ u *MemoryUoW }

func (r *memAccounts) Create(_ context.Context, a *domain.Account) error {
	s := r.u.store
	if err := s.injected("AccountRepository.Create"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; ok {
		return domain.ErrAlreadyExists
	}
	for _, existing := range s.accounts {
		if existing.IBAN == a.IBAN {
			return domain.ErrAlreadyExists
		}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}
	s.accounts[a.ID] = *a
	r.u.record(func() { delete(s.accounts, a.ID) })
	return nil
}

func (r *memAccounts) Get(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	if err := r.u.store.injected("AccountRepository.Get"); err != nil {
		return nil, err
	}
	return r.find(func(a domain.Account) bool { return a.ID == id })
}

func (r *memAccounts) GetByIBAN(_ context.Context, iban string) (*domain.Account, error) {
	if err := r.u.store.injected("AccountRepository.GetByIBAN"); err != nil {
		return nil, err
	}
	return r.find(func(a domain.Account) bool { return a.IBAN == iban })
}

func (r *memAccounts) find(match func(domain.Account) bool) (*domain.Account, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.DeletedAt == nil && match(a) {
			cp := a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memAccounts) LockForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	s := r.u.store
	if err := s.injected("AccountRepository.LockForUpdate"); err != nil {
		return nil, err
	}
	if tx := r.u.tx; tx != nil {
		if _, held := tx.ids[id]; !held {
			l := s.rowLock(id)
			l.Lock()
			tx.held = append(tx.held, l)
			tx.ids[id] = struct{}{}
		}
	}
	return r.find(func(a domain.Account) bool { return a.ID == id })
}

func (r *memAccounts) UpdateBalance(_ context.Context, id uuid.UUID, balance decimal.Decimal) error {
	s := r.u.store
	if err := s.injected("AccountRepository.UpdateBalance"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.DeletedAt != nil {
		return domain.ErrNotFound
	}
	if balance.IsNegative() {
		return fmt.Errorf("%w: balance check constraint", domain.ErrValidation)
	}
	prev := a
	a.Balance = balance
	a.UpdatedAt = s.now().UTC()
	s.accounts[id] = a
	r.u.record(func() { s.accounts[id] = prev })
	return nil
}

func (r *memAccounts) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Account, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Account, 0)
	for _, a := range s.accounts {
		if a.UserID == userID && a.DeletedAt == nil {
			cp := a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memAccounts) ExistsIBAN(_ context.Context, iban string) (bool, error) {
	if err := r.u.store.injected("AccountRepository.ExistsIBAN"); err != nil {
		return false, err
	}
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.IBAN == iban {
			return true, nil
		}
	}
	return false, nil
}

func (r *memAccounts) Count(_ context.Context) (int64, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.accounts)), nil
}

// ---- cards ----

type memCards struct{ u *MemoryUoW }

func (r *memCards) Create(_ context.Context, c *domain.Card) error {
	s := r.u.store
	if err := s.injected("CardRepository.Create"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.cards {
		if existing.ID == c.ID || existing.CardNumber == c.CardNumber {
			return domain.ErrAlreadyExists
		}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now().UTC()
	}
	s.cards[c.ID] = *c
	r.u.record(func() { delete(s.cards, c.ID) })
	return nil
}

func (r *memCards) Get(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *memCards) GetByNumber(_ context.Context, number string) (*domain.Card, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cards {
		if c.CardNumber == number {
			cp := c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memCards) UpdatePIN(_ context.Context, id uuid.UUID, pinHash string) error {
	s := r.u.store
	if err := s.injected("CardRepository.UpdatePIN"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok || c.DeletedAt != nil {
		return domain.ErrNotFound
	}
	prev := c
	c.PINHash = pinHash
	s.cards[id] = c
	r.u.record(func() { s.cards[id] = prev })
	return nil
}

func (r *memCards) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Card, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Card, 0)
	for _, c := range s.cards {
		a, ok := s.accounts[c.AccountID]
		if ok && a.UserID == userID && c.DeletedAt == nil {
			cp := c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memCards) ExistsNumber(_ context.Context, number string) (bool, error) {
	if err := r.u.store.injected("CardRepository.ExistsNumber"); err != nil {
		return false, err
	}
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cards {
		if c.CardNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCards) Count(_ context.Context) (int64, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.cards)), nil
}

// ---- transactions ----

type memTransactions struct{ u *MemoryUoW }

func (r *memTransactions) Create(_ context.Context, tx *domain.Transaction) error {
	s := r.u.store
	if err := s.injected("TransactionRepository.Create"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[tx.ID]; ok {
		return domain.ErrAlreadyExists
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = s.now().UTC()
	}
	s.transactions[tx.ID] = *tx
	r.u.record(func() { delete(s.transactions, tx.ID) })
	return nil
}

func (r *memTransactions) Get(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &tx, nil
}

func (r *memTransactions) UpdateStatus(_ context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	s := r.u.store
	if err := s.injected("TransactionRepository.UpdateStatus"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok || tx.Status != domain.TransactionStatusPending {
		return domain.ErrNotFound
	}
	prev := tx
	tx.Status = status
	s.transactions[id] = tx
	r.u.record(func() { s.transactions[id] = prev })
	return nil
}

func (r *memTransactions) completedSince(since time.Time) []domain.Transaction {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Transaction, 0)
	for _, tx := range s.transactions {
		if tx.Status == domain.TransactionStatusCompleted && !tx.CreatedAt.Before(since) {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *memTransactions) CountCompletedSince(_ context.Context, since time.Time) (int64, error) {
	if err := r.u.store.injected("TransactionRepository.CountCompletedSince"); err != nil {
		return 0, err
	}
	return int64(len(r.completedSince(since))), nil
}

func (r *memTransactions) ListCompletedWithCommissionSince(_ context.Context, since time.Time) ([]*domain.Transaction, error) {
	minCommission := decimal.RequireFromString("0.01")
	out := make([]*domain.Transaction, 0)
	for _, tx := range r.completedSince(since) {
		if tx.Commission.GreaterThanOrEqual(minCommission) {
			cp := tx
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memTransactions) CountCompletedPerDaySince(_ context.Context, since time.Time) ([]repository.DayCount, error) {
	times := make([]time.Time, 0)
	for _, tx := range r.completedSince(since) {
		times = append(times, tx.CreatedAt)
	}
	return countPerDay(times), nil
}

// ---- ATM operations ----

type memAtmOps struct{ u *MemoryUoW }

func (r *memAtmOps) Create(_ context.Context, op *domain.AtmOperation) error {
	s := r.u.store
	if err := s.injected("AtmOperationRepository.Create"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if op.CreatedAt.IsZero() {
		op.CreatedAt = s.now().UTC()
	}
	s.atmOps = append(s.atmOps, *op)
	id := op.ID
	r.u.record(func() {
		for i := range s.atmOps {
			if s.atmOps[i].ID == id {
				s.atmOps = append(s.atmOps[:i], s.atmOps[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (r *memAtmOps) filter(match func(domain.AtmOperation) bool) []*domain.AtmOperation {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.AtmOperation, 0)
	for _, op := range s.atmOps {
		if match(op) {
			cp := op
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *memAtmOps) ListWithdrawalsSince(_ context.Context, cardID uuid.UUID, since time.Time) ([]*domain.AtmOperation, error) {
	if err := r.u.store.injected("AtmOperationRepository.ListWithdrawalsSince"); err != nil {
		return nil, err
	}
	return r.filter(func(op domain.AtmOperation) bool {
		return op.CardID == cardID && op.Type == domain.AtmOperationWithdraw && !op.CreatedAt.Before(since)
	}), nil
}

func (r *memAtmOps) ListAllWithdrawalsSince(_ context.Context, since time.Time) ([]*domain.AtmOperation, error) {
	return r.filter(func(op domain.AtmOperation) bool {
		return op.Type == domain.AtmOperationWithdraw && !op.CreatedAt.Before(since)
	}), nil
}

func (r *memAtmOps) CountWithdrawalsPerDaySince(ctx context.Context, since time.Time) ([]repository.DayCount, error) {
	ops, _ := r.ListAllWithdrawalsSince(ctx, since)
	times := make([]time.Time, 0, len(ops))
	for _, op := range ops {
		times = append(times, op.CreatedAt)
	}
	return countPerDay(times), nil
}

func (r *memAtmOps) ListByCard(_ context.Context, cardID uuid.UUID) ([]*domain.AtmOperation, error) {
	return r.filter(func(op domain.AtmOperation) bool { return op.CardID == cardID }), nil
}

// ---- users ----

type memUsers struct{ u *MemoryUoW }

func (r *memUsers) Create(_ context.Context, user *domain.User) error {
	s := r.u.store
	if err := s.injected("UserRepository.Create"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email || existing.PrivateNumber == user.PrivateNumber {
			return domain.ErrAlreadyExists
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now().UTC()
	}
	s.users[user.ID] = *user
	r.u.record(func() { delete(s.users, user.ID) })
	return nil
}

func (r *memUsers) Get(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUsers) ExistsByEmailOrPrivateNumber(_ context.Context, email, privateNumber string) (bool, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email || u.PrivateNumber == privateNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUsers) CountCreatedBetween(_ context.Context, from, to time.Time) (int64, error) {
	if err := r.u.store.injected("UserRepository.CountCreatedBetween"); err != nil {
		return 0, err
	}
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.users {
		if u.DeletedAt == nil && !u.CreatedAt.Before(from) && u.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func countPerDay(times []time.Time) []repository.DayCount {
	counts := make(map[time.Time]int64)
	for _, t := range times {
		t = t.UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		counts[day]++
	}
	out := make([]repository.DayCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, repository.DayCount{Day: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// ErrInjected is a convenience error for FailOn.
var ErrInjected = errors.New("injected failure")
