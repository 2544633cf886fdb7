package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/usecase"
)

var errTxClosed = errors.New("transaction already closed")

// Store is an in-memory backend with transactional semantics. Units of work
// are serialized, writes are staged per transaction and applied on commit,
// and a rollback discards them.
type Store struct {
	txMu sync.Mutex

	mu        sync.RWMutex
	wallets   map[string]*domain.Wallet // by user id
	txns      []*domain.WalletTransaction
	listings  map[string]*domain.Listing
	outbox    []*domain.OutboxEvent
	failures  map[string]fault
	commits   int
	rollbacks int
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		wallets:  make(map[string]*domain.Wallet),
		listings: make(map[string]*domain.Listing),
		failures: make(map[string]fault),
	}
}

// FailOn makes every call of op return err until cleared with a nil err.
// Ops: tx.begin, tx.commit, wallet.create, wallet.get, wallet.update,
// wallet_transaction.create, listing.lock, listing.stamp, listing.add_slots,
// listing.list_uncredited, outbox.create.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = fault{err: err}
}

// FailOnce makes the next call of op return err.
func (s *Store) FailOnce(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = fault{err: err, once: true}
}

type fault struct {
	err  error
	once bool
}

func (s *Store) failure(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.failures[op]
	if !ok {
		return nil
	}
	if f.once {
		delete(s.failures, op)
	}
	return f.err
}

// SeedWallet stores a committed wallet.
func (s *Store) SeedWallet(w *domain.Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *w
	s.wallets[w.UserID] = &c
}

// SeedListing stores a committed listing.
func (s *Store) SeedListing(l *domain.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = cloneListing(l)
}

// Wallet returns the committed wallet of userID, or nil.
func (s *Store) Wallet(userID string) *domain.Wallet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[userID]
	if !ok {
		return nil
	}
	c := *w
	return &c
}

// WalletCount returns the number of committed wallets.
func (s *Store) WalletCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.wallets)
}

// Listing returns the committed listing, or nil.
func (s *Store) Listing(id string) *domain.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return nil
	}
	return cloneListing(l)
}

// Transactions returns the committed ledger entries of a wallet, oldest first.
func (s *Store) Transactions(walletID string) []*domain.WalletTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.WalletTransaction
	for _, t := range s.txns {
		if t.WalletID == walletID {
			c := *t
			out = append(out, &c)
		}
	}
	return out
}

// AllTransactions returns every committed ledger entry.
func (s *Store) AllTransactions() []*domain.WalletTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.WalletTransaction, len(s.txns))
	for i, t := range s.txns {
		c := *t
		out[i] = &c
	}
	return out
}

// OutboxEvents returns the committed outbox events.
func (s *Store) OutboxEvents() []*domain.OutboxEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), s.outbox...)
}

// Commits returns the number of committed transactions.
func (s *Store) Commits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commits
}

// Rollbacks returns the number of rolled back transactions.
func (s *Store) Rollbacks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rollbacks
}

// TxManager returns a usecase.TransactionManager bound to the store.
func (s *Store) TxManager() *TxManager { return &TxManager{store: s} }

// Wallets returns a usecase.WalletRepository bound to the store.
func (s *Store) Wallets() *WalletRepo { return &WalletRepo{store: s} }

// Ledger returns a usecase.WalletTransactionRepository bound to the store.
func (s *Store) Ledger() *TransactionRepo { return &TransactionRepo{store: s} }

// Listings returns a usecase.ListingRepository bound to the store.
func (s *Store) Listings() *ListingRepo { return &ListingRepo{store: s} }

// Outbox returns a usecase.OutboxRepository bound to the store.
func (s *Store) Outbox() *OutboxRepo { return &OutboxRepo{store: s} }

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// Begin blocks until no other unit is open, then starts a new one.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := m.store.failure("tx.begin"); err != nil {
		return nil, err
	}

	m.store.txMu.Lock()

	return &Tx{
		store:    m.store,
		wallets:  make(map[string]*domain.Wallet),
		listings: make(map[string]*domain.Listing),
	}, nil
}

// Tx is a staged unit of work.
type Tx struct {
	store    *Store
	closed   bool
	wallets  map[string]*domain.Wallet
	listings map[string]*domain.Listing
	txns     []*domain.WalletTransaction
	outbox   []*domain.OutboxEvent
}

// Commit applies the staged writes.
func (t *Tx) Commit(ctx context.Context) error {
	if t.closed {
		return errTxClosed
	}

	if err := t.store.failure("tx.commit"); err != nil {
		t.close(false)
		return err
	}

	t.store.mu.Lock()
	for userID, w := range t.wallets {
		t.store.wallets[userID] = w
	}
	for id, l := range t.listings {
		t.store.listings[id] = l
	}
	t.store.txns = append(t.store.txns, t.txns...)
	t.store.outbox = append(t.store.outbox, t.outbox...)
	t.store.mu.Unlock()

	t.close(true)
	return nil
}

// Rollback discards the staged writes. Calling it after Commit is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.closed {
		return nil
	}
	t.close(false)
	return nil
}

func (t *Tx) close(committed bool) {
	t.closed = true
	t.store.mu.Lock()
	if committed {
		t.store.commits++
	} else {
		t.store.rollbacks++
	}
	t.store.mu.Unlock()
	t.store.txMu.Unlock()
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t.closed {
		return nil, errTxClosed
	}
	return t, nil
}

// WalletRepo implements usecase.WalletRepository.
type WalletRepo struct {
	store *Store
}

func (r *WalletRepo) Create(ctx context.Context, wallet *domain.Wallet) error {
	if err := r.store.failure("wallet.create"); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.wallets[wallet.UserID]; ok {
		return domain.ErrWalletAlreadyExists
	}
	c := *wallet
	r.store.wallets[wallet.UserID] = &c
	return nil
}

func (r *WalletRepo) CreateIfNotExists(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) (bool, error) {
	if err := r.store.failure("wallet.create"); err != nil {
		return false, err
	}
	t, err := asTx(tx)
	if err != nil {
		return false, err
	}
	if _, ok := t.wallets[wallet.UserID]; ok {
		return false, nil
	}
	if r.store.Wallet(wallet.UserID) != nil {
		return false, nil
	}
	c := *wallet
	t.wallets[wallet.UserID] = &c
	return true, nil
}

func (r *WalletRepo) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	if err := r.store.failure("wallet.get"); err != nil {
		return nil, err
	}
	w := r.store.Wallet(userID)
	if w == nil {
		return nil, domain.ErrWalletNotFound
	}
	return w, nil
}

func (r *WalletRepo) GetByUserIDForUpdate(ctx context.Context, tx usecase.Transaction, userID string) (*domain.Wallet, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if w, ok := t.wallets[userID]; ok {
		c := *w
		return &c, nil
	}
	w := r.store.Wallet(userID)
	if w == nil {
		return nil, domain.ErrWalletNotFound
	}
	return w, nil
}

func (r *WalletRepo) UpdateBalances(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	if err := r.store.failure("wallet.update"); err != nil {
		return err
	}
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	c := *wallet
	t.wallets[wallet.UserID] = &c
	return nil
}

// TransactionRepo implements usecase.WalletTransactionRepository.
type TransactionRepo struct {
	store *Store
}

func (r *TransactionRepo) Create(ctx context.Context, tx usecase.Transaction, txn *domain.WalletTransaction) error {
	if err := r.store.failure("wallet_transaction.create"); err != nil {
		return err
	}
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	c := *txn
	t.txns = append(t.txns, &c)
	return nil
}

func (r *TransactionRepo) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.WalletTransaction, error) {
	txns := r.store.Transactions(walletID)
	for i, j := 0, len(txns)-1; i < j; i, j = i+1, j-1 {
		txns[i], txns[j] = txns[j], txns[i]
	}
	if offset >= len(txns) {
		return []*domain.WalletTransaction{}, nil
	}
	txns = txns[offset:]
	if limit < len(txns) {
		txns = txns[:limit]
	}
	return txns, nil
}

// ListingRepo implements usecase.ListingRepository.
type ListingRepo struct {
	store *Store
}

func (r *ListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	l := r.store.Listing(id)
	if l == nil {
		return nil, domain.ErrListingNotFound
	}
	return l, nil
}

func (r *ListingRepo) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Listing, error) {
	if err := r.store.failure("listing.lock"); err != nil {
		return nil, err
	}
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if l, ok := t.listings[id]; ok {
		return cloneListing(l), nil
	}
	return r.GetByID(ctx, id)
}

func (r *ListingRepo) staged(ctx context.Context, tx usecase.Transaction, id string) (*Tx, *domain.Listing, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, nil, err
	}
	l, err := r.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	return t, l, nil
}

func (r *ListingRepo) SetCommissionAmount(ctx context.Context, tx usecase.Transaction, id string, amount domain.Money, updatedAt time.Time) error {
	if err := r.store.failure("listing.stamp"); err != nil {
		return err
	}
	t, l, err := r.staged(ctx, tx, id)
	if err != nil {
		return err
	}
	l.CommissionAmount = &amount
	l.UpdatedAt = updatedAt
	t.listings[id] = l
	return nil
}

func (r *ListingRepo) AddImageSlots(ctx context.Context, tx usecase.Transaction, id string, count int, updatedAt time.Time) (int, error) {
	if err := r.store.failure("listing.add_slots"); err != nil {
		return 0, err
	}
	t, l, err := r.staged(ctx, tx, id)
	if err != nil {
		return 0, err
	}
	l.MaxImageSlots += count
	l.UpdatedAt = updatedAt
	t.listings[id] = l
	return l.MaxImageSlots, nil
}

func (r *ListingRepo) ListUncredited(ctx context.Context, limit int) ([]*domain.Listing, error) {
	if err := r.store.failure("listing.list_uncredited"); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domain.Listing
	for _, l := range r.store.listings {
		if l.PaymentStatus == domain.PaymentStatusPaid && l.ListingPrice != nil && l.CommissionAmount == nil {
			out = append(out, cloneListing(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// OutboxRepo implements usecase.OutboxRepository.
type OutboxRepo struct {
	store *Store
}

func (r *OutboxRepo) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if err := r.store.failure("outbox.create"); err != nil {
		return err
	}
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	t.outbox = append(t.outbox, event)
	return nil
}

func (r *OutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range r.store.outbox {
		if !e.Published && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *OutboxRepo) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, e := range r.store.outbox {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return fmt.Errorf("outbox event %s not found", id)
}

func (r *OutboxRepo) DeletePublished(ctx context.Context, before time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.outbox[:0]
	for _, e := range r.store.outbox {
		if e.Published && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	r.store.outbox = kept
	return nil
}

// SequentialIDGenerator returns prefix-1, prefix-2, ...
type SequentialIDGenerator struct {
	Prefix string
	n      atomic.Int64
}

func (g *SequentialIDGenerator) Generate() string {
	return fmt.Sprintf("%s-%d", g.Prefix, g.n.Add(1))
}

// SettingsRepo is an in-memory usecase.SettingsRepository.
type SettingsRepo struct {
	mu       sync.RWMutex
	settings map[string]*domain.Setting
}

// NewSettingsRepo creates an empty SettingsRepo.
func NewSettingsRepo() *SettingsRepo {
	return &SettingsRepo{settings: make(map[string]*domain.Setting)}
}

func (r *SettingsRepo) Get(ctx context.Context, key string) (*domain.Setting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.settings[key]
	if !ok {
		return nil, domain.ErrSettingNotFound
	}
	c := *s
	return &c, nil
}

func (r *SettingsRepo) Upsert(ctx context.Context, setting *domain.Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *setting
	r.settings[setting.Key] = &c
	return nil
}

func cloneListing(l *domain.Listing) *domain.Listing {
	c := *l
	if l.ListingPrice != nil {
		p := *l.ListingPrice
		c.ListingPrice = &p
	}
	if l.CommissionAmount != nil {
		a := *l.CommissionAmount
		c.CommissionAmount = &a
	}
	return &c
}

var (
	_ usecase.TransactionManager          = (*TxManager)(nil)
	_ usecase.WalletRepository            = (*WalletRepo)(nil)
	_ usecase.WalletTransactionRepository = (*TransactionRepo)(nil)
	_ usecase.ListingRepository           = (*ListingRepo)(nil)
	_ usecase.OutboxRepository            = (*OutboxRepo)(nil)
	_ usecase.SettingsRepository          = (*SettingsRepo)(nil)
	_ usecase.IDGenerator                 = (*SequentialIDGenerator)(nil)
)
