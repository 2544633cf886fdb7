package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/rentledger/internal/domain"
)

// LookupRecorder counts cache hits and misses.
type LookupRecorder interface {
	RecordCacheLookup(hit bool)
}

// setIfNewer stores "<revision>|<json>" unless the cached entry carries a
// higher revision.
//
// KEYS[1] = cache key
// ARGV[1] = revision, ARGV[2] = value, ARGV[3] = ttl in milliseconds
var setIfNewer = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	local rev = tonumber(string.match(cur, '^(%d+)|'))
	if rev and rev > tonumber(ARGV[1]) then
		return 0
	end
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// WalletCache implements usecase.WalletCache using Redis. Entries are a
// read-side convenience only; the ledger never trusts them for debits.
type WalletCache struct {
	client   redis.UniversalClient
	prefix   string
	ttl      time.Duration
	recorder LookupRecorder
}

// NewWalletCache creates a new WalletCache.
func NewWalletCache(client redis.UniversalClient, ttl time.Duration) *WalletCache {
	return &WalletCache{
		client: client,
		prefix: "wallet:",
		ttl:    ttl,
	}
}

// WithRecorder reports hits and misses to r.
func (c *WalletCache) WithRecorder(r LookupRecorder) *WalletCache {
	c.recorder = r
	return c
}

type cachedWallet struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Balance     int64     `json:"balance"`
	TotalEarned int64     `json:"total_earned"`
	TotalSpent  int64     `json:"total_spent"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Get returns the cached wallet, or nil on a miss.
func (c *WalletCache) Get(ctx context.Context, userID string) (*domain.Wallet, error) {
	data, err := c.client.Get(ctx, c.prefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.record(false)
			return nil, nil
		}
		return nil, err
	}

	var cw cachedWallet
	_, payload, found := bytes.Cut(data, []byte("|"))
	if !found || json.Unmarshal(payload, &cw) != nil {
		// Treat a corrupt entry as a miss and drop it.
		_ = c.client.Del(ctx, c.prefix+userID).Err()
		c.record(false)
		return nil, nil
	}

	c.record(true)

	return &domain.Wallet{
		ID:          cw.ID,
		UserID:      cw.UserID,
		Balance:     domain.Money(cw.Balance),
		TotalEarned: domain.Money(cw.TotalEarned),
		TotalSpent:  domain.Money(cw.TotalSpent),
		CreatedAt:   cw.CreatedAt,
		UpdatedAt:   cw.UpdatedAt,
	}, nil
}

// Set stores the wallet summary with the configured TTL. A snapshot older
// than the cached one is dropped, so a slow reader cannot overwrite the
// state a credit or debit stored after commit.
func (c *WalletCache) Set(ctx context.Context, wallet *domain.Wallet) error {
	data, err := json.Marshal(cachedWallet{
		ID:          wallet.ID,
		UserID:      wallet.UserID,
		Balance:     int64(wallet.Balance),
		TotalEarned: int64(wallet.TotalEarned),
		TotalSpent:  int64(wallet.TotalSpent),
		CreatedAt:   wallet.CreatedAt,
		UpdatedAt:   wallet.UpdatedAt,
	})
	if err != nil {
		return err
	}

	revision := strconv.FormatInt(wallet.Revision(), 10)
	value := revision + "|" + string(data)

	return setIfNewer.Run(ctx, c.client, []string{c.prefix + wallet.UserID},
		revision, value, c.ttl.Milliseconds()).Err()
}

// Invalidate removes the cached wallet for userID.
func (c *WalletCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, c.prefix+userID).Err()
}

func (c *WalletCache) record(hit bool) {
	if c.recorder != nil {
		c.recorder.RecordCacheLookup(hit)
	}
}
