package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
)

// addressChunkSize bounds how many placeholders a single insert/select
// statement carries.
const addressChunkSize = 1000

// AddressCache interns every address string the store has ever seen into
// its row id in address_lookup_table. It never evicts: an address, once
// assigned an id, keeps it for the life of the process.
type AddressCache struct {
	db  *sql.DB
	mu  sync.RWMutex
	ids map[string]int64
}

func NewAddressCache(db *sql.DB) *AddressCache {
	return &AddressCache{db: db, ids: make(map[string]int64)}
}

// ID returns the interned id for address, if Intern has already resolved
// it. The empty string (used for an absent optional address: no outer
// program, no AMM on a standalone transfer) never has an id; callers bind
// SQL NULL for it instead.
func (c *AddressCache) ID(address string) (int64, bool) {
	if address == "" {
		return 0, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.ids[address]
	return id, ok
}

// Intern makes sure every non-empty address in addrs has an id cached,
// inserting any unseen ones first. Safe to call with duplicates.
func (c *AddressCache) Intern(ctx context.Context, addrs []string) error {
	var uncached []string
	seen := make(map[string]bool, len(addrs))
	for _, a := range addrs {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		c.mu.RLock()
		_, ok := c.ids[a]
		c.mu.RUnlock()
		if !ok {
			uncached = append(uncached, a)
		}
	}
	if len(uncached) == 0 {
		return nil
	}

	for start := 0; start < len(uncached); start += addressChunkSize {
		end := start + addressChunkSize
		if end > len(uncached) {
			end = len(uncached)
		}
		if err := c.insertIgnore(ctx, uncached[start:end]); err != nil {
			return err
		}
		if err := c.retrieve(ctx, uncached[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (c *AddressCache) insertIgnore(ctx context.Context, batch []string) error {
	placeholders := strings.TrimSuffix(strings.Repeat("(?),", len(batch)), ",")
	args := make([]any, len(batch))
	for i, a := range batch {
		args[i] = a
	}
	stmt := fmt.Sprintf("INSERT IGNORE INTO address_lookup_table (address) VALUES %s", placeholders)
	if _, err := c.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("store: insert addresses: %w", err)
	}
	return nil
}

func (c *AddressCache) retrieve(ctx context.Context, batch []string) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(batch)), ",")
	args := make([]any, len(batch))
	for i, a := range batch {
		args[i] = a
	}
	stmt := fmt.Sprintf("SELECT id, address FROM address_lookup_table WHERE address IN (%s)", placeholders)
	rows, err := c.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("store: retrieve addresses: %w", err)
	}
	defer rows.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	for rows.Next() {
		var id int64
		var address string
		if err := rows.Scan(&id, &address); err != nil {
			return fmt.Errorf("store: scan address row: %w", err)
		}
		c.ids[address] = id
	}
	return rows.Err()
}
