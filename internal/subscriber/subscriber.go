// Package subscriber provides the PPPoE subscriber lookup used when alerting.
//
// The store uses raw SQL with pgx, mirroring the access-list database the
// subscriber management system maintains. Only the name/comment projection is
// read here; account management itself lives elsewhere.
package subscriber

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dixzzzzz/axelinkapps-sub000/pkg/types"
)

// Lookup lists subscriber records for serial-to-name resolution.
type Lookup interface {
	ListSubscriberRecords(ctx context.Context) ([]types.SubscriberRecord, error)
}

// Store reads subscriber records from Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a store with the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// NewStoreFromURL creates a store by connecting to the given database URL.
func NewStoreFromURL(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping tests database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ListSubscriberRecords returns every subscriber's name and comment.
func (s *Store) ListSubscriberRecords(ctx context.Context) ([]types.SubscriberRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, COALESCE(comment, '')
		FROM subscribers
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying subscribers: %w", err)
	}
	defer rows.Close()

	var records []types.SubscriberRecord
	for rows.Next() {
		var r types.SubscriberRecord
		if err := rows.Scan(&r.Name, &r.Comment); err != nil {
			return nil, fmt.Errorf("scanning subscriber: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// StaticLookup serves a fixed record list. Used in tests and in deployments
// without a subscriber database.
type StaticLookup struct {
	Records []types.SubscriberRecord
}

// ListSubscriberRecords returns the fixed list.
func (s *StaticLookup) ListSubscriberRecords(context.Context) ([]types.SubscriberRecord, error) {
	return s.Records, nil
}
