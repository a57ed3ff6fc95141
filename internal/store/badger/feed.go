// Package badger implements store.FeedStore on an embedded Badger database.
//
// Each feed is one JSON document at key "feed:{ownerID}". Mutations are
// read-modify-write inside a Badger transaction and are retried on
// transaction conflicts.
package badger

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"time"

	bdb "github.com/dgraph-io/badger/v4"

	"github.com/circleapp/circle-server/internal/domain"
	"github.com/circleapp/circle-server/internal/store"
)

const (
	feedPrefix      = "feed:"
	maxTxnRetries   = 5
	feedInitialSize = 16
)

// FeedStore keeps materialized feeds in Badger.
type FeedStore struct {
	db     *bdb.DB
	logger *slog.Logger
}

var _ store.FeedStore = (*FeedStore)(nil)

// Options configures Open.
type Options struct {
	// Path is the Badger directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	Logger   *slog.Logger
}

// Open opens (or creates) the feed database.
func Open(opts Options) (*FeedStore, error) {
	var bopts bdb.Options
	if opts.InMemory {
		bopts = bdb.DefaultOptions("").WithInMemory(true)
	} else {
		// Feeds are rebuilt on demand, so writes skip fsync.
		bopts = bdb.DefaultOptions(opts.Path)
		bopts.SyncWrites = false
		bopts.CompactL0OnClose = true
	}
	bopts.Logger = nil

	db, err := bdb.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger feed store: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Info("feed store opened", "path", opts.Path, "in_memory", opts.InMemory)

	return &FeedStore{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *FeedStore) Close() error {
	return s.db.Close()
}

func feedKey(ownerID string) []byte {
	key := make([]byte, 0, len(feedPrefix)+len(ownerID))
	key = append(key, feedPrefix...)
	return append(key, ownerID...)
}

func readFeed(txn *bdb.Txn, ownerID string) (*domain.Feed, error) {
	item, err := txn.Get(feedKey(ownerID))
	if errors.Is(err, bdb.ErrKeyNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var feed domain.Feed
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &feed)
	}); err != nil {
		return nil, fmt.Errorf("decode feed %s: %w", ownerID, err)
	}
	if feed.Items == nil {
		feed.Items = []string{}
	}
	return &feed, nil
}

func writeFeed(txn *bdb.Txn, feed *domain.Feed) error {
	data, err := json.Marshal(feed)
	if err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}
	return txn.Set(feedKey(feed.OwnerID), data)
}

func emptyFeed(ownerID string) *domain.Feed {
	return &domain.Feed{OwnerID: ownerID, Items: make([]string, 0, feedInitialSize), UpdatedAt: time.Now()}
}

// update runs fn in a read-write transaction, retrying on conflicts.
func (s *FeedStore) update(ctx context.Context, fn func(txn *bdb.Txn) error) error {
	var err error
	for range maxTxnRetries {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = s.db.Update(fn)
		if !errors.Is(err, bdb.ErrConflict) {
			return err
		}
		s.logger.Debug("feed transaction conflict, retrying")
	}
	return err
}

// CreateFeed creates an empty feed. Returns store.ErrAlreadyExists when one exists.
func (s *FeedStore) CreateFeed(ctx context.Context, ownerID string) error {
	return s.update(ctx, func(txn *bdb.Txn) error {
		_, err := readFeed(txn, ownerID)
		if err == nil {
			return store.ErrAlreadyExists
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return writeFeed(txn, emptyFeed(ownerID))
	})
}

// ClearFeed empties the feed, creating it when absent.
func (s *FeedStore) ClearFeed(ctx context.Context, ownerID string) error {
	return s.update(ctx, func(txn *bdb.Txn) error {
		return writeFeed(txn, emptyFeed(ownerID))
	})
}

// AddToFeed appends postID. Returns store.ErrNotFound when the feed is absent.
func (s *FeedStore) AddToFeed(ctx context.Context, ownerID, postID string) error {
	return s.update(ctx, func(txn *bdb.Txn) error {
		feed, err := readFeed(txn, ownerID)
		if err != nil {
			return err
		}
		feed.Items = append(feed.Items, postID)
		feed.UpdatedAt = time.Now()
		return writeFeed(txn, feed)
	})
}

// AddManyToFeed appends postIDs in order with a single read-modify-write.
// Returns store.ErrNotFound when the feed is absent.
func (s *FeedStore) AddManyToFeed(ctx context.Context, ownerID string, postIDs []string) error {
	return s.update(ctx, func(txn *bdb.Txn) error {
		feed, err := readFeed(txn, ownerID)
		if err != nil {
			return err
		}
		if len(postIDs) == 0 {
			return nil
		}
		feed.Items = append(feed.Items, postIDs...)
		feed.UpdatedAt = time.Now()
		return writeFeed(txn, feed)
	})
}

// GetFeed returns store.ErrNotFound when the user has no feed.
func (s *FeedStore) GetFeed(ctx context.Context, ownerID string) (*domain.Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var feed *domain.Feed
	err := s.db.View(func(txn *bdb.Txn) error {
		var err error
		feed, err = readFeed(txn, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return feed, nil
}

// DeleteFeed removes the feed if present.
func (s *FeedStore) DeleteFeed(ctx context.Context, ownerID string) error {
	return s.update(ctx, func(txn *bdb.Txn) error {
		return txn.Delete(feedKey(ownerID))
	})
}

// Count returns the number of stored feeds.
func (s *FeedStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := s.db.View(func(txn *bdb.Txn) error {
		opts := bdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(feedPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
