// Package main prints a summary of the materialized feeds in a Circle data
// directory. The server must be stopped; badger is opened read-only.
package main

import (
	"encoding/json/v2"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/circleapp/circle-server/internal/config"
	"github.com/circleapp/circle-server/internal/domain"
)

var showTop = flag.Int("top", 5, "Number of largest feeds to list")

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Circle/data")
	}
	feedPath := config.DataConfig{Path: dataPath}.FeedPath()

	opts := badger.DefaultOptions(feedPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open feed store: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Feed Inspection ===")
	fmt.Printf("Path: %s\n\n", feedPath)

	var (
		feeds      []domain.Feed
		emptyFeeds int
		totalItems int
	)

	prefix := []byte("feed:")
	err = db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(val []byte) error {
				var feed domain.Feed
				if err := json.Unmarshal(val, &feed); err != nil {
					return err
				}
				feeds = append(feeds, feed)
				totalItems += len(feed.Items)
				if len(feed.Items) == 0 {
					emptyFeeds++
				}
				return nil
			})
			if err != nil {
				log.Printf("Error reading %s: %v", key, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error iterating feed store: %v", err)
	}

	sort.Slice(feeds, func(i, j int) bool { return len(feeds[i].Items) > len(feeds[j].Items) })

	for i, feed := range feeds {
		if i >= *showTop {
			break
		}
		fmt.Printf("Feed: %s\n", feed.OwnerID)
		fmt.Printf("  Posts: %d\n", len(feed.Items))
		fmt.Printf("  Updated: %s\n", feed.UpdatedAt.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total feeds: %d\n", len(feeds))
	fmt.Printf("Empty feeds: %d\n", emptyFeeds)
	fmt.Printf("Total feed entries: %d\n", totalItems)
	if len(feeds) > 0 {
		fmt.Printf("Average posts per feed: %.1f\n", float64(totalItems)/float64(len(feeds)))
	}
}
