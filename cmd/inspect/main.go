package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/listenupapp/listenup-player/internal/domain"
)

func main() {
	dbPath := os.Getenv("PLAYER_DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dbPath = filepath.Join(home, "ListenUp", "player", "db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Player Database Inspection ===")
	fmt.Println()

	bookCount := 0
	remoteOnly := 0
	booksWithChapters := 0
	totalChapters := 0
	bookmarkCounts := map[string]int{}

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())

			switch {
			case strings.HasPrefix(key, "bmk:"):
				// bmk:{bookID}:{bookmarkID}
				parts := strings.SplitN(key, ":", 3)
				if len(parts) == 3 {
					bookmarkCounts[parts[1]]++
				}

			case strings.HasPrefix(key, "book:"):
				err := item.Value(func(val []byte) error {
					var book domain.Book
					if err := json.Unmarshal(val, &book); err != nil {
						return err
					}

					bookCount++
					if book.RemoteOnly {
						remoteOnly++
					}

					chapterCount := len(book.Chapters)
					totalChapters += chapterCount
					if chapterCount > 0 {
						booksWithChapters++
					}

					// Show the first few books in detail
					if bookCount <= 3 {
						fmt.Printf("Book: %s\n", book.Title)
						fmt.Printf("  ID: %s\n", book.ID)
						fmt.Printf("  Author: %s\n", book.Author)
						fmt.Printf("  Duration: %s\n", book.Duration.Round(time.Second))
						fmt.Printf("  Remote only: %v\n", book.RemoteOnly)
						fmt.Printf("  Chapters: %d\n", chapterCount)
						for i, ch := range book.Chapters {
							if i >= 5 {
								fmt.Printf("    ... and %d more chapters\n", chapterCount-5)
								break
							}
							fmt.Printf("    [%d] %s (%s)\n", i, ch.Title, ch.Start.Round(time.Second))
						}
						fmt.Println()
					}

					return nil
				})
				if err != nil {
					log.Printf("Error reading book %s: %v", key, err)
				}
			}
		}
		return nil
	})

	if err != nil {
		log.Fatalf("Error iterating database: %v", err)
	}

	totalBookmarks := 0
	for _, n := range bookmarkCounts {
		totalBookmarks += n
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total books: %d\n", bookCount)
	fmt.Printf("Remote-only books: %d\n", remoteOnly)
	fmt.Printf("Books with chapters: %d\n", booksWithChapters)
	fmt.Printf("Total chapters: %d\n", totalChapters)
	fmt.Printf("Total bookmarks: %d (across %d books)\n", totalBookmarks, len(bookmarkCounts))
	if bookCount > 0 {
		fmt.Printf("Average chapters per book: %.1f\n", float64(totalChapters)/float64(bookCount))
	}
}
