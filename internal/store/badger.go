package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/listenup-player/internal/domain"
)

// Key prefixes. Bookmarks are keyed under their book so a prefix scan
// yields exactly one book's set.
const (
	bookPrefix     = "book:"
	bookmarkPrefix = "bmk:"
)

// BadgerStore is the Badger-backed implementation of Store.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) the player database at the given path.
func Open(path string, logger *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	logger.Info("opened player database", "path", path)

	return &BadgerStore{
		db:     db,
		logger: logger,
	}, nil
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func bookKey(id string) []byte {
	return []byte(bookPrefix + id)
}

func bookmarkKey(bookID, bookmarkID string) []byte {
	return []byte(bookmarkPrefix + bookID + ":" + bookmarkID)
}

// SaveBook creates or replaces a book record.
func (s *BadgerStore) SaveBook(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(bookKey(book.ID), data)
	})
	if err != nil {
		return fmt.Errorf("save book %s: %w", book.ID, err)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *BadgerStore) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var book domain.Book
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(bookKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get key: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &book)
		})
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListBooks returns all book records.
func (s *BadgerStore) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var books []*domain.Book
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return fmt.Errorf("unmarshal book: %w", err)
				}
				books = append(books, &book)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

// DeleteBook removes a book record and its bookmarks.
func (s *BadgerStore) DeleteBook(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(bookKey(id)); err != nil {
			return fmt.Errorf("delete book: %w", err)
		}

		// Collect bookmark keys first; deleting while iterating is unsafe.
		prefix := []byte(bookmarkPrefix + id + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)

		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("delete bookmark: %w", err)
			}
		}
		return nil
	})
}

// CreateBookmark persists a new bookmark.
func (s *BadgerStore) CreateBookmark(ctx context.Context, bookmark *domain.Bookmark) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(bookmark)
	if err != nil {
		return fmt.Errorf("marshal bookmark: %w", err)
	}

	key := bookmarkKey(bookmark.BookID, bookmark.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check existing key: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	s.logger.Debug("created bookmark",
		"bookmark_id", bookmark.ID,
		"book_id", bookmark.BookID,
		"position", bookmark.Position,
	)
	return nil
}

// DeleteBookmark removes a bookmark.
func (s *BadgerStore) DeleteBookmark(ctx context.Context, bookID, bookmarkID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := bookmarkKey(bookID, bookmarkID)
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get key: %w", err)
		}
		return txn.Delete(key)
	})
}

// ListBookmarks returns all bookmarks for a book.
// Order follows key order (creation IDs), not position; callers sort.
func (s *BadgerStore) ListBookmarks(ctx context.Context, bookID string) ([]*domain.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var bookmarks []*domain.Bookmark
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(bookmarkPrefix + bookID + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var bm domain.Bookmark
				if err := json.Unmarshal(val, &bm); err != nil {
					return fmt.Errorf("unmarshal bookmark: %w", err)
				}
				bookmarks = append(bookmarks, &bm)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bookmarks, nil
}
