// Package kv provides the small key-value store that keeps the last-seen
// message marker, either in memory or persisted with BadgerDB.
package kv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/gliderlab/autochat/pkg/logging"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kv: store is closed")

// KV is a thin wrapper over a badger database
type KV struct {
	db       *badger.DB
	closed   bool
	closedMu sync.RWMutex
}

// Options for KV store
type Options struct {
	Dir           string // Data directory
	SyncWrites    bool   // Sync writes to disk
	Compression   bool   // Enable compression
	MemoryMode    bool   // In-memory only (no persistence)
	ValueLogMaxMB int64  // Max value log size in MB
	Logger        *zap.Logger
}

// DefaultOptions returns default options
func DefaultOptions(dir string) Options {
	return Options{
		Dir:           dir,
		SyncWrites:    true, // one small write per processed message
		Compression:   true,
		ValueLogMaxMB: 16,
	}
}

// Open opens a KV store
func Open(opt Options) (*KV, error) {
	if !opt.MemoryMode && opt.Dir == "" {
		opt.Dir = filepath.Join(os.TempDir(), "autochat-state")
	}

	dir := opt.Dir
	if opt.MemoryMode {
		dir = ""
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	opts.SyncWrites = opt.SyncWrites
	opts.InMemory = opt.MemoryMode

	if opt.Compression && !opt.MemoryMode {
		opts.Compression = options.ZSTD
	}
	if !opt.MemoryMode && opt.ValueLogMaxMB > 0 {
		opts.ValueLogFileSize = opt.ValueLogMaxMB << 20
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger failed: %w", err)
	}

	logging.OrNop(opt.Logger).Info("state store opened",
		zap.String("dir", dir), zap.Bool("memory", opt.MemoryMode))
	return &KV{db: db}, nil
}

// Close closes the KV store
func (k *KV) Close() error {
	k.closedMu.Lock()
	defer k.closedMu.Unlock()

	if k.closed {
		return nil
	}
	k.closed = true
	return k.db.Close()
}

// Set sets a key-value pair
func (k *KV) Set(key, value string) error {
	k.closedMu.RLock()
	defer k.closedMu.RUnlock()

	if k.closed {
		return ErrClosed
	}
	return k.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
}

// Get gets a value by key. A missing key yields ("", false, nil).
func (k *KV) Get(key string) (string, bool, error) {
	k.closedMu.RLock()
	defer k.closedMu.RUnlock()

	if k.closed {
		return "", false, ErrClosed
	}

	var result string
	found := false
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		result, found = string(val), true
		return nil
	})
	return result, found, err
}
