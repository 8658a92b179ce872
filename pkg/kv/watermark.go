package kv

import (
	"sync"
)

// PrefixWatermark namespaces marker keys by channel.
const PrefixWatermark = "watermark:"

// WatermarkStore loads and saves the last-seen message ID for a channel.
type WatermarkStore interface {
	Load(channelID string) (string, error)
	Save(channelID, messageID string) error
	Close() error
}

// MemoryStore keeps markers for the life of the process.
type MemoryStore struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemoryStore returns an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]string)}
}

func (s *MemoryStore) Load(channelID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[channelID], nil
}

func (s *MemoryStore) Save(channelID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[channelID] = messageID
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// BadgerStore persists markers in a KV so restarts resume where they left off.
type BadgerStore struct {
	kv *KV
}

// NewBadgerStore wraps an open KV. Closing the store closes the KV.
func NewBadgerStore(kv *KV) *BadgerStore {
	return &BadgerStore{kv: kv}
}

// OpenBadgerStore opens a KV with opt and wraps it.
func OpenBadgerStore(opt Options) (*BadgerStore, error) {
	kv, err := Open(opt)
	if err != nil {
		return nil, err
	}
	return NewBadgerStore(kv), nil
}

func (s *BadgerStore) Load(channelID string) (string, error) {
	v, _, err := s.kv.Get(PrefixWatermark + channelID)
	return v, err
}

func (s *BadgerStore) Save(channelID, messageID string) error {
	return s.kv.Set(PrefixWatermark+channelID, messageID)
}

func (s *BadgerStore) Close() error { return s.kv.Close() }

var (
	_ WatermarkStore = (*MemoryStore)(nil)
	_ WatermarkStore = (*BadgerStore)(nil)
)
