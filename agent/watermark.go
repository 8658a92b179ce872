package agent

import (
	"fmt"
	"sync"

	"github.com/gliderlab/autochat/gateway/channels/types"
	"github.com/gliderlab/autochat/pkg/kv"
)

// Watermark is the ID of the newest message already handled in a channel.
// It only moves forward; IDs are compared numerically.
type Watermark struct {
	mu        sync.Mutex
	id        string
	channelID string
	store     kv.WatermarkStore
}

// NewWatermark loads the channel's marker from store. A nil store keeps the
// marker in memory only.
func NewWatermark(store kv.WatermarkStore, channelID string) (*Watermark, error) {
	w := &Watermark{channelID: channelID, store: store}
	if store == nil {
		return w, nil
	}
	id, err := store.Load(channelID)
	if err != nil {
		return nil, fmt.Errorf("load watermark: %w", err)
	}
	if id != "" && types.ValidID(id) {
		w.id = id
	}
	return w, nil
}

// Value returns the current marker, or "" when nothing has been handled yet.
func (w *Watermark) Value() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.id
}

// IsNew reports whether id is past the marker. Every valid ID is new while
// the marker is unset; an ID that is not a snowflake is never new.
func (w *Watermark) IsNew(id string) bool {
	if !types.ValidID(id) {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.id == "" || types.CompareIDs(id, w.id) > 0
}

// Advance moves the marker to id if id is newer. Invalid IDs are ignored.
// The in-memory marker moves even when persisting fails; the store error is
// returned for logging.
func (w *Watermark) Advance(id string) (bool, error) {
	if !types.ValidID(id) {
		return false, nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.id != "" && types.CompareIDs(id, w.id) <= 0 {
		return false, nil
	}
	w.id = id
	if w.store == nil {
		return true, nil
	}
	if err := w.store.Save(w.channelID, id); err != nil {
		return true, fmt.Errorf("save watermark: %w", err)
	}
	return true, nil
}
