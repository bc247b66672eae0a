package shell

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/opendesk/deskshell/internal/logging"
	"github.com/opendesk/deskshell/internal/storage"
)

// HiddenAppsKey is the key-value store key for the hidden-apps set.
// The set is persisted (as a JSON array of app IDs) so hide choices
// survive a restart.
const HiddenAppsKey = "webos-desktop-hidden"

// hiddenSet tracks app IDs the user removed from the desktop. The
// shell is its single writer.
type hiddenSet struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func newHiddenSet() *hiddenSet {
	return &hiddenSet{ids: make(map[string]struct{})}
}

// load replaces the set with the persisted IDs. Missing or corrupt
// data degrades to an empty set.
func (h *hiddenSet) load(st storage.Store, logger *logging.Logger) {
	if st == nil {
		return
	}
	data, ok, err := st.Get(HiddenAppsKey)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read hidden apps, starting empty")
		return
	}
	if !ok {
		return
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		logger.Warn().Err(err).Msg("Corrupt hidden apps record, starting empty")
		return
	}

	h.mu.Lock()
	h.ids = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			h.ids[id] = struct{}{}
		}
	}
	h.mu.Unlock()
}

// save persists the current set. Failures are logged and otherwise
// ignored: the in-memory set stays authoritative for the session.
func (h *hiddenSet) save(st storage.Store, logger *logging.Logger) {
	if st == nil {
		return
	}
	data, err := json.Marshal(h.list())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode hidden apps")
		return
	}
	if err := st.Set(HiddenAppsKey, data); err != nil {
		logger.Error().Err(err).Msg("Failed to persist hidden apps")
	}
}

func (h *hiddenSet) add(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.ids[id]; exists {
		return false
	}
	h.ids[id] = struct{}{}
	return true
}

func (h *hiddenSet) remove(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.ids[id]; !exists {
		return false
	}
	delete(h.ids, id)
	return true
}

func (h *hiddenSet) contains(id string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.ids[id]
	return exists
}

func (h *hiddenSet) list() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.ids))
	for id := range h.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
