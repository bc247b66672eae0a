// Package settings owns the canonical desktop appearance/interaction
// settings: loading with defaults merged under partial data, saving
// with boolean coercion and a verified read-after-write, and
// publishing change notifications on the event bus.
package settings

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/opendesk/deskshell/internal/events"
	"github.com/opendesk/deskshell/internal/logging"
	"github.com/opendesk/deskshell/internal/models"
	"github.com/opendesk/deskshell/internal/storage"
)

// StorageKey is the key-value store key for the settings record.
const StorageKey = "webos-desktop-settings"

var (
	// ErrSaveFailed reports a storage-level write failure.
	ErrSaveFailed = errors.New("settings: save failed")

	// ErrVerifyMismatch reports that a saved boolean field did not
	// round-trip. The write call succeeded but the operation is
	// considered failed; the caller should surface it and retry, not
	// auto-correct.
	ErrVerifyMismatch = errors.New("settings: saved value failed verification")
)

// Store is the single writer of the persisted settings record.
type Store struct {
	storage storage.Store
	bus     *events.Bus
	logger  *logging.Logger

	mu        sync.Mutex
	ready     chan struct{}
	readyOnce sync.Once
}

// NewStore creates a settings store backed by the given key-value
// storage.
func NewStore(st storage.Store, bus *events.Bus, logger *logging.Logger) *Store {
	return &Store{
		storage: st,
		bus:     bus,
		logger:  logger,
		ready:   make(chan struct{}),
	}
}

// MarkReady signals collaborators waiting on Ready that the store is
// usable. Safe to call more than once.
func (s *Store) MarkReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// Ready is closed once the store has been wired up.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Load reads the persisted record. It never fails hard: missing or
// corrupt data logs a warning and yields defaults, and a partial
// stored record is merged over defaults so the result is always total.
func (s *Store) Load() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() models.Settings {
	data, ok, err := s.storage.Get(StorageKey)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read desktop settings, using defaults")
		return models.DefaultSettings()
	}
	if !ok {
		return models.DefaultSettings()
	}

	// Decode into an untyped map first so stringly-typed booleans and
	// out-of-range values left behind by older writers are coerced
	// rather than rejected.
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn().Err(err).Msg("Corrupt desktop settings record, using defaults")
		return models.DefaultSettings()
	}

	return models.SettingsFromMap(raw)
}

// Save coerces the boolean fields of the given record and persists it.
// Callers pass the full desired record; Save does not merge onto the
// currently persisted state. Returns false on any storage failure
// instead of an error, matching the soft-failure contract.
func (s *Store) Save(in map[string]any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(models.SettingsFromMap(in))
}

// SaveSettings persists an already-typed record through the same path
// as Save.
func (s *Store) SaveSettings(rec models.Settings) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(rec.Sanitize())
}

func (s *Store) saveLocked(rec models.Settings) bool {
	data, err := json.Marshal(rec)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode desktop settings")
		return false
	}
	if err := s.storage.Set(StorageKey, data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist desktop settings")
		return false
	}
	return true
}

// Apply coerces and persists the given record, re-reads it to confirm
// round-trip fidelity for the boolean fields, and publishes
// desktop-settings-updated on success. Persistence layers can silently
// mangle type coercion, so success is only declared after the
// defensive read agrees with the intended value.
func (s *Store) Apply(in map[string]any) (models.Settings, error) {
	return s.applyRecord(models.SettingsFromMap(in))
}

// ApplySettings is Apply for an already-typed record.
func (s *Store) ApplySettings(rec models.Settings) (models.Settings, error) {
	return s.applyRecord(rec.Sanitize())
}

// Reset restores defaults through the same save/verify/publish path as
// Apply.
func (s *Store) Reset() (models.Settings, error) {
	return s.applyRecord(models.DefaultSettings())
}

func (s *Store) applyRecord(intended models.Settings) (models.Settings, error) {
	s.mu.Lock()

	if !s.saveLocked(intended) {
		s.mu.Unlock()
		return intended, ErrSaveFailed
	}

	verified := s.loadLocked()
	if verified.ShowLabels != intended.ShowLabels ||
		verified.DoubleClickToOpen != intended.DoubleClickToOpen {
		s.mu.Unlock()
		s.logger.Error().
			Bool("intended_show_labels", intended.ShowLabels).
			Bool("verified_show_labels", verified.ShowLabels).
			Bool("intended_double_click", intended.DoubleClickToOpen).
			Bool("verified_double_click", verified.DoubleClickToOpen).
			Msg("Desktop settings failed read-after-write verification")
		return verified, ErrVerifyMismatch
	}

	s.mu.Unlock()

	s.logger.Info().
		Str("icon_size", string(verified.IconSize)).
		Str("icon_spacing", string(verified.IconSpacing)).
		Bool("show_labels", verified.ShowLabels).
		Bool("double_click", verified.DoubleClickToOpen).
		Str("layout_mode", string(verified.LayoutMode)).
		Int("columns", verified.ColumnsPerRow).
		Msg("Desktop settings applied")

	s.bus.PublishSettingsUpdated(verified)
	return verified, nil
}
