// Package registry tracks registered applications and opens app
// instances. Descriptors are registered once and read-only afterwards.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opendesk/deskshell/internal/events"
	"github.com/opendesk/deskshell/internal/logging"
	"github.com/opendesk/deskshell/internal/models"
)

var (
	// ErrAppNotFound is returned when opening or querying an unknown
	// app ID.
	ErrAppNotFound = errors.New("registry: app not found")

	// ErrDuplicateApp is returned when registering an ID twice.
	ErrDuplicateApp = errors.New("registry: app already registered")

	// ErrMissingID is returned for descriptors without an ID.
	ErrMissingID = errors.New("registry: descriptor has no ID")
)

// Registry holds the application catalog.
type Registry struct {
	mu    sync.RWMutex
	apps  map[string]models.AppDescriptor
	order []string

	bus    *events.Bus
	logger *logging.Logger

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates an empty registry.
func New(bus *events.Bus, logger *logging.Logger) *Registry {
	return &Registry{
		apps:   make(map[string]models.AppDescriptor),
		bus:    bus,
		logger: logger,
		ready:  make(chan struct{}),
	}
}

// MarkReady signals that the catalog is populated. Safe to call more
// than once.
func (r *Registry) MarkReady() {
	r.readyOnce.Do(func() { close(r.ready) })
}

// Ready is closed once MarkReady has been called.
func (r *Registry) Ready() <-chan struct{} {
	return r.ready
}

// Register adds an app descriptor to the catalog and publishes
// app-registered.
func (r *Registry) Register(desc models.AppDescriptor) error {
	if desc.ID == "" {
		return ErrMissingID
	}

	r.mu.Lock()
	if _, exists := r.apps[desc.ID]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateApp, desc.ID)
	}
	r.apps[desc.ID] = desc
	r.order = append(r.order, desc.ID)
	r.mu.Unlock()

	r.logger.Debug().Str("app_id", desc.ID).Str("name", desc.Name).Msg("App registered")
	r.bus.PublishApp(events.EventAppRegistered, desc.ID)
	return nil
}

// Get returns the descriptor for an app ID.
func (r *Registry) Get(id string) (models.AppDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.apps[id]
	if !ok {
		return models.AppDescriptor{}, fmt.Errorf("%w: %s", ErrAppNotFound, id)
	}
	return desc, nil
}

// GetAllApps returns every registered descriptor in registration
// order.
func (r *Registry) GetAllApps() []models.AppDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.AppDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.apps[id])
	}
	return out
}

// DesktopApps returns descriptors eligible for the desktop grid,
// sorted by name for stable rendering.
func (r *Registry) DesktopApps() []models.AppDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.AppDescriptor, 0, len(r.order))
	for _, id := range r.order {
		desc := r.apps[id]
		if desc.Hidden || desc.NoDesktop {
			continue
		}
		out = append(out, desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// OpenApp launches the app and returns a running instance, or nil and
// an error when the app is unknown or its handler fails.
func (r *Registry) OpenApp(id string) (*models.AppInstance, error) {
	desc, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	if desc.Handler != nil {
		if err := desc.Handler(); err != nil {
			r.logger.Error().Err(err).Str("app_id", id).Msg("App launch handler failed")
			return nil, fmt.Errorf("failed to launch %s: %w", id, err)
		}
	}

	inst := &models.AppInstance{
		InstanceID: uuid.NewString(),
		AppID:      id,
		StartedAt:  time.Now(),
	}

	r.logger.Info().Str("app_id", id).Str("instance_id", inst.InstanceID).Msg("App opened")
	return inst, nil
}
