package Editor

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"RiderBross/Models"
)

// Manager ties sessions to the loader, the registry and the submitter.
type Manager struct {
	registry  Registry
	loader    *Loader
	services  ServiceReader
	submitter *Submitter

	locks sync.Map
}

func NewManager(registry Registry, loader *Loader, services ServiceReader, submitter *Submitter) *Manager {
	return &Manager{
		registry:  registry,
		loader:    loader,
		services:  services,
		submitter: submitter,
	}
}

func (m *Manager) lock(id string) func() {
	v, _ := m.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// get loads a session, dropping the lock of one that expired in the registry.
func (m *Manager) get(ctx context.Context, id string) (*Session, error) {
	s, err := m.registry.Get(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		m.locks.Delete(id)
	}
	return s, err
}

// Open starts a session, blank or on an existing service. A reference data
// failure does not fail the open; it is kept on the session as LoadError.
func (m *Manager) Open(ctx context.Context, serviceID *uint) (*Session, error) {
	refs, loadErr := m.loader.Load(ctx)
	if loadErr != nil {
		log.Error().Err(loadErr).Msg("reference data load failed")
	}

	var (
		s   *Session
		err error
	)
	if serviceID == nil {
		s = NewSession(refs, loadErr)
	} else {
		service, err := m.services.GetService(ctx, *serviceID)
		if err != nil {
			return nil, err
		}
		if s, err = SessionFromService(service, refs, loadErr); err != nil {
			return nil, err
		}
	}

	if err = m.registry.Put(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	return m.get(ctx, id)
}

// Update applies fn to the session and stores the result. Concurrent updates
// of one session are serialised. Nothing is stored when fn fails.
func (m *Manager) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	unlock := m.lock(id)
	defer unlock()

	s, err := m.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	if err := m.registry.Put(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Submit stores the session as a service and closes it on success. On failure
// the session stays open so the user can fix and retry.
func (m *Manager) Submit(ctx context.Context, id string, user *Models.User) (uint, error) {
	unlock := m.lock(id)
	defer unlock()

	s, err := m.get(ctx, id)
	if err != nil {
		return 0, err
	}

	var serviceID uint
	if s.ServiceID == nil {
		serviceID, err = m.submitter.Create(ctx, user, s.Input())
	} else {
		serviceID = *s.ServiceID
		err = m.submitter.Update(ctx, user, int64(serviceID), s.Input())
	}
	if err != nil {
		return 0, err
	}

	if err := m.registry.Delete(ctx, id); err != nil {
		log.Warn().Err(err).Str("session", id).Msg("could not close editor session")
	}
	m.locks.Delete(id)
	return serviceID, nil
}

func (m *Manager) Discard(ctx context.Context, id string) error {
	m.locks.Delete(id)
	return m.registry.Delete(ctx, id)
}
