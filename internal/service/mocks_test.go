package service

import (
	"context"
	"sort"
	"sync"

	"github.com/SaicharanT-tech/eventra/internal/domain"
	"github.com/SaicharanT-tech/eventra/internal/repository"
)

// memStore is an in-memory stand-in for Postgres that keeps the same
// compare-and-set and all-or-nothing reservation semantics.
type memStore struct {
	mu        sync.Mutex
	events    map[string]*domain.Event
	venues    map[string]*domain.Venue
	resources map[string]*domain.Resource
	outbox    []*domain.OutboxMessage
	// byIDCalls counts batched venue and resource lookups
	byIDCalls int
}

func newMemStore() *memStore {
	return &memStore{
		events:    map[string]*domain.Event{},
		venues:    map[string]*domain.Venue{},
		resources: map[string]*domain.Resource{},
	}
}

func (m *memStore) addVenue(id, name string, capacity int) {
	m.venues[id] = &domain.Venue{ID: id, Name: name, Capacity: capacity}
}

func (m *memStore) addResource(id, name string, qty int) {
	m.resources[id] = &domain.Resource{ID: id, Name: name, Type: domain.ResourceEquipment, QuantityAvailable: qty}
}

func (m *memStore) quantity(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resources[id].QuantityAvailable
}

func cloneEvent(e *domain.Event) *domain.Event {
	c := *e
	c.Resources = append([]domain.ResourceLine(nil), e.Resources...)
	c.ApprovalHistory = append([]domain.ApprovalEntry(nil), e.ApprovalHistory...)
	return &c
}

type memEventRepo struct{ *memStore }

func (r memEventRepo) Create(_ context.Context, e *domain.Event, msg *domain.OutboxMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[e.ID] = cloneEvent(e)
	if msg != nil {
		r.outbox = append(r.outbox, msg)
	}
	return nil
}

func (r memEventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return cloneEvent(e), nil
}

func (r memEventRepo) List(_ context.Context, f repository.EventFilter) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Event{}
	for _, e := range r.events {
		if f.CoordinatorID == "" || e.CoordinatorID == f.CoordinatorID {
			out = append(out, cloneEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memEventRepo) ListOccupying(_ context.Context, venueID, date, excludeID string) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Event{}
	for _, e := range r.events {
		if e.VenueID == venueID && e.Date == date && e.ID != excludeID && e.Status.IsOccupying() {
			out = append(out, cloneEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (r memEventRepo) Transition(_ context.Context, req *repository.TransitionRequest) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[req.EventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	if e.Status != req.From {
		return nil, domain.NewError(domain.ErrInvalidTransition, "Event status changed from %s to %s before this update", req.From, e.Status)
	}

	for _, l := range req.Reserve {
		res, ok := r.resources[l.ResourceID]
		if !ok {
			return nil, domain.NewError(domain.ErrNotFound, "Resource %s not found", l.ResourceID)
		}
		if res.QuantityAvailable < l.Quantity {
			return nil, domain.NewError(domain.ErrResourceUnavailable, "Not enough %s available", res.Name)
		}
	}
	for _, l := range req.Reserve {
		r.resources[l.ResourceID].QuantityAvailable -= l.Quantity
	}
	for _, l := range req.Release {
		if res, ok := r.resources[l.ResourceID]; ok {
			res.QuantityAvailable += l.Quantity
		}
	}

	e.Status = req.To
	if req.Entry != nil {
		e.ApprovalHistory = append(e.ApprovalHistory, *req.Entry)
	}
	if req.Outbox != nil {
		r.outbox = append(r.outbox, req.Outbox)
	}
	return cloneEvent(e), nil
}

type memVenueRepo struct{ *memStore }

func (r memVenueRepo) Create(_ context.Context, v *domain.Venue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.venues {
		if existing.Name == v.Name {
			return domain.NewError(domain.ErrDuplicateName, "Venue %q already exists", v.Name)
		}
	}
	if v.ID == "" {
		v.ID = v.Name
	}
	c := *v
	r.venues[v.ID] = &c
	return nil
}

func (r memVenueRepo) GetByID(_ context.Context, id string) (*domain.Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.venues[id]
	if !ok {
		return nil, domain.ErrVenueNotFound
	}
	c := *v
	return &c, nil
}

func (r memVenueRepo) List(_ context.Context) ([]*domain.Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Venue{}
	for _, v := range r.venues {
		c := *v
		out = append(out, &c)
	}
	return out, nil
}

func (r memVenueRepo) ListByIDs(_ context.Context, ids []string) ([]*domain.Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byIDCalls++
	out := []*domain.Venue{}
	for _, id := range ids {
		if v, ok := r.venues[id]; ok {
			c := *v
			out = append(out, &c)
		}
	}
	return out, nil
}

type memResourceRepo struct{ *memStore }

func (r memResourceRepo) Create(_ context.Context, res *domain.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.resources {
		if existing.Name == res.Name {
			return domain.NewError(domain.ErrDuplicateName, "Resource %q already exists", res.Name)
		}
	}
	if res.ID == "" {
		res.ID = res.Name
	}
	c := *res
	r.resources[res.ID] = &c
	return nil
}

func (r memResourceRepo) GetByID(_ context.Context, id string) (*domain.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.resources[id]
	if !ok {
		return nil, domain.ErrResourceNotFound
	}
	c := *res
	return &c, nil
}

func (r memResourceRepo) List(_ context.Context) ([]*domain.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Resource{}
	for _, res := range r.resources {
		c := *res
		out = append(out, &c)
	}
	return out, nil
}

func (r memResourceRepo) ListByIDs(_ context.Context, ids []string) ([]*domain.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byIDCalls++
	out := []*domain.Resource{}
	for _, id := range ids {
		if res, ok := r.resources[id]; ok {
			c := *res
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r memResourceRepo) Update(_ context.Context, res *domain.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.resources[res.ID]; !ok {
		return domain.ErrResourceNotFound
	}
	c := *res
	r.resources[res.ID] = &c
	return nil
}

// MockEventRepository is a func-field mock for failure injection
type MockEventRepository struct {
	CreateFunc        func(ctx context.Context, e *domain.Event, msg *domain.OutboxMessage) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Event, error)
	ListFunc          func(ctx context.Context, f repository.EventFilter) ([]*domain.Event, error)
	ListOccupyingFunc func(ctx context.Context, venueID, date, excludeID string) ([]*domain.Event, error)
	TransitionFunc    func(ctx context.Context, req *repository.TransitionRequest) (*domain.Event, error)
}

func (m *MockEventRepository) Create(ctx context.Context, e *domain.Event, msg *domain.OutboxMessage) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, e, msg)
	}
	return nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) List(ctx context.Context, f repository.EventFilter) ([]*domain.Event, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f)
	}
	return []*domain.Event{}, nil
}

func (m *MockEventRepository) ListOccupying(ctx context.Context, venueID, date, excludeID string) ([]*domain.Event, error) {
	if m.ListOccupyingFunc != nil {
		return m.ListOccupyingFunc(ctx, venueID, date, excludeID)
	}
	return []*domain.Event{}, nil
}

func (m *MockEventRepository) Transition(ctx context.Context, req *repository.TransitionRequest) (*domain.Event, error) {
	if m.TransitionFunc != nil {
		return m.TransitionFunc(ctx, req)
	}
	return nil, nil
}

var (
	_ repository.EventRepository    = memEventRepo{}
	_ repository.VenueRepository    = memVenueRepo{}
	_ repository.ResourceRepository = memResourceRepo{}
	_ repository.EventRepository    = (*MockEventRepository)(nil)
)
