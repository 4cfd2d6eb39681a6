package mock

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/hirepipe/hirepipe/pkg/models"
	"github.com/hirepipe/hirepipe/pkg/repository"
)

// StateStore is an in-memory repository.StateRepo for tests and local
// experiments. Records are stored as deep copies so callers cannot mutate a
// persisted state through a retained pointer.
type StateStore struct {
	mu        sync.Mutex
	states    map[string]*models.WorkflowState
	snapshots map[string][]models.StateSnapshot
}

var _ repository.StateRepo = (*StateStore)(nil)

func NewStateStore() *StateStore {
	return &StateStore{
		states:    make(map[string]*models.WorkflowState),
		snapshots: make(map[string][]models.StateSnapshot),
	}
}

func (m *StateStore) GetState(_ context.Context, jobID string) (*models.WorkflowState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.states[jobID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.Clone(), nil
}

func (m *StateStore) PutState(_ context.Context, state *models.WorkflowState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := state.Clone()
	cp.Version++
	cp.Updated = time.Now().UTC().UnixMilli()
	m.states[state.JobID] = cp

	b, err := json.Marshal(cp)
	if err != nil {
		return err
	}
	m.snapshots[state.JobID] = append(m.snapshots[state.JobID], models.StateSnapshot{
		JobID:     cp.JobID,
		Stage:     cp.Stage,
		StateJSON: string(b),
		Version:   cp.Version,
		Created:   cp.Updated,
	})

	// reflect version bump back to the caller, like the sqlite store does
	state.Version = cp.Version
	state.Updated = cp.Updated
	return nil
}

func (m *StateStore) ListJobIDs(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.states))
	for id := range m.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *StateStore) ListSnapshots(_ context.Context, jobID string) ([]models.StateSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]models.StateSnapshot(nil), m.snapshots[jobID]...), nil
}

// SlotPool is an in-memory repository.SlotRepo.
type SlotPool struct {
	mu    sync.Mutex
	slots map[string][]models.PanelSlot
}

var _ repository.SlotRepo = (*SlotPool)(nil)

func NewSlotPool() *SlotPool {
	return &SlotPool{slots: make(map[string][]models.PanelSlot)}
}

func (p *SlotPool) AddSlots(_ context.Context, role string, slots []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, s := range slots {
		p.slots[role] = append(p.slots[role], models.PanelSlot{Role: role, Slot: s})
	}
	return nil
}

func (p *SlotPool) AvailableSlots(_ context.Context, role string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []string
	for _, s := range p.slots[role] {
		if s.BookedBy == "" {
			out = append(out, s.Slot)
		}
	}
	return out, nil
}

func (p *SlotPool) BookSlot(_ context.Context, role, slot, candidateID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.slots[role] {
		s := &p.slots[role][i]
		if s.Slot == slot && s.BookedBy == "" {
			s.BookedBy = candidateID
			return nil
		}
	}
	return repository.ErrNotFound
}

// UserStore is an in-memory repository.UserRepo. CreateErr, when set, is
// returned by CreateUser to simulate storage failures.
type UserStore struct {
	mu        sync.Mutex
	nextID    int64
	byEmail   map[string]*models.HRUser
	CreateErr error
}

var _ repository.UserRepo = (*UserStore)(nil)

func NewUserStore() *UserStore {
	return &UserStore{byEmail: make(map[string]*models.HRUser)}
}

func (u *UserStore) CreateUser(_ context.Context, user *models.HRUser) (int64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.CreateErr != nil {
		return 0, u.CreateErr
	}
	u.nextID++
	cp := *user
	cp.ID = u.nextID
	u.byEmail[user.Email] = &cp
	return cp.ID, nil
}

func (u *UserStore) GetUserByEmail(_ context.Context, email string) (*models.HRUser, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	user, ok := u.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *user
	return &cp, nil
}
