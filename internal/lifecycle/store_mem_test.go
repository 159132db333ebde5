package lifecycle

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	appdomain "github.com/workhub-app/workhub-backend/internal/applications/domain"
	projdomain "github.com/workhub-app/workhub-backend/internal/projects/domain"
	wsdomain "github.com/workhub-app/workhub-backend/internal/workspaces/domain"
)

var errInjected = errors.New("injected store failure")

// memStore is an in-memory TxStore. InTx serializes transactions and
// restores a snapshot when fn fails.
type memStore struct {
	txMu sync.Mutex

	mu         sync.Mutex
	nextID     int64
	projects   map[int64]projdomain.Project
	apps       map[int64]appdomain.Application
	workspaces []wsdomain.Workspace
	fail       map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		projects: map[int64]projdomain.Project{},
		apps:     map[int64]appdomain.Application{},
		fail:     map[string]error{},
	}
}

func (m *memStore) addProject(title, owner string, status projdomain.Status) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.projects[m.nextID] = projdomain.Project{
		ID: m.nextID, Title: title, OwnerID: owner, Status: status,
		Deadline: time.Now().Add(24 * time.Hour), CreatedAt: time.Now(),
	}
	return m.nextID
}

func (m *memStore) failOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[method] = err
}

func (m *memStore) check(method string) error {
	return m.fail[method]
}

func (m *memStore) project(id int64) projdomain.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.projects[id]
}

func (m *memStore) application(id int64) appdomain.Application {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.apps[id]
}

func (m *memStore) applicationsFor(projectID int64) []appdomain.Application {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []appdomain.Application
	for _, a := range m.apps {
		if a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) workspacesFor(projectID int64) []wsdomain.Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []wsdomain.Workspace
	for _, w := range m.workspaces {
		if w.ProjectID != nil && *w.ProjectID == projectID {
			out = append(out, w)
		}
	}
	return out
}

func (m *memStore) InTx(ctx context.Context, fn func(Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	projects := make(map[int64]projdomain.Project, len(m.projects))
	for k, v := range m.projects {
		projects[k] = v
	}
	apps := make(map[int64]appdomain.Application, len(m.apps))
	for k, v := range m.apps {
		apps[k] = v
	}
	workspaces := append([]wsdomain.Workspace(nil), m.workspaces...)
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.projects, m.apps, m.workspaces = projects, apps, workspaces
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) GetProject(_ context.Context, id int64, _ bool) (*projdomain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("GetProject"); err != nil {
		return nil, err
	}
	p, ok := m.projects[id]
	if !ok {
		return nil, projdomain.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) SetProjectStatus(_ context.Context, id int64, status projdomain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("SetProjectStatus"); err != nil {
		return err
	}
	p, ok := m.projects[id]
	if !ok {
		return projdomain.ErrNotFound
	}
	p.Status = status
	m.projects[id] = p
	return nil
}

func (m *memStore) InsertApplication(_ context.Context, seekerID string, projectID int64, at time.Time) (*appdomain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("InsertApplication"); err != nil {
		return nil, err
	}
	m.nextID++
	a := appdomain.Application{ID: m.nextID, Status: appdomain.StatusInReview, AppliedAt: at, SeekerID: seekerID, ProjectID: projectID}
	m.apps[a.ID] = a
	return &a, nil
}

func (m *memStore) GetApplication(_ context.Context, id int64, _ bool) (*appdomain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return nil, appdomain.ErrNotFound
	}
	return &a, nil
}

func (m *memStore) LatestApplication(_ context.Context, projectID int64) (*appdomain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *appdomain.Application
	for _, a := range m.apps {
		if a.ProjectID != projectID {
			continue
		}
		if latest == nil || a.AppliedAt.After(latest.AppliedAt) ||
			(a.AppliedAt.Equal(latest.AppliedAt) && a.ID > latest.ID) {
			a := a
			latest = &a
		}
	}
	if latest == nil {
		return nil, appdomain.ErrNotFound
	}
	return latest, nil
}

func (m *memStore) SetApplicationStatus(_ context.Context, id int64, status appdomain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("SetApplicationStatus"); err != nil {
		return err
	}
	a, ok := m.apps[id]
	if !ok {
		return appdomain.ErrNotFound
	}
	a.Status = status
	m.apps[id] = a
	return nil
}

func (m *memStore) HasApplied(_ context.Context, seekerID string, projectID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.apps {
		if a.SeekerID == seekerID && a.ProjectID == projectID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) InsertWorkspace(_ context.Context, w *wsdomain.Workspace) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("InsertWorkspace"); err != nil {
		return err
	}
	m.nextID++
	w.ID = m.nextID
	m.workspaces = append(m.workspaces, *w)
	return nil
}

func (m *memStore) HasProjectWorkspace(_ context.Context, projectID int64, seekerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.workspaces {
		if w.Type == wsdomain.TypeProject && w.ProjectID != nil && *w.ProjectID == projectID &&
			w.SeekerID != nil && *w.SeekerID == seekerID {
			return true, nil
		}
	}
	return false, nil
}

// recorder captures published events.
type recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
