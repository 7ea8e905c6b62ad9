package jobs

import (
	"errors"
	"sort"
	"sync"
)

// ErrJobNotFound is returned for unknown or already finished job ids.
var ErrJobNotFound = errors.New("job not found")

// Manager tracks running jobs. Finished jobs are dropped automatically.
type Manager struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{jobs: make(map[string]*Job)}
}

// Track registers job until it finishes.
func (m *Manager) Track(job *Job) {
	m.mu.Lock()
	m.jobs[job.ID()] = job
	m.mu.Unlock()

	go func() {
		<-job.Done()
		m.mu.Lock()
		delete(m.jobs, job.ID())
		m.mu.Unlock()
	}()
}

// Get returns a running job by id.
func (m *Manager) Get(id string) (*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// Active returns snapshots of running jobs, oldest first.
func (m *Manager) Active() []HandleInfo {
	m.mu.RLock()
	infos := make([]HandleInfo, 0, len(m.jobs))
	for _, job := range m.jobs {
		infos = append(infos, job.Handle().Info())
	}
	m.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].StartedAt.Before(infos[j].StartedAt)
	})
	return infos
}

// IsRunning reports whether any job is active.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.jobs) > 0
}

// Cancel stops one running job.
func (m *Manager) Cancel(id string) error {
	job, err := m.Get(id)
	if err != nil {
		return err
	}
	job.Cancel()
	return nil
}

// CancelAll stops every running job.
func (m *Manager) CancelAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, job := range m.jobs {
		job.Cancel()
	}
}
