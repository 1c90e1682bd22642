package storage

import (
	"context"
	"errors"
	"slices"
	"sync"
)

var errNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]RunRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]RunRecord)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	if run.ID == "" {
		return errors.New("run id is required")
	}
	s.runs[run.ID] = cloneRun(run)
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return RunRecord{}, false, errNotInitialized
	}
	run, ok := s.runs[id]
	if !ok {
		return RunRecord{}, false, nil
	}
	return cloneRun(run), true, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, errNotInitialized
	}
	infos := make([]RunInfo, 0, len(s.runs))
	for _, run := range s.runs {
		infos = append(infos, run.Info())
	}
	sortInfos(infos)
	return infos, nil
}

func (s *MemoryStore) DeleteRun(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	delete(s.runs, id)
	return nil
}

func cloneRun(r RunRecord) RunRecord {
	r.ThetaHistory = slices.Clone(r.ThetaHistory)
	r.MSE = slices.Clone(r.MSE)
	r.MSEFirst = slices.Clone(r.MSEFirst)
	return r
}
