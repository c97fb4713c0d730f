// Package device persists named mount-model parameter sets to disk, so an
// operator can fit a model once and reload it across runs without refitting.
package device

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/mountmodel"
)

// NamedParamSet is a mountmodel.ParamSet tagged with an operator-chosen ID
// and name, so multiple sites/mounts can each keep their own fitted model.
type NamedParamSet struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	IsDefault bool                `json:"is_default"`
	ParamSet  mountmodel.ParamSet `json:"param_set"`
}

// ParamStore manages named model parameter sets, persisting them to a JSON
// file on every mutation.
type ParamStore struct {
	mu          sync.RWMutex
	sets        map[string]*NamedParamSet
	activeID    string
	storagePath string
}

// NewParamStore creates a ParamStore backed by storagePath/paramsets.json.
// An empty storagePath disables persistence (in-memory only, for tests).
func NewParamStore(storagePath string) *ParamStore {
	ps := &ParamStore{
		sets:        make(map[string]*NamedParamSet),
		storagePath: storagePath,
	}
	ps.load()
	return ps
}

// Get returns a parameter set by ID.
func (ps *ParamStore) Get(id string) (*NamedParamSet, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	set, ok := ps.sets[id]
	if !ok {
		return nil, fmt.Errorf("param set not found: %s", id)
	}
	return set, nil
}

// Active returns the currently active parameter set.
func (ps *ParamStore) Active() (*NamedParamSet, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if ps.activeID == "" {
		for _, s := range ps.sets {
			if s.IsDefault {
				return s, nil
			}
		}
		return nil, fmt.Errorf("no active param set")
	}
	set, ok := ps.sets[ps.activeID]
	if !ok {
		return nil, fmt.Errorf("active param set not found: %s", ps.activeID)
	}
	return set, nil
}

// SetActive makes id the active parameter set.
func (ps *ParamStore) SetActive(id string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, ok := ps.sets[id]; !ok {
		return fmt.Errorf("param set not found: %s", id)
	}
	ps.activeID = id
	return nil
}

// List returns all stored parameter sets.
func (ps *ParamStore) List() []*NamedParamSet {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	out := make([]*NamedParamSet, 0, len(ps.sets))
	for _, s := range ps.sets {
		out = append(out, s)
	}
	return out
}

// Put creates or replaces a parameter set by ID.
func (ps *ParamStore) Put(set *NamedParamSet) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if set.ID == "" {
		return fmt.Errorf("param set ID is required")
	}
	if err := set.ParamSet.Params.Validate(); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	if set.ParamSet.GeneratedAt.IsZero() {
		set.ParamSet.GeneratedAt = ps.now()
	}

	ps.sets[set.ID] = set
	return ps.save()
}

// Delete removes a parameter set by ID.
func (ps *ParamStore) Delete(id string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, ok := ps.sets[id]; !ok {
		return fmt.Errorf("param set not found: %s", id)
	}
	delete(ps.sets, id)
	if ps.activeID == id {
		ps.activeID = ""
	}
	return ps.save()
}

func (ps *ParamStore) now() time.Time { return time.Now() }

func (ps *ParamStore) load() {
	if ps.storagePath == "" {
		return
	}
	data, err := os.ReadFile(filepath.Join(ps.storagePath, "paramsets.json"))
	if err != nil {
		return
	}
	var sets []*NamedParamSet
	if err := json.Unmarshal(data, &sets); err != nil {
		return
	}
	for _, s := range sets {
		ps.sets[s.ID] = s
		if s.IsDefault {
			ps.activeID = s.ID
		}
	}
}

func (ps *ParamStore) save() error {
	if ps.storagePath == "" {
		return nil
	}
	if err := os.MkdirAll(ps.storagePath, 0755); err != nil {
		return err
	}
	sets := make([]*NamedParamSet, 0, len(ps.sets))
	for _, s := range ps.sets {
		sets = append(sets, s)
	}
	data, err := json.MarshalIndent(sets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(ps.storagePath, "paramsets.json"), data, 0644)
}
