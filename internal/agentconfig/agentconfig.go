// Package agentconfig loads the static AgentConfig document (the
// AgentsConfigPath option from internal/config) into genai/agent.Agent
// values and serves them through the teacher's Loader/Finder seams.
package agentconfig

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/viant/carecore/genai/agent"
)

type document struct {
	Facilitator string        `yaml:"facilitator"`
	Agents      []agent.Agent `yaml:"agents"`
}

// Store holds the loaded agent roster in memory and implements both
// agent.Loader (by-name lookup used at startup wiring) and agent.Finder
// (by-id lookup used wherever an agent reference must be resolved
// dynamically, e.g. a handoff token or a tool-bound delegate).
type Store struct {
	mu          sync.RWMutex
	byName      map[string]*agent.Agent
	facilitator string
}

// Load reads and parses the YAML document at url via fs.
func Load(ctx context.Context, fs afs.Service, url string) (*Store, error) {
	if fs == nil {
		fs = afs.New()
	}
	data, err := fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("agentconfig: download %s: %w", url, err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("agentconfig: unmarshal %s: %w", url, err)
	}

	store := &Store{byName: map[string]*agent.Agent{}, facilitator: doc.Facilitator}
	for i := range doc.Agents {
		cfg := doc.Agents[i]
		store.Add(cfg.Name, &cfg)
	}
	if store.facilitator == "" {
		for name, cfg := range store.byName {
			if cfg.Facilitator {
				store.facilitator = name
				break
			}
		}
	}
	return store, nil
}

// Add stores an Agent so it becomes available for subsequent queries.
func (s *Store) Add(name string, a *agent.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName[name] = a
}

// Load retrieves an Agent by name.
func (s *Store) Load(ctx context.Context, name string) (*agent.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("agentconfig: agent %q not found", name)
	}
	return a, nil
}

// Find resolves an Agent by id (its name), satisfying agent.Finder.
func (s *Store) Find(ctx context.Context, id string) (*agent.Agent, error) {
	return s.Load(ctx, id)
}

// All returns every loaded Agent, in no particular order.
func (s *Store) All() []agent.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]agent.Agent, 0, len(s.byName))
	for _, a := range s.byName {
		out = append(out, *a)
	}
	return out
}

// FacilitatorName returns the configured facilitator's name.
func (s *Store) FacilitatorName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.facilitator
}

var _ agent.Loader = (*Store)(nil)
var _ agent.Finder = (*Store)(nil)
