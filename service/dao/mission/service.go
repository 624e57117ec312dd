// Package mission loads, validates and caches mission definitions.
package mission

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/gatekit/gatekit/model/mission"
	"github.com/gatekit/gatekit/model/state"
	"github.com/gatekit/gatekit/service/dao/mission/parameters"
	"github.com/gatekit/gatekit/service/meta"
)

// Service is the mission definition DAO.
type Service struct {
	metaService *meta.Service
	mux         sync.RWMutex
	missions    map[string]*mission.Mission
}

// New creates a mission DAO backed by the supplied metadata loader.
func New(metaService *meta.Service) *Service {
	return &Service{
		metaService: metaService,
		missions:    map[string]*mission.Mission{},
	}
}

// Load returns the mission at URL, parsing and caching it on first use. A
// URL without extension defaults to .yaml.
func (s *Service) Load(ctx context.Context, URL string) (*mission.Mission, error) {
	if filepath.Ext(URL) == "" {
		URL += ".yaml"
	}
	s.mux.RLock()
	cached, ok := s.missions[URL]
	s.mux.RUnlock()
	if ok {
		return cached, nil
	}
	return s.Refresh(ctx, URL)
}

// Refresh re-reads the mission at URL, bypassing the cache.
func (s *Service) Refresh(ctx context.Context, URL string) (*mission.Mission, error) {
	aMission := &mission.Mission{}
	if err := s.metaService.Load(ctx, URL, aMission); err != nil {
		return nil, fmt.Errorf("failed to load mission from %s: %w", URL, err)
	}
	aMission.Source = &mission.Source{URL: URL}
	if aMission.Name == "" {
		aMission.Name = nameFromURL(URL)
	}
	if err := s.normalize(aMission); err != nil {
		return nil, err
	}
	if err := s.Upsert(aMission, URL); err != nil {
		return nil, err
	}
	return aMission, nil
}

// DecodeYAML parses a mission definition held in memory; the result is not
// cached.
func (s *Service) DecodeYAML(encoded []byte) (*mission.Mission, error) {
	aMission := &mission.Mission{}
	if err := yaml.Unmarshal(encoded, aMission); err != nil {
		return nil, fmt.Errorf("failed to decode mission: %w", err)
	}
	if err := s.normalize(aMission); err != nil {
		return nil, err
	}
	if issues := aMission.Validate(); len(issues) > 0 {
		return nil, issues[0]
	}
	return aMission, nil
}

// Upsert validates and caches a mission under the given key (its URL, or its
// name when the key is empty).
func (s *Service) Upsert(aMission *mission.Mission, key string) error {
	if issues := aMission.Validate(); len(issues) > 0 {
		return issues[0]
	}
	if key == "" {
		key = aMission.Name
	}
	s.mux.Lock()
	s.missions[key] = aMission
	s.mux.Unlock()
	return nil
}

// normalize resolves annotated parameter names such as
// timeout[int](run/vars) into typed, located parameters.
func (s *Service) normalize(aMission *mission.Mission) error {
	if err := normalizeParameters(aMission.Init); err != nil {
		return fmt.Errorf("mission %s init: %w", aMission.Name, err)
	}
	for _, cp := range aMission.Checkpoints {
		if err := normalizeParameters(cp.Init); err != nil {
			return fmt.Errorf("checkpoint %s init: %w", cp.Name, err)
		}
		if err := normalizeParameters(cp.Export); err != nil {
			return fmt.Errorf("checkpoint %s export: %w", cp.Name, err)
		}
	}
	return nil
}

func normalizeParameters(params state.Parameters) error {
	for _, param := range params {
		if !strings.Contains(param.Name, "[") {
			continue
		}
		parsed, err := parameters.Parse([]byte(param.Name))
		if err != nil {
			return fmt.Errorf("invalid parameter %q: %w", param.Name, err)
		}
		param.Name = parsed.Name
		param.DataType = parsed.DataType
		param.Location = parsed.Location
	}
	return nil
}

func nameFromURL(URL string) string {
	base := filepath.Base(URL)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
