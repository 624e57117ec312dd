// Package meta loads declarative definitions (YAML) from any location the
// abstract file storage layer can reach, expanding ${env.KEY} expressions
// before decoding.
package meta

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Service resolves and decodes metadata documents.
type Service struct {
	fs      afs.Service
	baseURL string
}

// New creates a metadata service; relative URLs are resolved against baseURL.
func New(fs afs.Service, baseURL string) *Service {
	return &Service{fs: fs, baseURL: baseURL}
}

// Resolve turns a possibly relative URL into an absolute location.
func (s *Service) Resolve(URL string) string {
	if s.baseURL == "" || strings.Contains(URL, "://") || strings.HasPrefix(URL, "/") {
		return URL
	}
	return strings.TrimSuffix(s.baseURL, "/") + "/" + URL
}

// Load reads the document at URL, expands environment expressions and decodes
// YAML into target.
func (s *Service) Load(ctx context.Context, URL string, target interface{}) error {
	location := s.Resolve(URL)
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", location, err)
	}
	expanded := expandEnvExpr(string(data))
	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", location, err)
	}
	return nil
}
