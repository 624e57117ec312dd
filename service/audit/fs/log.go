// Package fs provides a durable audit log built on viant/afs. Every entry is
// written as an immutable, zero-padded sequence-numbered object so lexical
// listing order equals append order and existing objects are never rewritten.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"github.com/gatekit/gatekit/internal/clock"
	"github.com/gatekit/gatekit/service/audit"
	"github.com/gatekit/gatekit/service/dao"
)

// Config holds the log location.
type Config struct {
	BaseURL string
}

// Log is an afs-backed append-only audit log.
type Log struct {
	fs      afs.Service
	baseURL string
	mu      sync.Mutex
	nextSeq uint64
}

// New opens (or creates) a log rooted at config.BaseURL and recovers the next
// sequence number from the existing objects.
func New(fsService afs.Service, config Config) (*Log, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	l := &Log{fs: fsService, baseURL: config.BaseURL, nextSeq: 1}
	ctx := context.Background()
	if exists, _ := fsService.Exists(ctx, config.BaseURL); !exists {
		if err := fsService.Create(ctx, config.BaseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create audit log location %s: %w", config.BaseURL, err)
		}
		return l, nil
	}
	objects, err := fsService.List(ctx, config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log %s: %w", config.BaseURL, err)
	}
	for _, obj := range objects {
		if obj.IsDir() || !strings.HasSuffix(obj.Name(), ".json") {
			continue
		}
		var seq uint64
		if _, err := fmt.Sscanf(obj.Name(), "%d.json", &seq); err == nil && seq >= l.nextSeq {
			l.nextSeq = seq + 1
		}
	}
	return l, nil
}

// Append assigns the next sequence number and persists the entry as a new
// object. Entries are write-once; nothing here overwrites.
func (l *Log) Append(ctx context.Context, entry *audit.Entry) error {
	if entry == nil {
		return dao.ErrNilEntity
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.Seq = l.nextSeq
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = clock.Now()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	location := url.Join(l.baseURL, fmt.Sprintf("%012d.json", entry.Seq))
	if err := l.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewBuffer(data)); err != nil {
		return fmt.Errorf("failed to append audit entry %d: %w", entry.Seq, err)
	}
	l.nextSeq++
	return nil
}

// Entries loads matching entries in sequence order.
func (l *Log) Entries(ctx context.Context, proposalID string) ([]*audit.Entry, error) {
	objects, err := l.fs.List(ctx, l.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log %s: %w", l.baseURL, err)
	}
	names := make([]string, 0, len(objects))
	byName := make(map[string]string, len(objects))
	for _, obj := range objects {
		if obj.IsDir() || !strings.HasSuffix(obj.Name(), ".json") {
			continue
		}
		names = append(names, obj.Name())
		byName[obj.Name()] = obj.URL()
	}
	sort.Strings(names)
	out := make([]*audit.Entry, 0, len(names))
	for _, name := range names {
		data, err := l.fs.DownloadWithURL(ctx, byName[name])
		if err != nil {
			return nil, fmt.Errorf("failed to read audit entry %s: %w", name, err)
		}
		entry := &audit.Entry{}
		if err := json.Unmarshal(data, entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit entry %s: %w", name, err)
		}
		if proposalID == "" || entry.ProposalID == proposalID {
			out = append(out, entry)
		}
	}
	return out, nil
}

var _ audit.Log = (*Log)(nil)
