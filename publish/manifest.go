package publish

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/hupe1980/hfcand"
	"github.com/hupe1980/hfcand/blobstore"
	"github.com/hupe1980/hfcand/codec"
)

const (
	// ManifestVersion is the manifest format version.
	ManifestVersion = 1

	// CurrentName is the pointer to the latest committed manifest.
	CurrentName = "CURRENT"

	manifestPrefix = "manifest-"
	manifestExt    = ".json"
)

// ErrNoRun is returned by Load when nothing has been committed.
var ErrNoRun = errors.New("publish: no committed run")

// Manifest describes one committed run.
type Manifest struct {
	Version     int             `json:"version"`
	RunID       string          `json:"run_id"`
	CreatedAt   time.Time       `json:"created_at"`
	Codec       string          `json:"codec"`
	Compression string          `json:"compression"`
	Streams     []StreamInfo    `json:"streams"`
	Stats       hfcand.RunStats `json:"stats"`
}

// StreamInfo locates one output stream.
type StreamInfo struct {
	Kind    string `json:"kind"`
	Path    string `json:"path"`
	Records int64  `json:"records"`
}

// Stream returns the stream of the given kind.
func (m *Manifest) Stream(kind string) (StreamInfo, bool) {
	for _, s := range m.Streams {
		if s.Kind == kind {
			return s, true
		}
	}
	return StreamInfo{}, false
}

// ManifestName returns the blob name of a run's manifest.
func ManifestName(runID string) string {
	return manifestPrefix + runID + manifestExt
}

func writeManifest(ctx context.Context, store blobstore.Store, m *Manifest) error {
	data, err := codec.Default.Marshal(m)
	if err != nil {
		return fmt.Errorf("publish: encode manifest: %w", err)
	}
	name := ManifestName(m.RunID)
	if err := store.Put(ctx, name, data); err != nil {
		return fmt.Errorf("publish: write %s: %w", name, err)
	}
	if err := store.Put(ctx, CurrentName, []byte(name)); err != nil {
		return fmt.Errorf("publish: update %s: %w", CurrentName, err)
	}
	return nil
}

// Load returns the manifest CURRENT points at.
func Load(ctx context.Context, store blobstore.Store) (*Manifest, error) {
	name, err := blobstore.ReadAll(ctx, store, CurrentName)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, ErrNoRun
		}
		return nil, err
	}
	return loadManifest(ctx, store, strings.TrimSpace(string(name)))
}

// LoadRun returns the manifest of a specific run, committed or superseded.
func LoadRun(ctx context.Context, store blobstore.Store, runID string) (*Manifest, error) {
	return loadManifest(ctx, store, ManifestName(runID))
}

func loadManifest(ctx context.Context, store blobstore.Store, name string) (*Manifest, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, fmt.Errorf("publish: open %s: %w", name, err)
	}
	m := &Manifest{}
	if err := codec.Default.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("publish: decode %s: %w", name, err)
	}
	if m.Version > ManifestVersion {
		return nil, fmt.Errorf("publish: %s has unsupported version %d", name, m.Version)
	}
	return m, nil
}

// ListRuns returns the IDs of every run with a manifest, sorted.
func ListRuns(ctx context.Context, store blobstore.Store) ([]string, error) {
	names, err := store.List(ctx, manifestPrefix)
	if err != nil {
		return nil, err
	}
	var runs []string
	for _, n := range names {
		base := path.Base(n)
		if !strings.HasPrefix(base, manifestPrefix) || path.Ext(base) != manifestExt {
			continue
		}
		runs = append(runs, strings.TrimSuffix(strings.TrimPrefix(base, manifestPrefix), manifestExt))
	}
	sort.Strings(runs)
	return runs, nil
}
