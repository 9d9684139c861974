package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/hfcand"
	"github.com/hupe1980/hfcand/blobstore"
	"github.com/hupe1980/hfcand/codec"
	"github.com/hupe1980/hfcand/model"
	"github.com/hupe1980/hfcand/recordio"
	"github.com/hupe1980/hfcand/resource"
)

// Stream kinds.
const (
	KindCandidates = "candidates"
	KindMatchesRec = "matches_rec"
	KindMatchesGen = "matches_gen"
	KindJets       = "jets"
)

var kinds = [...]string{KindCandidates, KindMatchesRec, KindMatchesGen, KindJets}

// ErrCommitted is returned by every call after Commit or Abort.
var ErrCommitted = errors.New("publish: run already finished")

// MatchRecord is one truth-matching result. Index is the candidate index
// within the event for rec matches and the particle index for gen matches.
type MatchRecord struct {
	CollisionID int `json:"collision_id"`
	Index       int `json:"index"`
	model.MatchResult
}

type stream struct {
	info StreamInfo
	blob blobstore.WritableBlob
	w    *recordio.Writer
}

func (s *stream) close() error {
	err := s.w.Close()
	if cerr := s.blob.Close(); err == nil {
		err = cerr
	}
	return err
}

// Publisher streams event results into a run and commits it. It implements
// hfcand.Sink.
type Publisher struct {
	store blobstore.Store
	opts  options

	mu      sync.Mutex
	streams map[string]*stream
	done    bool
}

// New starts a run on store.
func New(ctx context.Context, store blobstore.Store, optFns ...Option) (*Publisher, error) {
	o := options{codec: codec.Default}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}

	p := &Publisher{store: store, opts: o, streams: make(map[string]*stream, len(kinds))}
	for _, kind := range kinds {
		s, err := p.open(ctx, kind)
		if err != nil {
			_ = p.abort(ctx)
			return nil, err
		}
		p.streams[kind] = s
	}
	return p, nil
}

func (p *Publisher) open(ctx context.Context, kind string) (*stream, error) {
	name := path.Join(p.opts.runID, kind+".jsonl"+p.opts.compression.Ext())
	blob, err := p.store.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("publish: create %s: %w", name, err)
	}

	var dst io.Writer = blob
	if p.opts.rc != nil {
		dst = resource.NewRateLimitedWriter(ctx, blob, p.opts.rc)
	}
	w, err := recordio.NewWriter(dst, p.opts.compression, p.opts.codec)
	if err != nil {
		_ = blob.Close()
		return nil, err
	}
	return &stream{info: StreamInfo{Kind: kind, Path: name}, blob: blob, w: w}, nil
}

// RunID returns the identifier of the run.
func (p *Publisher) RunID() string { return p.opts.runID }

// Consume appends one event result to the streams.
func (p *Publisher) Consume(_ context.Context, res *hfcand.EventResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return ErrCommitted
	}

	for i := range res.Candidates {
		if err := p.streams[KindCandidates].w.Write(&res.Candidates[i]); err != nil {
			return err
		}
	}
	if err := p.writeMatches(KindMatchesRec, res.CollisionID, res.RecMatches); err != nil {
		return err
	}
	if err := p.writeMatches(KindMatchesGen, res.CollisionID, res.GenMatches); err != nil {
		return err
	}
	for i := range res.Jets {
		if err := p.streams[KindJets].w.Write(&res.Jets[i]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) writeMatches(kind string, collisionID int, matches []model.MatchResult) error {
	w := p.streams[kind].w
	for i, m := range matches {
		if err := w.Write(&MatchRecord{CollisionID: collisionID, Index: i, MatchResult: m}); err != nil {
			return err
		}
	}
	return nil
}

// Commit closes the streams, writes the manifest and moves CURRENT to it.
func (p *Publisher) Commit(ctx context.Context, stats hfcand.RunStats) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return ErrCommitted
	}
	p.done = true

	m := &Manifest{
		Version:     ManifestVersion,
		RunID:       p.opts.runID,
		CreatedAt:   time.Now().UTC(),
		Codec:       p.opts.codec.Name(),
		Compression: p.opts.compression.String(),
		Stats:       stats,
	}
	for _, kind := range kinds {
		s := p.streams[kind]
		s.info.Records = s.w.Count()
		if err := s.close(); err != nil {
			p.closeAll()
			return fmt.Errorf("publish: close %s: %w", s.info.Path, err)
		}
		delete(p.streams, kind)
		m.Streams = append(m.Streams, s.info)
	}
	return writeManifest(ctx, p.store, m)
}

// Abort discards the run. CURRENT is left untouched.
func (p *Publisher) Abort(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return ErrCommitted
	}
	p.done = true
	return p.abort(ctx)
}

func (p *Publisher) abort(ctx context.Context) error {
	p.closeAll()
	names, err := p.store.List(ctx, p.opts.runID+"/")
	if err != nil {
		return err
	}
	var errs []error
	for _, n := range names {
		if err := p.store.Delete(ctx, n); err != nil && !errors.Is(err, blobstore.ErrNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) closeAll() {
	for kind, s := range p.streams {
		_ = s.close()
		delete(p.streams, kind)
	}
}

var _ hfcand.Sink = (*Publisher)(nil)
