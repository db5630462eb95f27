// Package pipeline turns remote or cached artifacts into a complete payload.
//
// The pipeline moves through Empty -> Loading -> (PartialReady) -> Ready. At most
// one load task runs at a time and every caller asking for data joins it. A stale
// cache hit is served immediately while the same task refreshes from the network.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/fundwallet/fundwallet-backend/internal/apperrors"
	"github.com/fundwallet/fundwallet-backend/internal/cache"
	"github.com/fundwallet/fundwallet-backend/internal/codec"
	"github.com/fundwallet/fundwallet-backend/internal/fetcher"
	"github.com/fundwallet/fundwallet-backend/internal/metrics"
	"github.com/fundwallet/fundwallet-backend/internal/model"
	"github.com/fundwallet/fundwallet-backend/internal/progress"
)

// DefaultCacheKey is the persistent cache key for the decoded payload.
const DefaultCacheKey = "fund-data"

// ErrClosed is returned once Close has been called.
var ErrClosed = errors.New("pipeline closed")

// Options configures a Pipeline. Fetcher, Codec and Source are required.
type Options struct {
	Fetcher fetcher.Fetcher
	Codec   *codec.Codec
	Source  SourceResolver

	// Store defaults to an in-memory store.
	Store    cache.Store
	Policy   cache.Policy
	CacheKey string

	// Chunks > 1 selects progressive loading of Chunks artifacts.
	Chunks int
	// Concurrency bounds parallel chunk downloads. Defaults to 3.
	Concurrency int

	Progress progress.Publisher
	Metrics  *metrics.Collectors
	Logger   zerolog.Logger
	Now      func() time.Time
}

// Pipeline owns the in-memory payload and the single in-flight load.
type Pipeline struct {
	fetcher     fetcher.Fetcher
	codec       *codec.Codec
	source      SourceResolver
	store       cache.Store
	policy      cache.Policy
	cacheKey    string
	chunks      int
	concurrency int
	progress    progress.Publisher
	metrics     *metrics.Collectors
	logger      zerolog.Logger
	now         func() time.Time

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// cacheMu orders persistent writes against Reset.
	cacheMu sync.Mutex

	mu         sync.Mutex
	state      State
	payload    *model.Payload
	generation uint64
	src        string
	updatedAt  time.Time
	lastErr    error
	task       *Task
	closed     bool
}

// New creates a Pipeline in the Empty state. Nothing is loaded until data is requested.
func New(opts Options) (*Pipeline, error) {
	if opts.Fetcher == nil || opts.Codec == nil || opts.Source == nil {
		return nil, errors.New("pipeline requires a fetcher, a codec and a source")
	}
	if opts.Store == nil {
		opts.Store = cache.NewMemoryStore()
	}
	if opts.CacheKey == "" {
		opts.CacheKey = DefaultCacheKey
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 3
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		fetcher:     opts.Fetcher,
		codec:       opts.Codec,
		source:      opts.Source,
		store:       opts.Store,
		policy:      opts.Policy,
		cacheKey:    opts.CacheKey,
		chunks:      opts.Chunks,
		concurrency: opts.Concurrency,
		progress:    opts.Progress,
		metrics:     opts.Metrics,
		logger:      opts.Logger.With().Str("component", "pipeline").Logger(),
		now:         opts.Now,
		baseCtx:     ctx,
		cancel:      cancel,
	}
	p.metrics.SetPipelineState(int(StateEmpty))
	return p, nil
}

// Start begins a load, or joins the one in flight, and returns once data is at
// least partially available.
//
// Returns:
//   - State: StatePartialReady or StateReady
//   - error: ErrDataUnavailable wrapping the load failure, or ctx.Err()
func (p *Pipeline) Start(ctx context.Context) (State, error) {
	for {
		p.mu.Lock()
		if p.state == StateReady || p.state == StatePartialReady {
			s := p.state
			p.mu.Unlock()
			return s, nil
		}
		t, err := p.currentOrStartLocked()
		p.mu.Unlock()
		if err != nil {
			return StateEmpty, err
		}

		select {
		case <-t.partial:
		case <-ctx.Done():
			return p.State(), ctx.Err()
		}
		if err := t.Err(); err != nil {
			p.mu.Lock()
			s, detached := p.state, t.detached
			p.mu.Unlock()
			switch {
			case s == StateReady:
				return s, nil
			case detached:
				// Superseded by Reset; join the next load.
				continue
			}
			return StateEmpty, fmt.Errorf("%w: %w", apperrors.ErrDataUnavailable, err)
		}
	}
}

// EnsureComplete blocks until a complete payload is available.
//
// A Ready pipeline returns immediately even while a background refresh runs.
// A PartialReady pipeline waits for the in-flight task to assemble every chunk.
func (p *Pipeline) EnsureComplete(ctx context.Context) (Snapshot, error) {
	for {
		p.mu.Lock()
		if p.state == StateReady {
			snap := Snapshot{Payload: p.payload, Generation: p.generation}
			p.mu.Unlock()
			return snap, nil
		}
		t, err := p.currentOrStartLocked()
		p.mu.Unlock()
		if err != nil {
			return Snapshot{}, err
		}

		// A stale cache hit marks the task partial and leaves the pipeline Ready
		// while the network refresh keeps running.
		select {
		case <-t.partial:
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		}
		if snap, ok := p.readySnapshot(); ok {
			return snap, nil
		}

		select {
		case <-t.done:
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		}
		if snap, ok := p.readySnapshot(); ok {
			return snap, nil
		}
		p.mu.Lock()
		detached := t.detached
		p.mu.Unlock()
		if t.err != nil && !detached {
			return Snapshot{}, fmt.Errorf("%w: %w", apperrors.ErrDataUnavailable, t.err)
		}
	}
}

func (p *Pipeline) readySnapshot() (Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateReady {
		return Snapshot{}, false
	}
	return Snapshot{Payload: p.payload, Generation: p.generation}, true
}

// Refresh starts a network load that bypasses the persistent cache, or returns
// the task already in flight.
func (p *Pipeline) Refresh(_ context.Context) (*Task, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	if p.task != nil {
		return p.task, nil
	}
	return p.startLocked(false), nil
}

// Reset drops the in-memory payload, cancels and detaches any in-flight task and
// removes the persistent entry. It returns once the detached task has stopped,
// so the next data request never overlaps a stale load.
func (p *Pipeline) Reset(ctx context.Context) error {
	p.cacheMu.Lock()

	p.mu.Lock()
	old := p.task
	if old != nil {
		old.detached = true
		old.cancel()
		p.task = nil
	}
	p.payload = nil
	p.generation++
	p.src = ""
	p.updatedAt = time.Time{}
	p.lastErr = nil
	p.setStateLocked(StateEmpty)
	p.mu.Unlock()

	err := p.store.Invalidate(ctx, p.cacheKey)
	// A detached task may be blocked on cacheMu in writeCache.
	p.cacheMu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to invalidate cached payload: %w", err)
	}

	if old != nil {
		select {
		case <-old.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.logger.Info().Msg("pipeline reset")
	return nil
}

// Close stops in-flight work and waits for background goroutines to exit.
func (p *Pipeline) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cancel()
	p.wg.Wait()
}

// State returns the current state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Generation returns the current payload generation.
func (p *Pipeline) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

// Status returns a copy of the pipeline status.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		State:      p.state,
		Source:     p.src,
		Generation: p.generation,
		UpdatedAt:  p.updatedAt,
		LastError:  p.lastErr,
		Loading:    p.task != nil,
	}
}

func (p *Pipeline) currentOrStartLocked() (*Task, error) {
	if p.task != nil {
		return p.task, nil
	}
	if p.closed {
		return nil, ErrClosed
	}
	return p.startLocked(true), nil
}

func (p *Pipeline) startLocked(useCache bool) *Task {
	t := newTask(p.baseCtx)
	p.task = t
	if p.state == StateEmpty {
		p.setStateLocked(StateLoading)
	}

	p.wg.Add(1)
	go p.run(t, useCache)
	return t
}

func (p *Pipeline) setStateLocked(s State) {
	p.state = s
	p.metrics.SetPipelineState(int(s))
}

func (p *Pipeline) run(t *Task, useCache bool) {
	defer p.wg.Done()
	defer t.cancel()
	ctx := t.ctx
	log := p.logger.With().Str("task", t.ID).Logger()

	if useCache {
		if snap, status, ok := p.loadFromCache(ctx, t); ok {
			if status == cache.StatusFresh {
				p.finish(t, snap)
				return
			}
			log.Info().Msg("cached payload is stale, refreshing in background")
		}
	}
	if err := ctx.Err(); err != nil {
		// Detached or closed while reading the cache.
		p.fail(t, err)
		return
	}

	payload, raw, err := p.loadFromNetwork(ctx, t)
	if err != nil {
		p.fail(t, err)
		return
	}

	snap, ok := p.commit(t, payload, SourceNetwork, p.now())
	p.metrics.PipelineLoad(SourceNetwork, nil)
	if !ok {
		log.Debug().Msg("discarding payload of a detached task")
		t.finish(Snapshot{}, nil)
		return
	}
	p.writeCache(ctx, snap.Generation, raw)
	p.publish(progress.PhaseLoaded, 100, "")
	log.Info().Uint64("generation", snap.Generation).Msg("payload loaded from network")
	p.finish(t, snap)
}

// loadFromCache commits a cached payload when the policy allows it.
func (p *Pipeline) loadFromCache(ctx context.Context, t *Task) (Snapshot, cache.Status, bool) {
	entry, err := p.store.Get(ctx, p.cacheKey)
	if err != nil {
		p.metrics.CacheLookup("error")
		p.logger.Warn().Err(err).Msg("cache read failed, treating as miss")
		return Snapshot{}, cache.StatusMiss, false
	}

	status := p.policy.Evaluate(entry, p.now())
	p.metrics.CacheLookup(status.String())
	if status == cache.StatusMiss {
		return Snapshot{}, status, false
	}

	var payload model.Payload
	if err := json.Unmarshal(entry.Data, &payload); err != nil {
		p.logger.Warn().Err(err).Msg("cached payload is corrupted, discarding")
		if err := p.store.Invalidate(ctx, p.cacheKey); err != nil {
			p.logger.Warn().Err(err).Msg("failed to drop corrupted cache entry")
		}
		return Snapshot{}, cache.StatusMiss, false
	}

	snap, ok := p.commit(t, &payload, SourceCache, entry.Timestamp)
	if !ok {
		return Snapshot{}, status, false
	}
	p.metrics.PipelineLoad(SourceCache, nil)
	p.publish(progress.PhaseCache, 100, "")
	t.markPartial()
	return snap, status, true
}

func (p *Pipeline) loadFromNetwork(ctx context.Context, t *Task) (*model.Payload, []byte, error) {
	url, err := p.source.DataURL(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve data url: %w", err)
	}

	var raw []byte
	if p.chunks > 1 {
		raw, err = p.loadChunked(ctx, t, url)
	} else {
		raw, err = p.loadSingle(ctx, url)
	}
	if err != nil {
		return nil, nil, err
	}

	p.publish(progress.PhaseParse, 0, "")
	var payload model.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrParse, err)
	}
	return &payload, raw, nil
}

func (p *Pipeline) loadSingle(ctx context.Context, url string) ([]byte, error) {
	data, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	p.publish(progress.PhaseDecrypt, 0, "")
	plain, err := p.codec.Open(data)
	if err != nil {
		return nil, err
	}
	p.publish(progress.PhaseDecompress, 0, "")
	return codec.Assemble([][]byte{plain})
}

// loadChunked fetches chunk 1, reports partial readiness, then fetches the
// remaining chunks concurrently into index slots so assembly order never
// depends on completion order.
func (p *Pipeline) loadChunked(ctx context.Context, t *Task, url string) ([]byte, error) {
	plains := make([][]byte, p.chunks)

	first, err := p.fetchChunk(ctx, url, 1)
	if err != nil {
		return nil, err
	}
	plains[0] = first
	p.markPartial(t)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := 2; i <= p.chunks; i++ {
		g.Go(func() error {
			plain, err := p.fetchChunk(gctx, url, i)
			if err != nil {
				return err
			}
			plains[i-1] = plain
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.publish(progress.PhaseDecompress, 0, "")
	return codec.Assemble(plains)
}

func (p *Pipeline) fetchChunk(ctx context.Context, url string, i int) ([]byte, error) {
	data, err := p.fetcher.Fetch(ctx, codec.ChunkName(url, i))
	if err != nil {
		return nil, err
	}
	p.publish(progress.PhaseDecrypt, 0, fmt.Sprintf("chunk %d/%d", i, p.chunks))
	plain, err := p.codec.Open(data)
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", i, err)
	}
	return plain, nil
}

func (p *Pipeline) markPartial(t *Task) {
	p.mu.Lock()
	if p.task == t && p.state == StateLoading {
		p.setStateLocked(StatePartialReady)
	}
	p.mu.Unlock()
	t.markPartial()
}

// commit installs payload if t is still the current task.
func (p *Pipeline) commit(t *Task, payload *model.Payload, source string, updatedAt time.Time) (Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.task != t {
		return Snapshot{}, false
	}
	p.payload = payload
	p.generation++
	p.src = source
	p.updatedAt = updatedAt
	p.lastErr = nil
	p.setStateLocked(StateReady)
	return Snapshot{Payload: payload, Generation: p.generation}, true
}

func (p *Pipeline) writeCache(ctx context.Context, generation uint64, raw []byte) {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()

	if p.Generation() != generation {
		return
	}
	entry := cache.Entry{Data: raw, Timestamp: p.now(), Version: p.policy.Version}
	if err := p.store.Put(ctx, p.cacheKey, entry); err != nil {
		p.logger.Warn().Err(err).Msg("failed to persist payload")
	}
}

func (p *Pipeline) finish(t *Task, snap Snapshot) {
	p.mu.Lock()
	if p.task == t {
		p.task = nil
	}
	p.mu.Unlock()
	t.finish(snap, nil)
}

// fail records err. A pipeline that already holds a payload keeps serving it.
func (p *Pipeline) fail(t *Task, err error) {
	p.mu.Lock()
	current := p.task == t
	hasPayload := p.payload != nil
	if current {
		p.task = nil
		p.lastErr = err
		if hasPayload {
			p.setStateLocked(StateReady)
		} else {
			p.setStateLocked(StateEmpty)
		}
	}
	p.mu.Unlock()

	p.metrics.PipelineLoad(SourceNetwork, err)
	switch {
	case !current:
		p.logger.Debug().Err(err).Str("task", t.ID).Msg("detached task failed")
	case hasPayload:
		p.logger.Warn().Err(err).Str("task", t.ID).Msg("background refresh failed, serving last good payload")
	default:
		p.logger.Error().Err(err).Str("task", t.ID).Msg("load failed")
		p.publish(progress.PhaseFailed, 0, err.Error())
	}
	t.finish(Snapshot{}, err)
}

func (p *Pipeline) publish(phase string, percent int, detail string) {
	if p.progress != nil {
		p.progress.Publish(phase, percent, detail)
	}
}
