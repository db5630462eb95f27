package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/fundwallet/fundwallet-backend/internal/apperrors"
	"github.com/fundwallet/fundwallet-backend/internal/filter"
	"github.com/fundwallet/fundwallet-backend/internal/metrics"
	"github.com/fundwallet/fundwallet-backend/internal/model"
	"github.com/fundwallet/fundwallet-backend/internal/pipeline"
	"github.com/fundwallet/fundwallet-backend/internal/progress"
	"github.com/fundwallet/fundwallet-backend/internal/records"
	"github.com/fundwallet/fundwallet-backend/internal/search"
)

// Loader supplies complete payload snapshots. *pipeline.Pipeline implements it.
type Loader interface {
	EnsureComplete(ctx context.Context) (pipeline.Snapshot, error)
	Reset(ctx context.Context) error
	Generation() uint64
}

// FundService is the fund processor. It owns the memoised record set and everything
// derived from it, all tied to one payload generation.
type FundService struct {
	loader   Loader
	progress progress.Publisher
	metrics  *metrics.Collectors
	logger   zerolog.Logger

	mu    sync.Mutex
	memo  *fundMemo
	group singleflight.Group
}

// fundMemo holds the records built from one payload generation. Options, ranges and
// the search index are computed on first use.
type fundMemo struct {
	generation uint64
	funds      []model.FundData
	report     model.BuildReport
	bySlug     map[string]int

	optionsOnce sync.Once
	options     model.FilterOptions
	optionsErr  error

	rangesOnce sync.Once
	ranges     model.RangeValues
	rangesErr  error

	indexOnce sync.Once
	indexMu   sync.RWMutex
	index     *search.Index
	indexErr  error
	closed    bool
}

var errMemoClosed = errors.New("memo closed")

// NewFundService creates a FundService reading payloads from loader.
func NewFundService(loader Loader, pub progress.Publisher, m *metrics.Collectors, logger zerolog.Logger) *FundService {
	return &FundService{
		loader:   loader,
		progress: pub,
		metrics:  m,
		logger:   logger.With().Str("component", "fund_service").Logger(),
	}
}

// Funds returns the complete record set, building it on first use.
// The returned slice is shared between callers and must not be modified.
//
// Returns:
//   - []model.FundData: every fund present in both datasets
//   - error: ErrDataUnavailable when no payload could be loaded
func (s *FundService) Funds(ctx context.Context) ([]model.FundData, error) {
	m, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return m.funds, nil
}

// Report returns the skip and join counts of the current build.
func (s *FundService) Report(ctx context.Context) (model.BuildReport, error) {
	m, err := s.current(ctx)
	if err != nil {
		return model.BuildReport{}, err
	}
	return m.report, nil
}

// FilterOptions returns the distinct values per filterable dimension.
func (s *FundService) FilterOptions(ctx context.Context) (model.FilterOptions, error) {
	m, err := s.current(ctx)
	if err != nil {
		return model.FilterOptions{}, err
	}
	m.optionsOnce.Do(func() {
		m.options, m.optionsErr = records.FilterOptions(m.funds)
	})
	return m.options, m.optionsErr
}

// RangeValues returns the observed bounds per numeric dimension.
func (s *FundService) RangeValues(ctx context.Context) (model.RangeValues, error) {
	m, err := s.current(ctx)
	if err != nil {
		return model.RangeValues{}, err
	}
	m.rangesOnce.Do(func() {
		m.ranges, m.rangesErr = records.RangeValues(m.funds)
	})
	return m.ranges, m.rangesErr
}

// Query applies filters and returns one page of the result.
//
// Parameters:
//   - filters: predicates and sort key; callers validate them beforehand
//   - offset, limit: page window; a non-positive limit returns everything after offset
//
// Returns a FundPage whose Total counts every match, not just the page.
func (s *FundService) Query(ctx context.Context, filters model.FundFilters, offset, limit int) (model.FundPage, error) {
	m, err := s.current(ctx)
	if err != nil {
		return model.FundPage{}, err
	}
	matched := filter.Apply(m.funds, filters)
	return model.FundPage{
		Total:  len(matched),
		Offset: offset,
		Limit:  limit,
		Funds:  filter.Page(matched, offset, limit),
	}, nil
}

// FundBySlug looks a fund up by its URL slug. Duplicate slugs resolve to the first fund.
func (s *FundService) FundBySlug(ctx context.Context, slug string) (model.FundData, error) {
	m, err := s.current(ctx)
	if err != nil {
		return model.FundData{}, err
	}
	i, ok := m.bySlug[slug]
	if !ok {
		return model.FundData{}, fmt.Errorf("%w: %s", apperrors.ErrFundNotFound, slug)
	}
	return m.funds[i], nil
}

// Search returns the best matching funds for free text, best first.
func (s *FundService) Search(ctx context.Context, text string, limit int) ([]model.FundData, error) {
	for range 2 {
		m, err := s.current(ctx)
		if err != nil {
			return nil, err
		}
		out, err := m.search(text, limit)
		if errors.Is(err, errMemoClosed) {
			// Cleared between lookup and search.
			continue
		}
		return out, err
	}
	return nil, fmt.Errorf("%w: fund data was cleared during search", apperrors.ErrDataUnavailable)
}

// ClearCache drops the in-memory payload, the persistent cache entry and every
// memoised result together. The next call rebuilds from a fresh load.
func (s *FundService) ClearCache(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.memo
	s.memo = nil
	err := s.loader.Reset(ctx)
	if old != nil {
		old.close()
	}
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	s.logger.Info().Msg("fund cache cleared")
	return nil
}

// current returns the memo for the latest complete payload, building it when the
// generation moved on. Concurrent callers share one build.
func (s *FundService) current(ctx context.Context) (*fundMemo, error) {
	snap, err := s.loader.EnsureComplete(ctx)
	if err != nil {
		return nil, err
	}

	if m := s.cached(snap.Generation); m != nil {
		return m, nil
	}

	ch := s.group.DoChan(strconv.FormatUint(snap.Generation, 10), func() (any, error) {
		if m := s.cached(snap.Generation); m != nil {
			return m, nil
		}
		return s.build(context.WithoutCancel(ctx), snap)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*fundMemo), nil
	}
}

func (s *FundService) cached(generation uint64) *fundMemo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memo != nil && s.memo.generation == generation {
		return s.memo
	}
	return nil
}

func (s *FundService) build(ctx context.Context, snap pipeline.Snapshot) (*fundMemo, error) {
	funds, report, err := records.Build(ctx, snap.Payload, s.progress)
	if err != nil {
		return nil, fmt.Errorf("failed to build fund records: %w", err)
	}
	s.metrics.RecordBuild(report.Records, report.SkippedDaily, report.SkippedMeta, report.Unmatched)

	m := &fundMemo{
		generation: snap.Generation,
		funds:      funds,
		report:     report,
		bySlug:     make(map[string]int, len(funds)),
	}
	for i := range funds {
		if _, dup := m.bySlug[funds[i].FundSlug]; !dup {
			m.bySlug[funds[i].FundSlug] = i
		}
	}

	s.logger.Info().
		Uint64("generation", snap.Generation).
		Int("records", report.Records).
		Int("skipped_daily", report.SkippedDaily).
		Int("skipped_meta", report.SkippedMeta).
		Int("unmatched", report.Unmatched).
		Msg("fund records built")

	s.mu.Lock()
	defer s.mu.Unlock()
	// A build for a generation that was cleared meanwhile is returned to its
	// callers but never stored.
	if snap.Generation == s.loader.Generation() && (s.memo == nil || s.memo.generation < snap.Generation) {
		old := s.memo
		s.memo = m
		if old != nil {
			old.close()
		}
	}
	return m, nil
}

func (m *fundMemo) search(text string, limit int) ([]model.FundData, error) {
	m.indexOnce.Do(func() {
		m.index, m.indexErr = search.Build(m.funds)
	})
	if m.indexErr != nil {
		return nil, m.indexErr
	}

	m.indexMu.RLock()
	defer m.indexMu.RUnlock()
	if m.closed {
		return nil, errMemoClosed
	}
	hits, err := m.index.Search(text, limit)
	if err != nil {
		return nil, err
	}
	out := make([]model.FundData, 0, len(hits))
	for _, i := range hits {
		out = append(out, m.funds[i])
	}
	return out, nil
}

// close releases the search index once no search is running on it.
func (m *fundMemo) close() {
	m.indexMu.Lock()
	if m.closed {
		m.indexMu.Unlock()
		return
	}
	m.closed = true
	m.indexMu.Unlock()

	// Waits for a build already running and stops later ones.
	m.indexOnce.Do(func() {})

	m.indexMu.Lock()
	defer m.indexMu.Unlock()
	if m.index != nil {
		_ = m.index.Close()
	}
}
