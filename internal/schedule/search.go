package schedule

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/pawcal/pawcal/internal/reminder"
)

const (
	DefaultSearchDelay    = 300 * time.Millisecond
	DefaultSearchMinChars = 2
	searchTimeout         = 5 * time.Second
)

// OwnerFinder is the part of the backend owner search needs.
type OwnerFinder interface {
	SearchOwners(ctx context.Context, term string) ([]reminder.OwnerOption, error)
}

// SearchResult pairs owners with the term that produced them.
type SearchResult struct {
	Term   string
	Owners []reminder.OwnerOption
	Err    error
}

// OwnerSearch runs debounced owner lookups as the owner field is typed into.
// Only results for the latest term are ever kept.
type OwnerSearch struct {
	finder    OwnerFinder
	minChars  int
	debouncer *Debouncer
	onResult  func(SearchResult)

	mu       sync.Mutex
	term     string
	result   SearchResult
	fetching bool
}

// NewOwnerSearch wires finder behind a debounce of delay. onResult, when not
// nil, is called from the lookup goroutine with every result that is kept.
func NewOwnerSearch(finder OwnerFinder, delay time.Duration, minChars int, onResult func(SearchResult)) *OwnerSearch {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	if minChars <= 0 {
		minChars = DefaultSearchMinChars
	}
	return &OwnerSearch{
		finder:    finder,
		minChars:  minChars,
		debouncer: NewDebouncer(delay),
		onResult:  onResult,
	}
}

// SetTerm records term and schedules a lookup when it is long enough.
// Shorter terms clear the results without a lookup.
func (s *OwnerSearch) SetTerm(term string) {
	s.mu.Lock()
	s.term = term
	s.result = SearchResult{Term: term}

	if utf8.RuneCountInString(strings.TrimSpace(term)) < s.minChars {
		s.fetching = false
		s.mu.Unlock()
		s.debouncer.Cancel()
		return
	}
	s.fetching = true
	s.mu.Unlock()

	s.debouncer.Trigger(func() { s.lookup(term) })
}

func (s *OwnerSearch) lookup(term string) {
	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	owners, err := s.finder.SearchOwners(ctx, strings.TrimSpace(term))
	if err != nil {
		log.Warn().Err(err).Str("term", term).Msg("owner search failed")
		owners = nil
	}

	s.mu.Lock()
	if term != s.term {
		s.mu.Unlock()
		log.Debug().Str("term", term).Msg("discarding stale owner search result")
		return
	}
	result := SearchResult{Term: term, Owners: owners, Err: err}
	s.result = result
	s.fetching = false
	s.mu.Unlock()

	if s.onResult != nil {
		s.onResult(result)
	}
}

// Cancel drops the pending lookup and the current term.
func (s *OwnerSearch) Cancel() {
	s.debouncer.Cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.term = ""
	s.result = SearchResult{}
	s.fetching = false
}

func (s *OwnerSearch) Term() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

// Results returns the owners found for the current term.
func (s *OwnerSearch) Results() []reminder.OwnerOption {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result.Term != s.term {
		return nil
	}
	return s.result.Owners
}

// Fetching reports a lookup scheduled or in flight for the current term.
func (s *OwnerSearch) Fetching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetching
}

// HasQuery reports whether the current term is long enough to search.
func (s *OwnerSearch) HasQuery() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return utf8.RuneCountInString(strings.TrimSpace(s.term)) >= s.minChars
}
