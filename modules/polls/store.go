package polls

import (
	"fmt"
	"github.com/google/uuid"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Limits bounds what a poll may contain. Zero values mean no limit.
type Limits struct {
	MaxOptions int
	MaxLength  int
}

var DefaultLimits = Limits{MaxOptions: 15, MaxLength: 50}

type record struct {
	locker  sync.Mutex
	// message orders edits of the poll message so an older render never
	// lands after a newer one.
	message sync.Mutex
	poll    Poll
}

// Store holds every live poll for the life of the process, or until its
// policy evicts them.
type Store struct {
	locker sync.RWMutex
	polls  map[string]*record
	policy Policy
	limits Limits
	now    func() time.Time
}

// NewStore creates an empty store. A nil policy keeps polls forever.
func NewStore(policy Policy, limits Limits) *Store {
	if policy == nil {
		policy = Unbounded{}
	}
	return &Store{
		polls:  make(map[string]*record),
		policy: policy,
		limits: limits,
		now:    time.Now,
	}
}

// Create validates and inserts a new poll, returning its id.
func (s *Store) Create(title string, options []string, createdBy string, channel string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalidPoll)
	}

	choices, err := s.validateOptions(options)
	if err != nil {
		return "", err
	}

	poll := Poll{
		Title:     title,
		Options:   make([]Option, len(choices)),
		CreatedBy: createdBy,
		Channel:   channel,
		Created:   s.now(),
	}
	for k, v := range choices {
		poll.Options[k] = Option{Text: v}
	}

	s.locker.Lock()
	defer s.locker.Unlock()

	id := uuid.NewString()
	for s.polls[id] != nil {
		id = uuid.NewString()
	}
	poll.ID = id
	s.polls[id] = &record{poll: poll}

	for _, v := range s.policy.Added(id) {
		if v != id {
			delete(s.polls, v)
		}
	}

	return id, nil
}

func (s *Store) validateOptions(options []string) ([]string, error) {
	if len(options) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 options, got %d", ErrInvalidPoll, len(options))
	}
	if s.limits.MaxOptions > 0 && len(options) > s.limits.MaxOptions {
		return nil, fmt.Errorf("%w: limit of %d options", ErrInvalidPoll, s.limits.MaxOptions)
	}

	choices := make([]string, len(options))
	for k, v := range options {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, fmt.Errorf("%w: option %d is empty", ErrInvalidPoll, k+1)
		}
		if s.limits.MaxLength > 0 && utf8.RuneCountInString(v) > s.limits.MaxLength {
			return nil, fmt.Errorf("%w: options can be at most %d characters", ErrInvalidPoll, s.limits.MaxLength)
		}
		choices[k] = v
	}

	if hasDupes(choices) {
		return nil, fmt.Errorf("%w: options cannot repeat", ErrInvalidPoll)
	}

	return choices, nil
}

// Get returns a copy of the poll. The bool is false when no poll has this id.
func (s *Store) Get(id string) (Poll, bool) {
	rec, exists := s.lookup(id)
	if !exists {
		return Poll{}, false
	}

	rec.locker.Lock()
	defer rec.locker.Unlock()
	return rec.poll.clone(), true
}

// lockMessage holds the message lock of a poll until the returned func is
// called. The bool is false when no poll has this id.
func (s *Store) lockMessage(id string) (func(), bool) {
	rec, exists := s.lookup(id)
	if !exists {
		return nil, false
	}
	rec.message.Lock()
	return rec.message.Unlock, true
}

func (s *Store) Len() int {
	s.locker.RLock()
	defer s.locker.RUnlock()
	return len(s.polls)
}

// Sweep drops every poll the policy considers expired and returns how many
// were removed.
func (s *Store) Sweep() int {
	expired := s.policy.Expired()
	if len(expired) == 0 {
		return 0
	}

	s.locker.Lock()
	defer s.locker.Unlock()

	count := 0
	for _, v := range expired {
		if s.polls[v] != nil {
			delete(s.polls, v)
			count++
		}
	}
	return count
}

func (s *Store) lookup(id string) (*record, bool) {
	s.locker.RLock()
	defer s.locker.RUnlock()
	rec, exists := s.polls[id]
	return rec, exists
}

func hasDupes(choices []string) bool {
	seen := make(map[string]struct{}, len(choices))
	for _, v := range choices {
		if _, exists := seen[v]; exists {
			return true
		}
		seen[v] = struct{}{}
	}
	return false
}
