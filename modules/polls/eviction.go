package polls

import (
	"container/list"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Policy decides which polls the store drops. Implementations must be safe
// for concurrent use.
type Policy interface {
	// Added records a newly created poll and returns ids to evict.
	Added(id string) []string
	// Touched records that a poll was voted on.
	Touched(id string)
	// Expired returns ids that should be dropped now. They are forgotten by
	// the policy once returned.
	Expired() []string
}

// Unbounded never evicts anything.
type Unbounded struct{}

func (Unbounded) Added(string) []string { return nil }
func (Unbounded) Touched(string)        {}
func (Unbounded) Expired() []string     { return nil }

type usage struct {
	id   string
	last time.Time
}

// recency orders ids from most (front) to least (back) recently used.
type recency struct {
	order *list.List
	index map[string]*list.Element
}

func newRecency() recency {
	return recency{order: list.New(), index: make(map[string]*list.Element)}
}

func (r *recency) touch(id string, at time.Time) {
	if e, exists := r.index[id]; exists {
		e.Value.(*usage).last = at
		r.order.MoveToFront(e)
		return
	}
	r.index[id] = r.order.PushFront(&usage{id: id, last: at})
}

func (r *recency) has(id string) bool {
	_, exists := r.index[id]
	return exists
}

func (r *recency) oldest() *usage {
	e := r.order.Back()
	if e == nil {
		return nil
	}
	return e.Value.(*usage)
}

func (r *recency) remove(id string) {
	if e, exists := r.index[id]; exists {
		r.order.Remove(e)
		delete(r.index, id)
	}
}

// LRU keeps at most Capacity polls, dropping the one least recently created
// or voted on.
type LRU struct {
	locker   sync.Mutex
	capacity int
	recent   recency
}

func NewLRU(capacity int) *LRU {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU{capacity: capacity, recent: newRecency()}
}

func (l *LRU) Added(id string) []string {
	l.locker.Lock()
	defer l.locker.Unlock()

	l.recent.touch(id, time.Time{})

	var evicted []string
	for l.recent.order.Len() > l.capacity {
		old := l.recent.oldest()
		l.recent.remove(old.id)
		evicted = append(evicted, old.id)
	}
	return evicted
}

func (l *LRU) Touched(id string) {
	l.locker.Lock()
	defer l.locker.Unlock()

	// an evicted poll can still be voted on by a request already in flight
	if l.recent.has(id) {
		l.recent.touch(id, time.Time{})
	}
}

func (*LRU) Expired() []string { return nil }

// Idle drops polls nobody created or voted on for longer than MaxIdle.
type Idle struct {
	locker  sync.Mutex
	maxIdle time.Duration
	now     func() time.Time
	recent  recency
}

func NewIdle(maxIdle time.Duration) *Idle {
	return &Idle{maxIdle: maxIdle, now: time.Now, recent: newRecency()}
}

func (i *Idle) Added(id string) []string {
	i.locker.Lock()
	defer i.locker.Unlock()

	now := i.now()
	i.recent.touch(id, now)
	return i.expired(now)
}

func (i *Idle) Touched(id string) {
	i.locker.Lock()
	defer i.locker.Unlock()

	if i.recent.has(id) {
		i.recent.touch(id, i.now())
	}
}

func (i *Idle) Expired() []string {
	i.locker.Lock()
	defer i.locker.Unlock()
	return i.expired(i.now())
}

func (i *Idle) expired(now time.Time) []string {
	var evicted []string
	for old := i.recent.oldest(); old != nil && now.Sub(old.last) > i.maxIdle; old = i.recent.oldest() {
		i.recent.remove(old.id)
		evicted = append(evicted, old.id)
	}
	return evicted
}

// PolicyFromName builds the policy configured under polls.eviction.
func PolicyFromName(name string, capacity int, maxIdle time.Duration) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "unbounded":
		return Unbounded{}, nil
	case "lru":
		return NewLRU(capacity), nil
	case "idle":
		if maxIdle <= 0 {
			return nil, fmt.Errorf("idle eviction needs a positive duration, got %s", maxIdle)
		}
		return NewIdle(maxIdle), nil
	default:
		return nil, fmt.Errorf("no eviction policy with name %s", name)
	}
}
