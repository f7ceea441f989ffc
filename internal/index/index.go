// Package index implements the Answer Index (spec §3, §4.D): a min-heap of
// Answers ordered by soonest expiry, coupled with a Latest map used to
// detect that a popped Answer has been superseded by a newer observation.
package index

import (
	"container/heap"
	"sync"
	"time"

	"github.com/cachewarden/cachewarden/internal/answer"
)

// Index is the Answer Index. It is never sharded; all operations hold the
// single embedded lock for the minimum span necessary.
type Index struct {
	mu     sync.RWMutex
	heap   answerHeap
	latest map[answer.Key]time.Time
}

// New returns an empty Index ready for use.
func New() *Index {
	return &Index{latest: make(map[answer.Key]time.Time)}
}

// Insert pushes a into the heap and records it as the latest observation
// for its key, taking the write lock for the single operation.
func (idx *Index) Insert(a answer.Answer) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.insertLocked(a)
}

// InsertBatch inserts every answer in one acquisition of the write lock,
// matching the Aggregator's "lock once per batch" contract (spec §4.E).
func (idx *Index) InsertBatch(answers []answer.Answer) {
	if len(answers) == 0 {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, a := range answers {
		idx.insertLocked(a)
	}
}

func (idx *Index) insertLocked(a answer.Answer) {
	heap.Push(&idx.heap, a)
	idx.noteLatestLocked(a.Key(), a.ExpiresAt)
}

// NoteLatest records expiresAt as the most recent observation for key, if
// it is not already older than the existing one. Latest is monotonically
// non-decreasing for the lifetime of a key (spec §3 invariant); without
// this guard a late-arriving stale observation could retroactively
// invalidate a currently-valid Answer sitting in the heap.
func (idx *Index) NoteLatest(key answer.Key, expiresAt time.Time) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.noteLatestLocked(key, expiresAt)
}

func (idx *Index) noteLatestLocked(key answer.Key, expiresAt time.Time) {
	if cur, ok := idx.latest[key]; !ok || expiresAt.After(cur) {
		idx.latest[key] = expiresAt
	}
}

// IsCurrent reports whether expiresAt is still the latest known expiry for
// key — i.e. whether an Answer carrying it has not been superseded.
func (idx *Index) IsCurrent(key answer.Key, expiresAt time.Time) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.isCurrentLocked(key, expiresAt)
}

func (idx *Index) isCurrentLocked(key answer.Key, expiresAt time.Time) bool {
	cur, ok := idx.latest[key]
	return ok && cur.Equal(expiresAt)
}

// HasLatest reports whether key has ever been observed.
func (idx *Index) HasLatest(key answer.Key) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.latest[key]
	return ok
}

// PeekSoonest returns the Answer that expires soonest without removing it.
func (idx *Index) PeekSoonest() (answer.Answer, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if len(idx.heap) == 0 {
		return answer.Answer{}, false
	}
	return idx.heap[0], true
}

// PopSoonest removes and returns the Answer that expires soonest.
func (idx *Index) PopSoonest() (answer.Answer, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.popSoonestLocked()
}

func (idx *Index) popSoonestLocked() (answer.Answer, bool) {
	if len(idx.heap) == 0 {
		return answer.Answer{}, false
	}
	return heap.Pop(&idx.heap).(answer.Answer), true
}

// Len returns the number of Answers currently in the heap.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.heap)
}

// Snapshot returns a copy of every Answer currently in the heap, in no
// particular order. Used by the HTTP /universe handler, which takes a
// read lock, clones, and releases per spec §5.
func (idx *Index) Snapshot() []answer.Answer {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]answer.Answer, len(idx.heap))
	copy(out, idx.heap)
	return out
}

// DueBatch pops every Answer whose expiry falls within horizon of now,
// stopping once limit Answers have been collected as due, discarding
// stale entries along the way (spec §4.F step 3). It runs under a single
// write-lock acquisition.
func (idx *Index) DueBatch(now time.Time, horizon time.Duration, limit int) (due []answer.Answer, staleDropped int, heapLen int) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for len(idx.heap) > 0 && len(due) < limit {
		top := idx.heap[0]
		if top.ExpiresAt.Sub(now) > horizon {
			break
		}
		popped, _ := idx.popSoonestLocked()
		if idx.isCurrentLocked(popped.Key(), popped.ExpiresAt) || !idx.hasLatestLocked(popped.Key()) {
			due = append(due, popped)
		} else {
			staleDropped++
		}
	}
	return due, staleDropped, len(idx.heap)
}

func (idx *Index) hasLatestLocked(key answer.Key) bool {
	_, ok := idx.latest[key]
	return ok
}

// answerHeap implements container/heap.Interface ordered by soonest
// expiry: Less reports whether i expires before j so that Pop always
// yields the Answer closest to expiring.
type answerHeap []answer.Answer

func (h answerHeap) Len() int            { return len(h) }
func (h answerHeap) Less(i, j int) bool  { return h[i].ExpiresSooner(h[j]) }
func (h answerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *answerHeap) Push(x any)         { *h = append(*h, x.(answer.Answer)) }
func (h *answerHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
