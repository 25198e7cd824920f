package queue

import (
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// TrackQueue is the shared pending queue of one playback session. Plain adds
// go through fairness insertion so no single requester monopolizes the head,
// priority adds jump the queue outright, and index based reads go through the
// presentation order: insertion order normally, a lazily cached shuffle order
// while shuffle is enabled.
//
// Every operation takes the queue's single mutex; mutations from resolver
// completions and command handlers interleave safely but never concurrently.
type TrackQueue struct {
	mu      sync.Mutex
	entries []*Entry

	shuffle  bool
	shuffled []*Entry // nil when the cached order is invalid

	repeat     RepeatMode
	lastPlayed *Entry
}

func New() *TrackQueue {
	return &TrackQueue{}
}

// Add inserts a single entry using fairness insertion.
func (q *TrackQueue) Add(e *Entry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.insertFairLocked(e)
	q.shuffled = nil
}

// AddAll inserts every entry using fairness insertion, in input order.
func (q *TrackQueue) AddAll(entries []*Entry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range entries {
		q.insertFairLocked(e)
	}
	q.shuffled = nil
}

// AddFirst force-inserts at the head. The entry's rank is pinned to the
// minimum so it also sorts first while shuffle is enabled.
func (q *TrackQueue) AddFirst(e *Entry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e.rank.Store(math.MinInt32)
	q.entries = append([]*Entry{e}, q.entries...)
	q.shuffled = nil
}

// AddAllFirst inserts the batch at the head, preserving input order.
func (q *TrackQueue) AddAllFirst(entries []*Entry) {
	if len(entries) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	head := make([]*Entry, 0, len(entries)+len(q.entries))
	for _, e := range entries {
		e.rank.Store(math.MinInt32)
		head = append(head, e)
	}
	q.entries = append(head, q.entries...)
	q.shuffled = nil
}

// insertFairLocked walks the queue keeping a running contribution count per
// requester, seeded with 1 for the new entry's requester and one more for the
// requester of whatever is currently playing. The entry lands right before
// the first position whose owner has contributed more than the new requester
// so far; failing that it is appended. Positions holding priority entries are
// never displaced.
func (q *TrackQueue) insertFairLocked(e *Entry) {
	counts := map[string]int{e.requester: 1}
	if q.lastPlayed != nil {
		counts[q.lastPlayed.requester]++
	}
	for i, cur := range q.entries {
		counts[cur.requester]++
		if cur.priority.Load() {
			continue
		}
		if cur.requester != e.requester && counts[cur.requester] > counts[e.requester] {
			q.entries = append(q.entries[:i], append([]*Entry{e}, q.entries[i:]...)...)
			return
		}
	}
	q.entries = append(q.entries, e)
}

// Remove drops the given entry by identity. Reports whether it was present.
func (q *TrackQueue) Remove(e *Entry) bool {
	return q.RemoveByIDs([]int64{e.id}) > 0
}

// RemoveAll drops every listed entry by identity, returning how many were
// actually present.
func (q *TrackQueue) RemoveAll(entries []*Entry) int {
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return q.RemoveByIDs(ids)
}

// RemoveByIDs drops entries whose id matches. The shuffle cache is only
// invalidated when something was actually removed.
func (q *TrackQueue) RemoveByIDs(ids []int64) int {
	if len(ids) == 0 {
		return 0
	}
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.entries[:0]
	removed := 0
	for _, e := range q.entries {
		if _, ok := want[e.id]; ok {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	q.entries = kept
	if removed > 0 {
		q.shuffled = nil
	}
	return removed
}

// Get returns the entry at the given position of the presentation order, or
// nil when out of range.
func (q *TrackQueue) Get(index int) *Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	ordered := q.orderedLocked()
	if index < 0 || index >= len(ordered) {
		return nil
	}
	return ordered[index]
}

// Range returns at most end-start entries of the presentation order starting
// at start. Reversed bounds are swapped rather than rejected.
func (q *TrackQueue) Range(start, end int) []*Entry {
	if start > end {
		start, end = end, start
	}
	if start < 0 {
		start = 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	ordered := q.orderedLocked()
	out := make([]*Entry, 0, end-start)
	for i := start; i < len(ordered) && len(out) < end-start; i++ {
		out = append(out, ordered[i])
	}
	return out
}

// Ordered returns the current presentation order.
func (q *TrackQueue) Ordered() []*Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	ordered := q.orderedLocked()
	out := make([]*Entry, len(ordered))
	copy(out, ordered)
	return out
}

// Peek returns the entry the next ProvideNext call would hand out, without
// consuming anything.
func (q *TrackQueue) Peek() *Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.repeat == RepeatSingle && q.lastPlayed != nil {
		return q.lastPlayed.clone()
	}
	ordered := q.orderedLocked()
	if len(ordered) == 0 {
		// repeat all replays the last played entry once the queue drains
		if q.repeat == RepeatAll && q.lastPlayed != nil {
			return q.lastPlayed.clone()
		}
		return nil
	}
	return ordered[0]
}

// ProvideNext pops the next entry to play according to the repeat mode:
//
//   - RepeatNone: pop the head of the presentation order and remember it as
//     last played.
//   - RepeatSingle: hand out a clone of the last played entry without
//     touching the queue.
//   - RepeatAll: first re-insert a clone of the last played entry as a normal
//     member (rank forced to the maximum under shuffle so it lands at the
//     tail), then pop as usual.
//
// Returns nil when both the queue and the repeat source are empty.
func (q *TrackQueue) ProvideNext() *Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch q.repeat {
	case RepeatSingle:
		if q.lastPlayed != nil {
			return q.lastPlayed.clone()
		}
	case RepeatAll:
		if q.lastPlayed != nil {
			c := q.lastPlayed.clone()
			if q.shuffle {
				c.rank.Store(math.MaxInt32)
			}
			q.insertFairLocked(c)
			q.shuffled = nil
		}
	}

	ordered := q.orderedLocked()
	if len(ordered) == 0 {
		return nil
	}
	next := ordered[0]
	q.removeLocked(next)
	q.lastPlayed = next
	return next
}

func (q *TrackQueue) removeLocked(e *Entry) {
	for i, cur := range q.entries {
		if cur == e {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			q.shuffled = nil
			return
		}
	}
}

// LastPlayed returns the entry most recently handed out by ProvideNext, or
// nil after a skip or clear.
func (q *TrackQueue) LastPlayed() *Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastPlayed
}

// Skipped drops the last played reference so repeat modes stop replaying it.
func (q *TrackQueue) Skipped() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.lastPlayed = nil
}

// Clear empties the queue and drops the last played reference.
func (q *TrackQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = nil
	q.lastPlayed = nil
	q.shuffled = nil
}

func (q *TrackQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

func (q *TrackQueue) IsEmpty() bool {
	return q.Size() == 0
}

// Duration sums the durations of all non-stream entries.
func (q *TrackQueue) Duration() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	var total time.Duration
	for _, e := range q.entries {
		if !e.IsStream() {
			total += e.Duration()
		}
	}
	return total
}

// StreamCount returns how many queued entries are live streams.
func (q *TrackQueue) StreamCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, e := range q.entries {
		if e.IsStream() {
			n++
		}
	}
	return n
}

// IsUserTrackOwner reports whether every entry among ids is owned by userID.
// Entries that are no longer queued are ignored.
func (q *TrackQueue) IsUserTrackOwner(userID string, ids []int64) bool {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		if _, ok := want[e.id]; ok && e.requester != userID {
			return false
		}
	}
	return true
}

func (q *TrackQueue) Repeat() RepeatMode {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.repeat
}

func (q *TrackQueue) SetRepeat(mode RepeatMode) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.repeat = mode
}

func (q *TrackQueue) Shuffle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.shuffle
}

// SetShuffle toggles shuffle. Enabling it clears every entry's priority flag;
// stale priority ordering after a toggle caused inconsistent playback orders
// in the past, so the flags are wiped wholesale.
func (q *TrackQueue) SetShuffle(on bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if on {
		for _, e := range q.entries {
			e.priority.Store(false)
		}
	}
	q.shuffle = on
	q.shuffled = nil
}

// Reshuffle re-randomizes every entry's rank and clears priority flags.
func (q *TrackQueue) Reshuffle() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		e.rank.Store(rand.Int31())
		e.priority.Store(false)
	}
	q.shuffled = nil
}

// orderedLocked returns the presentation order, computing the shuffle order
// if the cache is stale: a stable sort by the pre-existing ranks, then ranks
// reassigned evenly across the positive int32 range so later inserts can land
// between any two neighbors. Priority entries are pinned to the minimum rank.
func (q *TrackQueue) orderedLocked() []*Entry {
	if !q.shuffle {
		return q.entries
	}
	if q.shuffled != nil {
		return q.shuffled
	}

	ordered := make([]*Entry, len(q.entries))
	copy(ordered, q.entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := ordered[i].priority.Load(), ordered[j].priority.Load()
		if pi != pj {
			return pi
		}
		return ordered[i].rank.Load() < ordered[j].rank.Load()
	})

	n := len(ordered)
	for i, e := range ordered {
		if e.priority.Load() {
			e.rank.Store(math.MinInt32)
			continue
		}
		e.rank.Store(int32(float64(i+1) / float64(n+1) * float64(math.MaxInt32)))
	}

	q.shuffled = ordered
	return q.shuffled
}
