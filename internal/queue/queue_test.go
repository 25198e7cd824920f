package queue

import (
	"math"
	"testing"
	"time"
)

func testTrack(title string) Track {
	return Track{
		Identifier: title,
		Title:      title,
		URL:        "https://example.com/" + title,
		Duration:   3 * time.Minute,
	}
}

func newTestEntry(title, requester string) *Entry {
	return NewEntry(testTrack(title), requester, false)
}

func TestAdd_UniqueIdentitiesAndSize(t *testing.T) {
	q := New()
	seen := map[int64]bool{}
	for i := 0; i < 10; i++ {
		e := newTestEntry("t", "alice")
		if seen[e.ID()] {
			t.Fatalf("duplicate entry id %d", e.ID())
		}
		seen[e.ID()] = true
		q.Add(e)
	}
	if got := q.Size(); got != 10 {
		t.Errorf("Size() = %d, want 10", got)
	}

	ordered := q.Ordered()
	if q.RemoveByIDs([]int64{ordered[0].ID(), ordered[3].ID()}) != 2 {
		t.Error("expected 2 removals")
	}
	if got := q.Size(); got != 8 {
		t.Errorf("Size() after removal = %d, want 8", got)
	}
}

func TestAdd_FairnessInsertion(t *testing.T) {
	q := New()
	a1 := newTestEntry("a1", "alice")
	a2 := newTestEntry("a2", "alice")
	a3 := newTestEntry("a3", "alice")
	b1 := newTestEntry("b1", "bob")
	q.Add(a1)
	q.Add(a2)
	q.Add(a3)
	q.Add(b1)

	ordered := q.Ordered()
	bobAt := -1
	for i, e := range ordered {
		if e.Requester() == "bob" {
			bobAt = i
		}
	}
	if bobAt == -1 {
		t.Fatal("bob's entry missing")
	}
	if bobAt == len(ordered)-1 {
		t.Errorf("bob's entry landed at the tail, want it before at least one of alice's")
	}
	// bob has contributed nothing yet, so his entry goes behind exactly one
	// of alice's tracks
	if bobAt != 1 {
		t.Errorf("bob's entry at index %d, want 1", bobAt)
	}
}

func TestAdd_FairnessCountsCurrentlyPlaying(t *testing.T) {
	q := New()
	q.Add(newTestEntry("a1", "alice"))
	if e := q.ProvideNext(); e == nil || e.Requester() != "alice" {
		t.Fatal("expected alice's entry to play")
	}

	// alice is playing, so her next add competes with bob's at equal counts
	q.Add(newTestEntry("a2", "alice"))
	q.Add(newTestEntry("b1", "bob"))

	ordered := q.Ordered()
	if len(ordered) != 2 {
		t.Fatalf("expected 2 queued entries, got %d", len(ordered))
	}
	if ordered[0].Requester() != "bob" {
		t.Errorf("want bob first while alice is playing, got %s", ordered[0].Requester())
	}
}

func TestAdd_NeverDisplacesPriorityEntries(t *testing.T) {
	q := New()
	p := NewEntry(testTrack("p"), "alice", true)
	q.AddFirst(p)
	q.Add(newTestEntry("a1", "alice"))
	q.Add(newTestEntry("b1", "bob"))

	if got := q.Ordered()[0]; got != p {
		t.Errorf("priority entry no longer first, got %s", got.Track().Title)
	}
}

func TestShuffle_RanksEvenlySpread(t *testing.T) {
	q := New()
	for i := 0; i < 5; i++ {
		q.Add(newTestEntry("t", "alice"))
	}
	q.SetShuffle(true)

	ordered := q.Ordered()
	if len(ordered) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(ordered))
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].rank.Load() <= ordered[i-1].rank.Load() {
			t.Errorf("rank at %d (%d) not greater than predecessor (%d)", i, ordered[i].rank.Load(), ordered[i-1].rank.Load())
		}
	}
	if first := ordered[0].rank.Load(); first <= 0 {
		t.Errorf("first reassigned rank = %d, want positive", first)
	}
	if last := ordered[len(ordered)-1].rank.Load(); last >= math.MaxInt32 {
		t.Errorf("last reassigned rank = %d, want below MaxInt32", last)
	}
}

func TestShuffle_PriorityEntriesAlwaysFirst(t *testing.T) {
	q := New()
	for i := 0; i < 4; i++ {
		q.Add(newTestEntry("t", "alice"))
	}
	q.SetShuffle(true)

	p := NewEntry(testTrack("p"), "bob", true)
	q.AddFirst(p)

	ordered := q.Ordered()
	if ordered[0] != p {
		t.Fatal("priority entry not first under shuffle")
	}
	if ordered[0].rank.Load() != math.MinInt32 {
		t.Errorf("priority rank = %d, want MinInt32", ordered[0].rank.Load())
	}
}

func TestShuffle_OrderedViewIsCached(t *testing.T) {
	q := New()
	for i := 0; i < 6; i++ {
		q.Add(newTestEntry("t", "alice"))
	}
	q.SetShuffle(true)

	first := q.Ordered()
	second := q.Ordered()
	if len(first) != len(second) {
		t.Fatalf("order lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("position %d differs between consecutive reads", i)
		}
	}

	// any mutation invalidates the cache; the new order must still contain
	// everything exactly once
	q.Add(newTestEntry("late", "bob"))
	third := q.Ordered()
	if len(third) != 7 {
		t.Fatalf("expected 7 entries after add, got %d", len(third))
	}
	seen := map[int64]bool{}
	for _, e := range third {
		if seen[e.ID()] {
			t.Fatalf("entry %d appears twice in shuffled order", e.ID())
		}
		seen[e.ID()] = true
	}
}

func TestSetShuffle_EnablingClearsPriority(t *testing.T) {
	q := New()
	p := NewEntry(testTrack("p"), "alice", true)
	q.AddFirst(p)
	q.Add(newTestEntry("t", "bob"))

	q.SetShuffle(true)
	if p.Priority() {
		t.Error("priority flag survived enabling shuffle")
	}
}

func TestReshuffle_ClearsPriorityAndRerandomizes(t *testing.T) {
	q := New()
	p := NewEntry(testTrack("p"), "alice", true)
	q.AddFirst(p)
	if p.rank.Load() != math.MinInt32 {
		t.Fatalf("AddFirst rank = %d, want MinInt32", p.rank.Load())
	}
	q.Reshuffle()
	if p.Priority() {
		t.Error("priority flag survived reshuffle")
	}
	if p.rank.Load() == math.MinInt32 {
		t.Error("rank not rerandomized by reshuffle")
	}
}

func TestProvideNext_RepeatNone(t *testing.T) {
	q := New()
	e1 := newTestEntry("one", "alice")
	e2 := newTestEntry("two", "alice")
	q.Add(e1)
	q.Add(e2)

	if got := q.ProvideNext(); got != e1 {
		t.Fatalf("first pop = %v, want e1", got)
	}
	if got := q.LastPlayed(); got != e1 {
		t.Errorf("LastPlayed = %v, want e1", got)
	}
	if got := q.ProvideNext(); got != e2 {
		t.Fatalf("second pop = %v, want e2", got)
	}
	if got := q.ProvideNext(); got != nil {
		t.Errorf("pop on empty queue = %v, want nil", got)
	}
}

func TestProvideNext_RepeatSingle(t *testing.T) {
	q := New()
	e1 := newTestEntry("one", "alice")
	e2 := newTestEntry("two", "alice")
	q.Add(e1)
	q.Add(e2)
	if q.ProvideNext() != e1 {
		t.Fatal("setup pop failed")
	}

	q.SetRepeat(RepeatSingle)
	for i := 0; i < 3; i++ {
		c := q.ProvideNext()
		if c == nil {
			t.Fatal("repeat single returned nil")
		}
		if c == e1 || c.ID() == e1.ID() {
			t.Error("repeat single returned the original entry, want a clone")
		}
		if c.Track() != e1.Track() {
			t.Errorf("clone wraps %q, want %q", c.Track().Title, e1.Track().Title)
		}
		if c.Priority() {
			t.Error("clone kept the priority flag")
		}
	}
	if got := q.Size(); got != 1 {
		t.Errorf("repeat single consumed the queue, size = %d, want 1", got)
	}
}

func TestProvideNext_RepeatAllReplaysTail(t *testing.T) {
	q := New()
	e1 := newTestEntry("one", "alice")
	q.Add(e1)
	q.SetRepeat(RepeatAll)

	if q.ProvideNext() != e1 {
		t.Fatal("setup pop failed")
	}
	// queue exhausted; next pop must replay a clone of e1
	c := q.ProvideNext()
	if c == nil {
		t.Fatal("repeat all returned nil after exhaustion")
	}
	if c.ID() == e1.ID() {
		t.Error("repeat all returned the original identity, want a clone")
	}
	if c.Track() != e1.Track() {
		t.Errorf("clone wraps %q, want %q", c.Track().Title, e1.Track().Title)
	}
	if got := q.LastPlayed(); got != c {
		t.Error("last played reference did not advance to the clone")
	}
}

func TestProvideNext_RepeatAllStopsAfterSkip(t *testing.T) {
	q := New()
	q.Add(newTestEntry("one", "alice"))
	q.SetRepeat(RepeatAll)

	if q.ProvideNext() == nil {
		t.Fatal("setup pop failed")
	}
	q.Skipped()
	if got := q.ProvideNext(); got != nil {
		t.Errorf("pop after skip = %v, want nil", got)
	}
}

func TestPeek_DoesNotConsume(t *testing.T) {
	q := New()
	e1 := newTestEntry("one", "alice")
	q.Add(e1)

	if got := q.Peek(); got != e1 {
		t.Fatalf("Peek = %v, want e1", got)
	}
	if got := q.Size(); got != 1 {
		t.Errorf("Peek consumed the queue, size = %d", got)
	}

	q.SetRepeat(RepeatSingle)
	if q.ProvideNext() != e1 {
		t.Fatal("setup pop failed")
	}
	peeked := q.Peek()
	if peeked == nil || peeked.ID() == e1.ID() {
		t.Error("Peek under repeat single should return a clone of last played")
	}
}

func TestPeek_RepeatAllReplaysAfterExhaustion(t *testing.T) {
	q := New()
	e1 := newTestEntry("one", "alice")
	q.Add(e1)
	q.SetRepeat(RepeatAll)

	if q.ProvideNext() != e1 {
		t.Fatal("setup pop failed")
	}

	// queue drained; Peek must show the replay clone ProvideNext would
	// hand out, without consuming anything
	peeked := q.Peek()
	if peeked == nil {
		t.Fatal("Peek = nil after exhaustion under repeat all")
	}
	if peeked.ID() == e1.ID() {
		t.Error("Peek returned the original identity, want a clone")
	}
	if peeked.Track() != e1.Track() {
		t.Errorf("Peek clone wraps %q, want %q", peeked.Track().Title, e1.Track().Title)
	}
	if got := q.Size(); got != 0 {
		t.Errorf("Peek mutated the queue, size = %d", got)
	}

	next := q.ProvideNext()
	if next == nil || next.Track() != peeked.Track() {
		t.Error("ProvideNext disagrees with what Peek promised")
	}

	q.Skipped()
	if got := q.Peek(); got != nil {
		t.Errorf("Peek after skip = %v, want nil", got)
	}
}

func TestOrdered_ReadsSafeDuringShuffleToggles(t *testing.T) {
	q := New()
	for i := 0; i < 16; i++ {
		q.Add(newTestEntry("t", "alice"))
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			q.SetShuffle(i%2 == 0)
			q.Reshuffle()
		}
	}()

	for i := 0; i < 200; i++ {
		for _, e := range q.Ordered() {
			_ = e.Priority()
			_ = e.Track()
		}
		for _, e := range q.Range(0, 8) {
			_ = e.Priority()
		}
	}
	<-done
}

func TestRange_BoundsNormalized(t *testing.T) {
	q := New()
	for i := 0; i < 6; i++ {
		q.Add(newTestEntry("t", "alice"))
	}

	if got := q.Range(2, 2); len(got) != 0 {
		t.Errorf("Range(2,2) returned %d entries, want 0", len(got))
	}

	fwd := q.Range(2, 5)
	rev := q.Range(5, 2)
	if len(fwd) != 3 || len(rev) != 3 {
		t.Fatalf("Range lengths = %d, %d, want 3", len(fwd), len(rev))
	}
	for i := range fwd {
		if fwd[i] != rev[i] {
			t.Errorf("Range(5,2) differs from Range(2,5) at %d", i)
		}
	}

	// range past the end stops early
	if got := q.Range(4, 20); len(got) != 2 {
		t.Errorf("Range(4,20) returned %d entries, want 2", len(got))
	}
}

func TestAddAllFirst_PreservesInputOrder(t *testing.T) {
	q := New()
	q.Add(newTestEntry("old", "alice"))

	batch := []*Entry{
		NewEntry(testTrack("p1"), "bob", true),
		NewEntry(testTrack("p2"), "bob", true),
	}
	q.AddAllFirst(batch)

	ordered := q.Ordered()
	if ordered[0] != batch[0] || ordered[1] != batch[1] {
		t.Error("AddAllFirst did not preserve input order at the head")
	}
}

func TestDurationAndStreamCount(t *testing.T) {
	q := New()
	q.Add(newTestEntry("t1", "alice"))
	q.Add(newTestEntry("t2", "alice"))
	live := testTrack("live")
	live.IsStream = true
	live.Duration = time.Hour // must not count toward duration
	q.Add(NewEntry(live, "bob", false))

	if got := q.Duration(); got != 6*time.Minute {
		t.Errorf("Duration() = %v, want 6m", got)
	}
	if got := q.StreamCount(); got != 1 {
		t.Errorf("StreamCount() = %d, want 1", got)
	}
}

func TestIsUserTrackOwner(t *testing.T) {
	q := New()
	a := newTestEntry("a", "alice")
	b := newTestEntry("b", "bob")
	q.Add(a)
	q.Add(b)

	if !q.IsUserTrackOwner("alice", []int64{a.ID()}) {
		t.Error("alice should own her own entry")
	}
	if q.IsUserTrackOwner("alice", []int64{a.ID(), b.ID()}) {
		t.Error("alice must not own bob's entry")
	}
}

func TestClear_DropsEverything(t *testing.T) {
	q := New()
	q.Add(newTestEntry("t", "alice"))
	if q.ProvideNext() == nil {
		t.Fatal("setup pop failed")
	}
	q.Add(newTestEntry("t2", "alice"))
	q.Clear()

	if !q.IsEmpty() {
		t.Error("queue not empty after Clear")
	}
	if q.LastPlayed() != nil {
		t.Error("last played reference survived Clear")
	}
}
