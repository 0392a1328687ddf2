package book

import (
	"testing"

	"github.com/marketpulse/streams/pkg/book"
	"github.com/marketpulse/streams/pkg/streamerr"
)

func TestFuturesStyleUpdaterFirstUpdateAcceptance(t *testing.T) {
	t.Parallel()
	u := NewFuturesStyleUpdater(100)
	b := book.NewFromSnapshot(nil, nil)

	// U <= S AND u >= S: U=90, u=105, S=100 -> accepted.
	emit, err := u.Apply(&b, Delta{FirstUpdateID: 90, LastUpdateID: 105}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !emit {
		t.Fatal("expected first update to emit")
	}
	if u.LastUpdateID != 105 {
		t.Fatalf("LastUpdateID = %d, want 105", u.LastUpdateID)
	}
}

func TestFuturesStyleUpdaterRejectsGap(t *testing.T) {
	t.Parallel()
	u := NewFuturesStyleUpdater(100)
	b := book.NewFromSnapshot(nil, nil)

	if _, err := u.Apply(&b, Delta{FirstUpdateID: 90, LastUpdateID: 105}, nil); err != nil {
		t.Fatalf("seed first update: %v", err)
	}

	// pu must equal 105; a gap must raise InvalidSequenceError.
	_, err := u.Apply(&b, Delta{FirstUpdateID: 120, LastUpdateID: 130, PrevUpdateID: 110}, nil)
	if _, ok := err.(*streamerr.InvalidSequenceError); !ok {
		t.Fatalf("err = %v, want *streamerr.InvalidSequenceError", err)
	}
}

func TestFuturesStyleUpdaterDropsStale(t *testing.T) {
	t.Parallel()
	u := NewFuturesStyleUpdater(100)
	b := book.NewFromSnapshot(nil, nil)

	emit, err := u.Apply(&b, Delta{FirstUpdateID: 50, LastUpdateID: 99}, nil)
	if err != nil {
		t.Fatalf("unexpected error on stale drop: %v", err)
	}
	if emit {
		t.Fatal("stale update before snapshot must not emit")
	}
}

func TestSpotStyleUpdaterCapturesPrevBeforeOverwrite(t *testing.T) {
	t.Parallel()
	u := NewSpotStyleUpdater(100)
	b := book.NewFromSnapshot(nil, nil)

	// First update: U <= S+1 AND u >= S+1, S=100 -> U<=101, u>=101.
	if _, err := u.Apply(&b, Delta{FirstUpdateID: 95, LastUpdateID: 105}, nil); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if u.PrevLastUpdateID != 100 {
		t.Fatalf("PrevLastUpdateID = %d, want 100 (captured before overwrite)", u.PrevLastUpdateID)
	}
	if u.LastUpdateID != 105 {
		t.Fatalf("LastUpdateID = %d, want 105", u.LastUpdateID)
	}

	// Next update's first_update_id must equal old_prev_last + 1 = 106.
	if _, err := u.Apply(&b, Delta{FirstUpdateID: 106, LastUpdateID: 110}, nil); err != nil {
		t.Fatalf("second update: %v", err)
	}
	if u.PrevLastUpdateID != 105 {
		t.Fatalf("PrevLastUpdateID = %d, want 105", u.PrevLastUpdateID)
	}
}

func TestSpotStyleUpdaterRejectsDesync(t *testing.T) {
	t.Parallel()
	u := NewSpotStyleUpdater(100)
	b := book.NewFromSnapshot(nil, nil)

	if _, err := u.Apply(&b, Delta{FirstUpdateID: 95, LastUpdateID: 105}, nil); err != nil {
		t.Fatalf("first update: %v", err)
	}

	_, err := u.Apply(&b, Delta{FirstUpdateID: 200, LastUpdateID: 210}, nil)
	if _, ok := err.(*streamerr.InvalidSequenceError); !ok {
		t.Fatalf("err = %v, want *streamerr.InvalidSequenceError", err)
	}
}

func TestAbsoluteSequenceUpdaterSnapshotReplacesBook(t *testing.T) {
	t.Parallel()
	u := NewAbsoluteSequenceUpdater()
	b := book.NewFromSnapshot([]book.Level{{Price: 1, Amount: 1}}, nil)

	emit, err := u.Apply(&b, Delta{
		Action:       "snapshot",
		LastUpdateID: 42,
		Bids:         []book.Level{{Price: 100, Amount: 2}},
		Asks:         []book.Level{{Price: 101, Amount: 3}},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !emit {
		t.Fatal("snapshot action must emit")
	}
	if len(b.Bids.Levels()) != 1 || b.Bids.Levels()[0].Price != 100 {
		t.Fatalf("book was not replaced by snapshot: %+v", b.Bids.Levels())
	}
	if u.PrevSeq != 42 {
		t.Fatalf("PrevSeq = %d, want 42", u.PrevSeq)
	}
}

func TestAbsoluteSequenceUpdaterKeepaliveEmitsNothing(t *testing.T) {
	t.Parallel()
	u := NewAbsoluteSequenceUpdater()
	b := book.NewFromSnapshot(nil, nil)

	if _, err := u.Apply(&b, Delta{Action: "snapshot", LastUpdateID: 10}, nil); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	// seq == prev_seq == 10: a keepalive, must be accepted but not emit.
	emit, err := u.Apply(&b, Delta{LastUpdateID: 10, PrevUpdateID: 10}, nil)
	if err != nil {
		t.Fatalf("unexpected error on keepalive: %v", err)
	}
	if emit {
		t.Fatal("keepalive must not emit")
	}
}

func TestAbsoluteSequenceUpdaterRejectsPrevSeqMismatch(t *testing.T) {
	t.Parallel()
	u := NewAbsoluteSequenceUpdater()
	b := book.NewFromSnapshot(nil, nil)

	if _, err := u.Apply(&b, Delta{Action: "snapshot", LastUpdateID: 10}, nil); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	_, err := u.Apply(&b, Delta{LastUpdateID: 20, PrevUpdateID: 15}, nil)
	if _, ok := err.(*streamerr.InvalidSequenceError); !ok {
		t.Fatalf("err = %v, want *streamerr.InvalidSequenceError", err)
	}
}

