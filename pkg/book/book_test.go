package book

import (
	"testing"

	"github.com/marketpulse/streams/pkg/side"
)

func TestUpsertSingleInsertsNewLevel(t *testing.T) {
	t.Parallel()
	s := NewSide(side.Buy, nil)
	s.UpsertSingle(Level{Price: 100, Amount: 1}, nil)

	if got := s.Levels(); len(got) != 1 || got[0].Price != 100 {
		t.Fatalf("levels = %+v, want one level at 100", got)
	}
}

func TestUpsertSingleReplacesExistingLevel(t *testing.T) {
	t.Parallel()
	s := NewSide(side.Buy, []Level{{Price: 100, Amount: 1}})
	s.UpsertSingle(Level{Price: 100, Amount: 5}, nil)

	got := s.Levels()
	if len(got) != 1 || got[0].Amount != 5 {
		t.Fatalf("levels = %+v, want amount replaced to 5", got)
	}
}

func TestUpsertSingleRemovesOnZeroAmount(t *testing.T) {
	t.Parallel()
	s := NewSide(side.Buy, []Level{{Price: 100, Amount: 1}})
	s.UpsertSingle(Level{Price: 100, Amount: 0}, nil)

	if got := s.Levels(); len(got) != 0 {
		t.Fatalf("levels = %+v, want level removed", got)
	}
}

func TestUpsertSingleAbsentZeroAmountIsNoop(t *testing.T) {
	t.Parallel()
	s := NewSide(side.Buy, nil)
	s.UpsertSingle(Level{Price: 100, Amount: 0}, nil)

	if got := s.Levels(); len(got) != 0 {
		t.Fatalf("levels = %+v, want no-op to leave side empty", got)
	}
}

func TestSortedOrdersBidsDescendingAsksAscending(t *testing.T) {
	t.Parallel()
	bids := NewSide(side.Buy, []Level{{Price: 100}, {Price: 105}, {Price: 95}})
	asks := NewSide(side.Sell, []Level{{Price: 110}, {Price: 102}, {Price: 115}})

	gotBids := bids.Sorted()
	if gotBids[0].Price != 105 || gotBids[1].Price != 100 || gotBids[2].Price != 95 {
		t.Fatalf("bids sorted = %+v, want descending", gotBids)
	}

	gotAsks := asks.Sorted()
	if gotAsks[0].Price != 102 || gotAsks[1].Price != 110 || gotAsks[2].Price != 115 {
		t.Fatalf("asks sorted = %+v, want ascending", gotAsks)
	}
}

func TestNewFromSnapshotAndSnapshotAreIndependent(t *testing.T) {
	t.Parallel()
	ob := NewFromSnapshot([]Level{{Price: 1, Amount: 1}}, []Level{{Price: 2, Amount: 1}})
	snap := ob.Snapshot()

	ob.Bids.UpsertSingle(Level{Price: 1, Amount: 0}, nil)

	if len(snap.Bids.Levels()) != 1 {
		t.Fatalf("mutating the live book must not affect a previously taken snapshot")
	}
}
