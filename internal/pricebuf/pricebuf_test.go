package pricebuf

import "testing"

func TestAppendAndSnapshotBelowCapacity(t *testing.T) {
	b := New(5)
	for _, p := range []float64{100, 101, 102} {
		b.Append(p)
	}
	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	snap := b.Snapshot()
	want := []float64{100, 101, 102}
	for i := range want {
		if snap[i] != want[i] {
			t.Errorf("snap[%d] = %v, want %v", i, snap[i], want[i])
		}
	}
}

func TestEvictsOldestFirst(t *testing.T) {
	b := New(3)
	for _, p := range []float64{1, 2, 3, 4, 5} {
		b.Append(p)
	}
	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	snap := b.Snapshot()
	want := []float64{3, 4, 5}
	for i := range want {
		if snap[i] != want[i] {
			t.Errorf("snap[%d] = %v, want %v (oldest must be evicted first)", i, snap[i], want[i])
		}
	}
}

func TestLast(t *testing.T) {
	b := New(3)
	if b.Last() != 0 {
		t.Errorf("empty Last() = %v, want 0", b.Last())
	}
	for _, p := range []float64{7, 8, 9, 10} {
		b.Append(p)
		if b.Last() != p {
			t.Errorf("Last() = %v, want %v", b.Last(), p)
		}
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	b := New(3)
	b.Append(1)
	snap := b.Snapshot()
	b.Append(2)
	if snap[0] != 1 || len(snap) != 1 {
		t.Errorf("snapshot changed after append: %v", snap)
	}
}

func TestReset(t *testing.T) {
	b := New(3)
	for _, p := range []float64{1, 2, 3, 4} {
		b.Append(p)
	}
	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", b.Len())
	}
	b.Append(9)
	snap := b.Snapshot()
	if len(snap) != 1 || snap[0] != 9 {
		t.Errorf("snapshot after reset = %v, want [9]", snap)
	}
}
