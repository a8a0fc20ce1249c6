package newsflow

import "testing"

func TestPaginatorBounds(t *testing.T) {
	var p Paginator

	p.Next(3)
	p.Next(3)
	if p.Cursor != 2 {
		t.Errorf("cursor = %d, want 2", p.Cursor)
	}
	p.Next(3)
	if p.Cursor != 2 {
		t.Errorf("cursor = %d, want 2 (no overshoot)", p.Cursor)
	}

	p.Previous(3)
	p.Previous(3)
	if p.Cursor != 0 {
		t.Errorf("cursor = %d, want 0", p.Cursor)
	}
	p.Previous(3)
	if p.Cursor != 0 {
		t.Errorf("cursor = %d, want 0 (no underflow)", p.Cursor)
	}
}

func TestPaginatorEmptyList(t *testing.T) {
	var p Paginator
	p.Next(0)
	p.Previous(0)
	if p.Cursor != 0 {
		t.Errorf("cursor = %d, want 0 on empty list", p.Cursor)
	}
}

func TestPaginatorClampAfterShrink(t *testing.T) {
	p := Paginator{Cursor: 4}
	p.Clamp(2)
	if p.Cursor != 1 {
		t.Errorf("cursor = %d, want 1 after shrinking to 2 items", p.Cursor)
	}
	p.Clamp(0)
	if p.Cursor != 0 {
		t.Errorf("cursor = %d, want 0 when list is empty", p.Cursor)
	}
}
