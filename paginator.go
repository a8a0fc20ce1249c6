package newsflow

// Paginator is a presentation-only cursor over the highlight list. It
// never owns the list; every movement clamps against the current length.
type Paginator struct {
	Cursor int `json:"cursor"`
}

// Next advances the cursor, clamped to the last valid index.
func (p *Paginator) Next(length int) {
	p.Cursor++
	p.Clamp(length)
}

// Previous moves the cursor back, clamped to zero.
func (p *Paginator) Previous(length int) {
	p.Cursor--
	p.Clamp(length)
}

// Reset returns the cursor to the first item.
func (p *Paginator) Reset() {
	p.Cursor = 0
}

// Clamp forces the cursor into [0, length-1]. A cursor past the end of
// a shorter list lands on its last item, or 0 when the list is empty.
func (p *Paginator) Clamp(length int) {
	if p.Cursor >= length {
		p.Cursor = length - 1
	}
	if p.Cursor < 0 {
		p.Cursor = 0
	}
}
