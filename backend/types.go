package backend

// Article is one aggregated feed entry on the wire.
type Article struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Summary   string `json:"summary,omitempty"`
	Published string `json:"published,omitempty"`
	Source    string `json:"source,omitempty"`
}

// Highlight is a condensed per-article summary on the wire.
type Highlight struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Source  string `json:"source,omitempty"`
	Summary string `json:"summary"`
}

// Tweet is one generated social post on the wire.
type Tweet struct {
	ID            string `json:"id"`
	Content       string `json:"content"`
	SummaryTitle  string `json:"summary_title"`
	SummaryLink   string `json:"summary_link"`
	SummarySource string `json:"summary_source"`
}
