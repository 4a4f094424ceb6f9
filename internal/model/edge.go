package model

// Edge is a scored link discovered while expanding From.
// Weight is a relevance score: higher means To is believed to be
// closer in meaning to the destination. Scores are normally in
// [0, 1.2], the upper end reached only with an interest boost.
type Edge struct {
	// From is the document whose content contained the link.
	From DocumentID `json:"from"`

	// To is the admitted candidate the link points to.
	To DocumentID `json:"to"`

	// Weight is the relevance score of To against the destination.
	Weight float64 `json:"weight"`
}

// IsSelfLoop reports whether the edge points back at its own source.
func (e Edge) IsSelfLoop() bool {
	return e.From == e.To
}
