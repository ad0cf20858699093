package source

// MinValidChars is the validity threshold: a fetched page whose flattened
// text is this short carries too little signal to ground an answer.
const MinValidChars = 100

// Source is a fetched, truncated, embedded web page used as generation
// context. Text is whitespace-collapsed and truncated; Embedding is nil when
// the embedding call failed, which the ranker scores as zero similarity.
type Source struct {
	URL       string
	Title     string
	Text      string
	Embedding []float64
}

// Valid reports whether the source carries enough text to be usable.
func (s Source) Valid() bool {
	return len(s.Text) > MinValidChars
}
