package domain

// Query is the user-supplied search input.
type Query struct {
	Name      string `json:"name"`
	SocialURL string `json:"social_url,omitempty"`
}

// Candidate is one disambiguation option returned by the enrichment service.
type Candidate struct {
	Summary string   `json:"summary"`
	URL     string   `json:"url"`
	Score   *float64 `json:"score,omitempty"`
}

// HasScore reports whether the service attached a match score.
func (c Candidate) HasScore() bool {
	return c.Score != nil
}

// ScoreValue returns the match score, or 0 when absent.
func (c Candidate) ScoreValue() float64 {
	if c.Score == nil {
		return 0
	}
	return *c.Score
}

func cloneCandidates(src []Candidate) []Candidate {
	if src == nil {
		return nil
	}
	out := make([]Candidate, len(src))
	for i, c := range src {
		out[i] = c
		if c.Score != nil {
			score := *c.Score
			out[i].Score = &score
		}
	}
	return out
}
