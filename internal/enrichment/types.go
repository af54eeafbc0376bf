package enrichment

import "github.com/kapu/delphi-enrich-web/internal/domain"

type EnrichRequest struct {
	Name      string `json:"name"`
	SocialURL string `json:"social_url,omitempty"`
}

// EnrichResponse carries one of two shapes, told apart by RequireSocialURL and
// Candidates.
type EnrichResponse struct {
	RequireSocialURL bool               `json:"require_social_url"`
	Message          string             `json:"message,omitempty"`
	Location         string             `json:"location,omitempty"`
	Candidates       []domain.Candidate `json:"candidates,omitempty"`

	// HasCandidates is true when the key was present, even with an empty list.
	HasCandidates bool `json:"-"`
}

type ConfirmRequest struct {
	Name        string `json:"name"`
	LinkedInURL string `json:"linkedin_url"`
}

type FullProfileRequest struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}
