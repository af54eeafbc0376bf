package web

import (
	"strconv"

	"github.com/kapu/delphi-enrich-web/internal/domain"
)

// ProfilePanel selects how a profile under review is rendered.
type ProfilePanel string

const (
	ProfilePanelCard ProfilePanel = "card"
	ProfilePanelRaw  ProfilePanel = "raw"
)

type pageView struct {
	Mode    string
	Name    string
	Error   string
	Loading bool

	URLMessage string
	SocialURL  string
	URLButton  string

	Location   string
	Candidates []candidateView

	Profile  *profileView
	RawPanel bool
}

type candidateView struct {
	Index   int
	Summary string
	URL     string
	Score   string
}

type profileView struct {
	FullName   string
	Title      string
	Company    string
	Location   string
	Summary    string
	PictureURL string
	Raw        string
}

func buildPageView(state *domain.State, panel ProfilePanel) pageView {
	view := pageView{
		Mode:       state.Mode().String(),
		Name:       state.Name,
		Error:      state.Error,
		Loading:    state.Loading,
		URLMessage: state.URLMessage,
		SocialURL:  state.SocialURL,
		Location:   state.Location,
		RawPanel:   panel == ProfilePanelRaw,
	}

	switch {
	case state.Loading && state.ManualMode == domain.ManualModeConfirm:
		view.URLButton = "Confirming..."
	case state.Loading:
		view.URLButton = "Enriching..."
	case state.ManualMode == domain.ManualModeConfirm:
		view.URLButton = "Confirm URL"
	default:
		view.URLButton = "Submit URL"
	}

	for i, c := range state.Candidates {
		cv := candidateView{Index: i, Summary: c.Summary, URL: c.URL}
		if c.HasScore() {
			cv.Score = strconv.FormatFloat(c.ScoreValue(), 'f', -1, 64)
		}
		view.Candidates = append(view.Candidates, cv)
	}

	if state.Profile != nil {
		view.Profile = newProfileView(state.Profile)
	}
	return view
}

func newProfileView(p *domain.Profile) *profileView {
	pv := &profileView{
		FullName: orDefault(p.FullName, "Unknown"),
		Title:    orDefault(p.Title, "No title available"),
		Company:  orDefault(p.Organization, "Not specified"),
		Location: orDefault(p.Location, "Not specified"),
		Raw:      p.PrettyRaw(),
	}
	pv.Summary, _ = p.SummaryText()
	pv.PictureURL, _ = p.PictureURL()
	return pv
}

func orDefault(get func() (string, bool), fallback string) string {
	if v, ok := get(); ok {
		return v
	}
	return fallback
}
