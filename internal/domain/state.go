package domain

// ManualMode records why the URL prompt is showing.
type ManualMode string

const (
	ManualModeNone    ManualMode = ""
	ManualModeEnrich  ManualMode = "enrich"
	ManualModeConfirm ManualMode = "confirm"
)

func (m ManualMode) String() string {
	if m == ManualModeNone {
		return "none"
	}
	return string(m)
}

// InteractionState is the mode the flow is in; it selects the visible panel.
type InteractionState string

const (
	StateEnteringName      InteractionState = "entering-name"
	StateAwaitingURL       InteractionState = "awaiting-url"
	StateChoosingCandidate InteractionState = "choosing-candidate"
	StateReviewingProfile  InteractionState = "reviewing-profile"
	StateConfirmed         InteractionState = "confirmed"
	StateError             InteractionState = "error"
)

func (s InteractionState) String() string {
	return string(s)
}

// State is everything one browser session knows about the flow.
type State struct {
	Name       string      `json:"name"`
	SocialURL  string      `json:"social_url"`
	Candidates []Candidate `json:"candidates,omitempty"`
	Location   string      `json:"location"`
	RequireURL bool        `json:"require_url"`
	ManualMode ManualMode  `json:"manual_mode"`
	URLMessage string      `json:"url_message"`
	Profile    *Profile    `json:"profile,omitempty"`
	Loading    bool        `json:"loading"`
	Error      string      `json:"error"`
	Confirmed  bool        `json:"confirmed"`
}

// NewState returns the initial entering-name state.
func NewState() *State {
	return &State{}
}

// Mode derives the interaction state using the fixed panel priority:
// confirmed > profile > candidates > awaiting URL > entering name.
func (s *State) Mode() InteractionState {
	switch {
	case s == nil:
		return StateEnteringName
	case s.Confirmed:
		return StateConfirmed
	case s.Profile != nil:
		return StateReviewingProfile
	case len(s.Candidates) > 0:
		return StateChoosingCandidate
	case s.RequireURL:
		return StateAwaitingURL
	case s.Error != "":
		return StateError
	default:
		return StateEnteringName
	}
}

// Reset returns every field to its initial value.
func (s *State) Reset() {
	*s = State{}
}

// Query returns the search input currently held by the state.
func (s *State) Query() Query {
	return Query{Name: s.Name, SocialURL: s.SocialURL}
}

// Clone returns a deep copy suitable for snapshots.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Candidates = cloneCandidates(s.Candidates)
	out.Profile = s.Profile.Clone()
	return &out
}
