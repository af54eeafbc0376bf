package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseProfileResolvesDisplayFields(t *testing.T) {
	payload := []byte(`{
		"name": {"full": "Jane Doe"},
		"linkedin": {
			"profile_pic": "https://img/jane.png",
			"title": "Engineer",
			"org": "Acme Labs",
			"location": {"text": "New York"},
			"summary": "Builds things."
		},
		"company": {"name": "Acme"},
		"extra": [1, 2, 3]
	}`)

	p, err := ParseProfile(payload)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	checks := []struct {
		field string
		get   func() (string, bool)
		want  string
	}{
		{"full name", p.FullName, "Jane Doe"},
		{"title", p.Title, "Engineer"},
		{"organization", p.Organization, "Acme"},
		{"location", p.Location, "New York"},
		{"picture", p.PictureURL, "https://img/jane.png"},
		{"summary", p.SummaryText, "Builds things."},
	}
	for _, c := range checks {
		got, ok := c.get()
		if !ok || got != c.want {
			t.Fatalf("%s: expected %q, got %q (present=%v)", c.field, c.want, got, ok)
		}
	}

	if !strings.Contains(p.PrettyRaw(), `"extra"`) {
		t.Fatalf("expected raw payload to keep unknown keys, got %s", p.PrettyRaw())
	}
}

func TestProfileAccessorsReportAbsence(t *testing.T) {
	p, err := ParseProfile([]byte(`{"linkedin": {"org": "Initech", "title": "  "}, "summary": "top level"}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, ok := p.FullName(); ok {
		t.Fatalf("full name should be absent")
	}
	if _, ok := p.Title(); ok {
		t.Fatalf("blank title should count as absent")
	}
	if org, ok := p.Organization(); !ok || org != "Initech" {
		t.Fatalf("expected LinkedIn org fallback, got %q", org)
	}
	if _, ok := p.Location(); ok {
		t.Fatalf("location should be absent")
	}
	if s, ok := p.SummaryText(); !ok || s != "top level" {
		t.Fatalf("expected top-level summary fallback, got %q", s)
	}

	var nilProfile *Profile
	if _, ok := nilProfile.Title(); ok {
		t.Fatalf("nil profile has no title")
	}
}

func TestParseProfileDropsMistypedSections(t *testing.T) {
	p, err := ParseProfile([]byte(`{
		"name": {"full": "Jane Doe"},
		"linkedin": {"title": "Engineer", "location": "New York", "org": 42},
		"company": ["Acme"],
		"summary": {"text": "nested"}
	}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if name, ok := p.FullName(); !ok || name != "Jane Doe" {
		t.Fatalf("expected full name, got %q", name)
	}
	if title, ok := p.Title(); !ok || title != "Engineer" {
		t.Fatalf("expected title, got %q", title)
	}
	if _, ok := p.Location(); ok {
		t.Fatalf("string location should count as absent")
	}
	if _, ok := p.Organization(); ok {
		t.Fatalf("numeric org and array company should count as absent")
	}
	if _, ok := p.SummaryText(); ok {
		t.Fatalf("object summary should count as absent")
	}
	if !strings.Contains(p.PrettyRaw(), `"New York"`) {
		t.Fatalf("raw payload should be kept as received, got %s", p.PrettyRaw())
	}

	p, err = ParseProfile([]byte(`{"linkedin": "not an object", "name": null}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.LinkedIn != nil || p.Name != nil {
		t.Fatalf("mistyped sections should be absent, got %+v", p)
	}
}

func TestParseProfileRejectsNonObjectBodies(t *testing.T) {
	for _, body := range []string{`[1,2]`, `"profile"`, `null`, `not json`, ``} {
		if _, err := ParseProfile([]byte(body)); err == nil {
			t.Fatalf("expected error for body %q", body)
		}
	}
}

func TestStateModePriority(t *testing.T) {
	profile := &Profile{Summary: "x"}
	cases := []struct {
		name  string
		state State
		want  InteractionState
	}{
		{"initial", State{}, StateEnteringName},
		{"error only", State{Error: "boom"}, StateError},
		{"awaiting url", State{RequireURL: true, Error: "boom"}, StateAwaitingURL},
		{"candidates beat url", State{RequireURL: true, Candidates: []Candidate{{Summary: "a"}}}, StateChoosingCandidate},
		{"profile beats candidates", State{Profile: profile, Candidates: []Candidate{{Summary: "a"}}}, StateReviewingProfile},
		{"confirmed beats all", State{Confirmed: true, Profile: profile, RequireURL: true}, StateConfirmed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.state
			if got := s.Mode(); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestStateCloneIsDeep(t *testing.T) {
	score := 7.0
	raw, _ := json.Marshal(map[string]any{"summary": "s"})
	s := &State{
		Name:       "Jane",
		Candidates: []Candidate{{Summary: "Jane @ Acme", URL: "https://li/jane", Score: &score}},
		Profile:    &Profile{LinkedIn: &LinkedInProfile{Title: "Engineer", Location: &ProfileLocation{Text: "NYC"}}, Raw: raw},
	}

	clone := s.Clone()
	*clone.Candidates[0].Score = 1
	clone.Profile.LinkedIn.Location.Text = "LA"
	clone.Name = "John"

	if s.Candidates[0].ScoreValue() != 7 {
		t.Fatalf("candidate score leaked through clone")
	}
	if loc, _ := s.Profile.Location(); loc != "NYC" {
		t.Fatalf("profile location leaked through clone, got %q", loc)
	}
	if s.Name != "Jane" {
		t.Fatalf("name leaked through clone")
	}
}

func TestStateRoundTripsThroughJSON(t *testing.T) {
	p, err := ParseProfile([]byte(`{"name":{"full":"Jane Doe"},"linkedin":{"title":"Engineer"}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	s := &State{Name: "Jane Doe", Profile: p, ManualMode: ManualModeConfirm, RequireURL: true}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded State
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if title, _ := decoded.Profile.Title(); title != "Engineer" {
		t.Fatalf("expected title to survive, got %q", title)
	}
	if decoded.ManualMode != ManualModeConfirm || decoded.Mode() != StateReviewingProfile {
		t.Fatalf("unexpected decoded state %+v", decoded)
	}
}
