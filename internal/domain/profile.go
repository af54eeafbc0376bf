package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Profile is the display-ready record returned once a candidate is confirmed.
// Every section is optional; the accessors below resolve display fields with
// explicit presence checks.
type Profile struct {
	Name     *ProfileName     `json:"name,omitempty"`
	LinkedIn *LinkedInProfile `json:"linkedin,omitempty"`
	Company  *Company         `json:"company,omitempty"`
	Summary  string           `json:"summary,omitempty"`

	// Raw is the payload exactly as received, kept for the debug panel.
	Raw json.RawMessage `json:"raw,omitempty"`
}

type ProfileName struct {
	Full string `json:"full,omitempty"`
}

type LinkedInProfile struct {
	ProfilePic string           `json:"profile_pic,omitempty"`
	Title      string           `json:"title,omitempty"`
	Org        string           `json:"org,omitempty"`
	Location   *ProfileLocation `json:"location,omitempty"`
	Summary    string           `json:"summary,omitempty"`
}

type ProfileLocation struct {
	Text string `json:"text,omitempty"`
}

type Company struct {
	Name string `json:"name,omitempty"`
}

// profileFields is Profile without Raw. PrettyRaw re-encodes it when a
// profile carries no raw payload.
type profileFields struct {
	Name     *ProfileName     `json:"name,omitempty"`
	LinkedIn *LinkedInProfile `json:"linkedin,omitempty"`
	Company  *Company         `json:"company,omitempty"`
	Summary  string           `json:"summary,omitempty"`
}

// ParseProfile decodes a profile payload from the enrichment service. Only a
// body that is not a JSON object is an error. Each section is read on its
// own; a section or field with an unexpected type is treated as absent.
func ParseProfile(data []byte) (*Profile, error) {
	trimmed := bytes.TrimSpace(data)
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &sections); err != nil {
		return nil, err
	}
	if sections == nil {
		return nil, errNotObject
	}

	p := &Profile{
		Summary: stringField(sections, "summary"),
		Raw:     append(json.RawMessage(nil), trimmed...),
	}
	if name, ok := objectField(sections, "name"); ok {
		p.Name = &ProfileName{Full: stringField(name, "full")}
	}
	if li, ok := objectField(sections, "linkedin"); ok {
		p.LinkedIn = &LinkedInProfile{
			ProfilePic: stringField(li, "profile_pic"),
			Title:      stringField(li, "title"),
			Org:        stringField(li, "org"),
			Summary:    stringField(li, "summary"),
		}
		if loc, ok := objectField(li, "location"); ok {
			p.LinkedIn.Location = &ProfileLocation{Text: stringField(loc, "text")}
		}
	}
	if company, ok := objectField(sections, "company"); ok {
		p.Company = &Company{Name: stringField(company, "name")}
	}
	return p, nil
}

var errNotObject = errors.New("profile payload is not a JSON object")

func objectField(m map[string]json.RawMessage, key string) (map[string]json.RawMessage, bool) {
	raw, ok := m[key]
	if !ok {
		return nil, false
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}

func stringField(m map[string]json.RawMessage, key string) string {
	raw, ok := m[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func (p *Profile) FullName() (string, bool) {
	if p == nil || p.Name == nil {
		return "", false
	}
	return nonEmpty(p.Name.Full)
}

func (p *Profile) Title() (string, bool) {
	if p == nil || p.LinkedIn == nil {
		return "", false
	}
	return nonEmpty(p.LinkedIn.Title)
}

// Organization prefers the company record over the LinkedIn org field.
func (p *Profile) Organization() (string, bool) {
	if p == nil {
		return "", false
	}
	if p.Company != nil {
		if name, ok := nonEmpty(p.Company.Name); ok {
			return name, true
		}
	}
	if p.LinkedIn != nil {
		return nonEmpty(p.LinkedIn.Org)
	}
	return "", false
}

func (p *Profile) Location() (string, bool) {
	if p == nil || p.LinkedIn == nil || p.LinkedIn.Location == nil {
		return "", false
	}
	return nonEmpty(p.LinkedIn.Location.Text)
}

func (p *Profile) PictureURL() (string, bool) {
	if p == nil || p.LinkedIn == nil {
		return "", false
	}
	return nonEmpty(p.LinkedIn.ProfilePic)
}

// SummaryText prefers the LinkedIn summary over the top-level one.
func (p *Profile) SummaryText() (string, bool) {
	if p == nil {
		return "", false
	}
	if p.LinkedIn != nil {
		if s, ok := nonEmpty(p.LinkedIn.Summary); ok {
			return s, true
		}
	}
	return nonEmpty(p.Summary)
}

// PrettyRaw returns the raw payload indented for display.
func (p *Profile) PrettyRaw() string {
	if p == nil {
		return ""
	}
	raw := p.Raw
	if len(raw) == 0 {
		encoded, err := json.Marshal(profileFields{
			Name:     p.Name,
			LinkedIn: p.LinkedIn,
			Company:  p.Company,
			Summary:  p.Summary,
		})
		if err != nil {
			return ""
		}
		raw = encoded
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// Clone returns a deep copy.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	out := &Profile{Summary: p.Summary}
	if p.Name != nil {
		name := *p.Name
		out.Name = &name
	}
	if p.LinkedIn != nil {
		li := *p.LinkedIn
		if p.LinkedIn.Location != nil {
			loc := *p.LinkedIn.Location
			li.Location = &loc
		}
		out.LinkedIn = &li
	}
	if p.Company != nil {
		company := *p.Company
		out.Company = &company
	}
	if p.Raw != nil {
		out.Raw = append(json.RawMessage(nil), p.Raw...)
	}
	return out
}

func nonEmpty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}
