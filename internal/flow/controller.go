package flow

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"

	"github.com/kapu/delphi-enrich-web/internal/constants"
	"github.com/kapu/delphi-enrich-web/internal/domain"
	"github.com/kapu/delphi-enrich-web/internal/enrichment"
	"github.com/kapu/delphi-enrich-web/pkg/errors"
	"go.uber.org/zap"
)

// ErrBusy is returned when a networked operation is attempted while another
// one is still in flight on the same controller.
var ErrBusy = stderrors.New("another request is already in progress")

// ErrNoURLRequested is returned when a URL is submitted but the flow never
// asked for one.
var ErrNoURLRequested = stderrors.New("no social URL was requested")

// ErrNotOffered is returned when an action arrives for a panel that is not
// showing, typically from a stale tab. The state is left untouched.
var ErrNotOffered = stderrors.New("action not offered in the current state")

// EnrichmentAPI is the part of the enrichment client the controller needs.
type EnrichmentAPI interface {
	Enrich(ctx context.Context, req enrichment.EnrichRequest) (*enrichment.EnrichResponse, error)
	ConfirmProfile(ctx context.Context, req enrichment.ConfirmRequest) (*domain.Profile, error)
	FullProfile(ctx context.Context, req enrichment.FullProfileRequest) (*domain.Profile, error)
}

// Controller owns the interaction state of one browser session. The mutex is
// never held across a network call; the Loading flag keeps networked
// operations exclusive instead.
type Controller struct {
	mu     sync.Mutex
	state  domain.State
	epoch  uint64
	api    EnrichmentAPI
	sink   ConfirmationSink
	logger *zap.Logger
}

func NewController(api EnrichmentAPI, sink ConfirmationSink, logger *zap.Logger) *Controller {
	return Restore(nil, api, sink, logger)
}

// Restore builds a controller around a previously saved snapshot. A snapshot
// taken mid-request never locks the session: Loading is cleared.
func Restore(snapshot *domain.State, api EnrichmentAPI, sink ConfirmationSink, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = NewLogSink(logger)
	}
	c := &Controller{api: api, sink: sink, logger: logger}
	if snapshot != nil {
		c.state = *snapshot.Clone()
		c.state.Loading = false
	}
	return c
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() *domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

func (c *Controller) Mode() domain.InteractionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Mode()
}

// SetName records the name field without submitting it.
func (c *Controller) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Name = name
}

// StartEnrichment submits a new name search.
func (c *Controller) StartEnrichment(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)

	c.mu.Lock()
	if c.state.Loading {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state.Name = name
	c.state.Candidates = nil
	c.state.Profile = nil
	c.state.Confirmed = false
	c.state.Error = ""
	if name == "" {
		err := errors.NewValidationError(constants.Messages.NameRequired, "name", name)
		c.state.Error = err.Message
		c.mu.Unlock()
		return err
	}
	req := c.beginEnrichLocked("")
	epoch := c.epoch
	c.mu.Unlock()

	return c.runEnrich(ctx, epoch, req)
}

// SubmitSocialURL answers the URL prompt. Which call fires depends on why the
// prompt was shown: re-enrichment, or confirmation after every candidate was
// rejected. Never both.
func (c *Controller) SubmitSocialURL(ctx context.Context, url string) error {
	url = strings.TrimSpace(url)

	c.mu.Lock()
	if c.state.Loading {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state.SocialURL = url
	if url == "" {
		err := errors.NewValidationError(constants.Messages.URLRequired, "social_url", url)
		c.state.Error = err.Message
		c.mu.Unlock()
		return err
	}

	switch c.state.ManualMode {
	case domain.ManualModeEnrich:
		req := c.beginEnrichLocked(url)
		epoch := c.epoch
		c.mu.Unlock()
		return c.runEnrich(ctx, epoch, req)
	case domain.ManualModeConfirm:
		if strings.TrimSpace(c.state.Name) == "" {
			err := errors.NewValidationError(constants.Messages.NameRequired, "name", c.state.Name)
			c.state.Error = err.Message
			c.mu.Unlock()
			return err
		}
		req := c.beginConfirmLocked()
		epoch := c.epoch
		c.mu.Unlock()
		return c.runConfirmProfile(ctx, epoch, req)
	default:
		c.mu.Unlock()
		return ErrNoURLRequested
	}
}

// SelectCandidate fetches the full profile for the candidate at index. When
// expectURL is set it must match that candidate's URL, so a page rendered
// before a newer search cannot pick someone else. A fetch failure resets the
// whole flow, keeping only the error message.
func (c *Controller) SelectCandidate(ctx context.Context, index int, expectURL string) error {
	c.mu.Lock()
	if c.state.Loading {
		c.mu.Unlock()
		return ErrBusy
	}
	if index < 0 || index >= len(c.state.Candidates) ||
		(expectURL != "" && c.state.Candidates[index].URL != expectURL) {
		err := errors.NewValidationError(constants.Messages.StaleCandidate, "index", index)
		c.state.Error = err.Message
		c.mu.Unlock()
		return err
	}
	candidate := c.state.Candidates[index]
	name := c.state.Name
	c.state.Loading = true
	c.state.Error = ""
	c.state.Candidates = nil
	epoch := c.epoch
	c.mu.Unlock()

	defer c.finish(epoch)

	profile, err := c.api.FullProfile(ctx, enrichment.FullProfileRequest{
		Name:    name,
		Summary: candidate.Summary,
		URL:     candidate.URL,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return err
	}
	if err != nil {
		// Loading stays set until finish runs.
		c.state = domain.State{
			Loading: true,
			Error:   errors.DisplayMessage(err, constants.Messages.FullProfileFailed),
		}
		c.logger.Warn("Candidate selection failed, flow reset",
			zap.String("candidate_url", candidate.URL),
			zap.Error(err),
		)
		return err
	}

	c.state.Profile = profile
	c.logger.Debug("Candidate selected", zap.String("candidate_url", candidate.URL))
	return nil
}

// RejectAllCandidates asks for a LinkedIn URL to confirm manually. It only
// acts while candidates are listed.
func (c *Controller) RejectAllCandidates() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Loading {
		return ErrBusy
	}
	if c.state.Mode() != domain.StateChoosingCandidate {
		return ErrNotOffered
	}
	c.state.Error = ""
	c.state.ManualMode = domain.ManualModeConfirm
	c.state.RequireURL = true
	c.state.URLMessage = constants.Messages.NoneMatchedPrompt
	c.state.Candidates = nil
	return nil
}

// ConfirmProfile marks the reviewed profile as confirmed and hands it to the
// confirmation sink. Sink failures are logged, never shown.
func (c *Controller) ConfirmProfile(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Loading {
		c.mu.Unlock()
		return ErrBusy
	}
	profile := c.state.Profile
	name := c.state.Name
	if profile == nil {
		c.mu.Unlock()
		return errors.NewValidationError("no profile to confirm", "profile", nil)
	}
	c.state.Confirmed = true
	c.state.Profile = nil
	c.state.Candidates = nil
	c.state.RequireURL = false
	c.state.ManualMode = domain.ManualModeNone
	c.mu.Unlock()

	if err := c.sink.ProfileConfirmed(ctx, name, profile); err != nil {
		c.logger.Warn("Confirmation sink failed", zap.String("name", name), zap.Error(err))
	}
	return nil
}

// RejectProfile discards the profile and returns to the name form with the
// name kept. It only acts while a profile is under review.
func (c *Controller) RejectProfile() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Loading {
		return ErrBusy
	}
	if c.state.Mode() != domain.StateReviewingProfile {
		return ErrNotOffered
	}
	c.state.Profile = nil
	c.state.Candidates = nil
	c.state.RequireURL = false
	c.state.ManualMode = domain.ManualModeNone
	c.state.URLMessage = ""
	c.state.SocialURL = ""
	c.state.Confirmed = false
	return nil
}

// Restart clears every field unconditionally. A request still in flight
// finishes, but its result is dropped.
func (c *Controller) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Reset()
	c.epoch++
}

// must be called with lock held
func (c *Controller) beginEnrichLocked(socialURL string) enrichment.EnrichRequest {
	c.state.Loading = true
	c.state.Error = ""
	c.state.RequireURL = false
	c.state.ManualMode = domain.ManualModeNone
	return enrichment.EnrichRequest{Name: c.state.Name, SocialURL: socialURL}
}

func (c *Controller) runEnrich(ctx context.Context, epoch uint64, req enrichment.EnrichRequest) error {
	defer c.finish(epoch)

	resp, err := c.api.Enrich(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return err
	}
	if err != nil {
		c.state.Error = errors.DisplayMessage(err, constants.Messages.EnrichFailed)
		return err
	}

	c.state.Candidates = nil
	c.state.Profile = nil
	switch {
	case resp.RequireSocialURL:
		c.state.RequireURL = true
		c.state.ManualMode = domain.ManualModeEnrich
		c.state.URLMessage = resp.Message
		if c.state.URLMessage == "" {
			c.state.URLMessage = constants.Messages.DefaultURLPrompt
		}
		if resp.Location != "" {
			c.state.Location = resp.Location
		}
	case resp.HasCandidates:
		c.state.Location = resp.Location
		c.state.Candidates = resp.Candidates
	default:
		c.state.Error = constants.Messages.UnexpectedResponse
		return errors.NewAPIError("malformed enrich response", 502, nil)
	}

	c.logger.Debug("Enrichment step complete",
		zap.String("mode", c.state.Mode().String()),
		zap.Int("candidates", len(c.state.Candidates)),
	)
	return nil
}

// must be called with lock held
func (c *Controller) beginConfirmLocked() enrichment.ConfirmRequest {
	c.state.Loading = true
	c.state.Error = ""
	q := c.state.Query()
	return enrichment.ConfirmRequest{Name: q.Name, LinkedInURL: q.SocialURL}
}

func (c *Controller) runConfirmProfile(ctx context.Context, epoch uint64, req enrichment.ConfirmRequest) error {
	defer c.finish(epoch)

	profile, err := c.api.ConfirmProfile(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return err
	}
	if err != nil {
		c.state.Error = errors.DisplayMessage(err, constants.Messages.ConfirmFailed)
		return err
	}

	c.state.Profile = profile
	c.state.RequireURL = false
	c.state.ManualMode = domain.ManualModeNone
	return nil
}

// finish releases the Loading flag on both success and failure paths, unless
// a restart already handed the state to someone else.
func (c *Controller) finish(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch == epoch {
		c.state.Loading = false
	}
}
