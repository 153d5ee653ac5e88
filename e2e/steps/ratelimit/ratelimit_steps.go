package ratelimit

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POSTForm(path string, form url.Values) error
	GetLastResponseStatus() int
	GetLastResponseHeader(key string) string
}

// RegisterSteps registers sign-in throttling steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I submit the sign-in form without credentials (\d+) times$`, steps.submitBlankSignIn)
	ctx.Step(`^I submit the sign-in form without credentials again$`, steps.submitBlankSignInOnce)
	ctx.Step(`^the response should ask me to retry later$`, steps.shouldAskToRetry)
}

type ratelimitSteps struct {
	tc TestContext
}

// submitBlankSignIn posts forms the portal rejects before calling the API, so
// only the throttle counts them.
func (s *ratelimitSteps) submitBlankSignIn(ctx context.Context, times int) error {
	for i := range times {
		if err := s.submitBlankSignInOnce(ctx); err != nil {
			return err
		}
		if got := s.tc.GetLastResponseStatus(); got != 400 {
			return fmt.Errorf("attempt %d: expected 400, got %d", i+1, got)
		}
	}
	return nil
}

func (s *ratelimitSteps) submitBlankSignInOnce(ctx context.Context) error {
	return s.tc.POSTForm("/login", url.Values{"email": {""}, "password": {""}})
}

func (s *ratelimitSteps) shouldAskToRetry(ctx context.Context) error {
	if got := s.tc.GetLastResponseStatus(); got != 429 {
		return fmt.Errorf("expected 429, got %d", got)
	}
	if s.tc.GetLastResponseHeader("Retry-After") == "" {
		return fmt.Errorf("missing Retry-After header")
	}
	return nil
}
