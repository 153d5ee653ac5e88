package gate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

const markerCookie = "unibuild_auth"

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	SetCookie(name, value string)
	GetLastResponseBody() []byte
}

// RegisterSteps registers edge gate and session steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &gateSteps{tc: tc}

	ctx.Step(`^I am not signed in$`, steps.notSignedIn)
	ctx.Step(`^my browser still carries a session marker$`, steps.staleMarker)
	ctx.Step(`^the session endpoint should report signed out$`, steps.sessionReportsSignedOut)
}

type gateSteps struct {
	tc TestContext
}

func (s *gateSteps) notSignedIn(ctx context.Context) error {
	return nil
}

// staleMarker sets the marker cookie without any stored session behind it.
func (s *gateSteps) staleMarker(ctx context.Context) error {
	s.tc.SetCookie(markerCookie, "1")
	return nil
}

func (s *gateSteps) sessionReportsSignedOut(ctx context.Context) error {
	if err := s.tc.GET("/api/session"); err != nil {
		return err
	}
	var body struct {
		Authenticated bool `json:"authenticated"`
		Loading       bool `json:"loading"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &body); err != nil {
		return fmt.Errorf("decode session response: %w", err)
	}
	if body.Authenticated || body.Loading {
		return fmt.Errorf("expected signed out, got authenticated=%t loading=%t", body.Authenticated, body.Loading)
	}
	return nil
}
