package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	GetLastResponseStatus() int
	GetLastResponseHeader(key string) string
	GetLastResponseBody() []byte
}

// RegisterSteps registers generic request and assertion steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the portal is running$`, steps.portalIsRunning)
	ctx.Step(`^I visit "([^"]*)"$`, steps.visit)
	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^I should be redirected to "([^"]*)"$`, steps.redirectedTo)
	ctx.Step(`^the page should contain "([^"]*)"$`, steps.pageShouldContain)
	ctx.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, steps.headerShouldBe)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) portalIsRunning(ctx context.Context) error {
	if err := s.tc.GET("/healthz"); err != nil {
		return err
	}
	if got := s.tc.GetLastResponseStatus(); got != 200 {
		return fmt.Errorf("healthz returned %d: %s", got, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *commonSteps) visit(ctx context.Context, path string) error {
	return s.tc.GET(path)
}

func (s *commonSteps) statusShouldBe(ctx context.Context, want int) error {
	if got := s.tc.GetLastResponseStatus(); got != want {
		return fmt.Errorf("expected status %d, got %d", want, got)
	}
	return nil
}

func (s *commonSteps) redirectedTo(ctx context.Context, location string) error {
	status := s.tc.GetLastResponseStatus()
	if status < 300 || status >= 400 {
		return fmt.Errorf("expected a redirect, got %d", status)
	}
	if got := s.tc.GetLastResponseHeader("Location"); got != location {
		return fmt.Errorf("expected redirect to %q, got %q", location, got)
	}
	return nil
}

func (s *commonSteps) pageShouldContain(ctx context.Context, text string) error {
	if !strings.Contains(string(s.tc.GetLastResponseBody()), text) {
		return fmt.Errorf("page does not contain %q", text)
	}
	return nil
}

func (s *commonSteps) headerShouldBe(ctx context.Context, key, want string) error {
	if got := s.tc.GetLastResponseHeader(key); got != want {
		return fmt.Errorf("expected header %s=%q, got %q", key, want, got)
	}
	return nil
}
