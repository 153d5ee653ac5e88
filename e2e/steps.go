package e2e

import (
	"github.com/cucumber/godog"

	"unibuild/e2e/steps/common"
	"unibuild/e2e/steps/gate"
	"unibuild/e2e/steps/ratelimit"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background, plain requests and response assertions
	common.RegisterSteps(ctx, tc)

	// Edge gate and section guard
	gate.RegisterSteps(ctx, tc)

	// Sign-in throttling
	ratelimit.RegisterSteps(ctx, tc)
}
