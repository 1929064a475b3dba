package e2e

import (
	"github.com/cucumber/godog"

	"rolegate/e2e/steps/access"
	"rolegate/e2e/steps/common"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext, signingKey string) {
	common.RegisterSteps(ctx, tc)
	access.RegisterSteps(ctx, tc, signingKey)
}
