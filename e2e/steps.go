package e2e

import (
	"github.com/cucumber/godog"

	"chainid/e2e/steps/common"
	"chainid/e2e/steps/contracts"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	contracts.RegisterSteps(ctx, tc)
}
