package contracts

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed by contract steps
type TestContext interface {
	POSTAs(caller, path string, body any) error
	GET(path string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	Address(name string) string
	SetApp(name, path string)
	AppPath(name string) (string, error)
}

var deployPaths = map[string]string{
	"IdentityRegistry": "/v1/identity-registry",
	"PaymentProcessor": "/v1/payment-processor",
}

// RegisterSteps registers contract step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &contractSteps{tc: tc}

	ctx.Step(`^"([^"]*)" has deployed an? (IdentityRegistry|PaymentProcessor) as "([^"]*)"$`, steps.hasDeployed)
	ctx.Step(`^"([^"]*)" deploys an? (IdentityRegistry|PaymentProcessor) as "([^"]*)"$`, steps.deploys)

	ctx.Step(`^"([^"]*)" registers "([^"]*)" at level (\d+) on "([^"]*)"$`, steps.registersIdentity)
	ctx.Step(`^"([^"]*)" verifies "([^"]*)" on "([^"]*)"$`, steps.verifiesIdentity)
	ctx.Step(`^"([^"]*)" sets the admin of "([^"]*)" to "([^"]*)"$`, steps.setsAdmin)
	ctx.Step(`^"([^"]*)" pays (\d+) to "([^"]*)" on "([^"]*)"$`, steps.processesPayment)
	ctx.Step(`^"([^"]*)" pauses "([^"]*)"$`, steps.pauses)
	ctx.Step(`^"([^"]*)" unpauses "([^"]*)"$`, steps.unpauses)

	ctx.Step(`^the call should succeed$`, steps.callShouldSucceed)
	ctx.Step(`^the call should fail with "([^"]*)"$`, steps.callShouldFailWith)
	ctx.Step(`^the call should return (true|false)$`, steps.callShouldReturn)

	ctx.Step(`^"([^"]*)" should have (\d+) verified users?$`, steps.shouldHaveVerifiedUsers)
	ctx.Step(`^"([^"]*)" should have processed (\d+) payments?$`, steps.shouldHaveProcessedPayments)
	ctx.Step(`^"([^"]*)" should be paused$`, steps.shouldBePaused)
	ctx.Step(`^"([^"]*)" should not be paused$`, steps.shouldNotBePaused)
	ctx.Step(`^the admin of "([^"]*)" should be "([^"]*)"$`, steps.adminShouldBe)
}

type contractSteps struct {
	tc TestContext
}

func (s *contractSteps) deploys(ctx context.Context, deployer, kind, name string) error {
	base := deployPaths[kind]
	if err := s.tc.POSTAs(deployer, base, map[string]any{}); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 201 {
		return nil
	}
	appID, err := s.tc.GetResponseField("app_id")
	if err != nil {
		return err
	}
	s.tc.SetApp(name, fmt.Sprintf("%s/%v", base, appID))
	return nil
}

func (s *contractSteps) hasDeployed(ctx context.Context, deployer, kind, name string) error {
	if err := s.deploys(ctx, deployer, kind, name); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 201 {
		return fmt.Errorf("deploy %s failed with status %d: %s", kind, status, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *contractSteps) call(caller, app, method string, body any) error {
	path, err := s.tc.AppPath(app)
	if err != nil {
		return err
	}
	return s.tc.POSTAs(caller, path+"/"+method, body)
}

func (s *contractSteps) registersIdentity(ctx context.Context, caller, user string, level int, app string) error {
	return s.call(caller, app, "register_identity", map[string]any{
		"user_address":       s.tc.Address(user),
		"verification_level": level,
	})
}

func (s *contractSteps) verifiesIdentity(ctx context.Context, caller, user, app string) error {
	return s.call(caller, app, "verify_identity", map[string]any{"user_address": s.tc.Address(user)})
}

func (s *contractSteps) setsAdmin(ctx context.Context, caller, app, newAdmin string) error {
	return s.call(caller, app, "set_admin", map[string]any{"new_admin": s.tc.Address(newAdmin)})
}

func (s *contractSteps) processesPayment(ctx context.Context, caller string, amount int, recipient, app string) error {
	return s.call(caller, app, "process_payment", map[string]any{
		"recipient": s.tc.Address(recipient),
		"amount":    amount,
	})
}

func (s *contractSteps) pauses(ctx context.Context, caller, app string) error {
	return s.call(caller, app, "pause_contract", map[string]any{})
}

func (s *contractSteps) unpauses(ctx context.Context, caller, app string) error {
	return s.call(caller, app, "unpause_contract", map[string]any{})
}

func (s *contractSteps) callShouldSucceed(ctx context.Context) error {
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("expected success but got status %d: %s", status, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *contractSteps) callShouldFailWith(ctx context.Context, code string) error {
	if status := s.tc.GetLastResponseStatus(); status < 400 {
		return fmt.Errorf("expected failure %q but got status %d: %s", code, status, s.tc.GetLastResponseBody())
	}
	value, err := s.tc.GetResponseField("error")
	if err != nil {
		return err
	}
	if value != code {
		return fmt.Errorf("expected error %q but got %q", code, value)
	}
	return nil
}

func (s *contractSteps) callShouldReturn(ctx context.Context, expected string) error {
	if err := s.callShouldSucceed(ctx); err != nil {
		return err
	}
	return s.returnShouldBe(expected)
}

func (s *contractSteps) returnShouldBe(expected string) error {
	value, err := s.tc.GetResponseField("return")
	if err != nil {
		return err
	}
	if fmt.Sprint(value) != expected {
		return fmt.Errorf("expected return %s but got %v", expected, value)
	}
	return nil
}

func (s *contractSteps) query(app, method, expected string) error {
	path, err := s.tc.AppPath(app)
	if err != nil {
		return err
	}
	if err := s.tc.GET(path + "/" + method); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("%s failed with status %d: %s", method, status, s.tc.GetLastResponseBody())
	}
	return s.returnShouldBe(expected)
}

func (s *contractSteps) shouldHaveVerifiedUsers(ctx context.Context, app string, total int) error {
	return s.query(app, "get_total_verified_users", fmt.Sprint(total))
}

func (s *contractSteps) shouldHaveProcessedPayments(ctx context.Context, app string, total int) error {
	return s.query(app, "get_total_payments", fmt.Sprint(total))
}

func (s *contractSteps) shouldBePaused(ctx context.Context, app string) error {
	return s.query(app, "is_paused", "true")
}

func (s *contractSteps) shouldNotBePaused(ctx context.Context, app string) error {
	return s.query(app, "is_paused", "false")
}

func (s *contractSteps) adminShouldBe(ctx context.Context, app, account string) error {
	return s.query(app, "get_admin", s.tc.Address(account))
}
