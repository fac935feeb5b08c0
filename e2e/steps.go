package e2e

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// RegisterSteps registers all step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Step(`^the gateway is running$`, tc.gatewayIsRunning)
	ctx.Step(`^a player "([^"]*)" holding a valid session ticket$`, tc.playerWithValidTicket)

	// Token steps
	ctx.Step(`^the player obtains a submission token$`, tc.obtainToken)
	ctx.Step(`^the player requests a submission token$`, tc.requestToken)
	ctx.Step(`^the player requests a submission token with ticket "([^"]*)"$`, tc.requestTokenWithTicket)
	ctx.Step(`^the player requests (\d+) submission tokens in quick succession$`, tc.requestTokensRepeatedly)

	// Submission steps
	ctx.Step(`^the player submits a plausible (apprentice|warmage|nightmare) run$`, tc.submitPlausibleRun)
	ctx.Step(`^the player submits the same run again with the same token$`, tc.resubmitRun)
	ctx.Step(`^the player submits a plausible run presenting ticket "([^"]*)"$`, tc.submitRunWithTicket)
	ctx.Step(`^the player submits a run whose first round lasts (\d+) ms$`, tc.submitRunWithFirstRoundTime)
	ctx.Step(`^the player submits a run with no capability token$`, tc.submitRunWithoutToken)

	// Operator steps
	ctx.Step(`^an operator bans the account for "([^"]*)"$`, tc.operatorBans)
	ctx.Step(`^an operator lifts the ban$`, tc.operatorUnbans)
	ctx.Step(`^an operator looks up the account$`, tc.operatorLookup)
	ctx.Step(`^someone calls the operator API without credentials$`, tc.operatorWithoutCredentials)

	// Assertion steps
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be (true|false)$`, tc.responseFieldShouldBeBool)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)
	ctx.Step(`^the response should contain "([^"]*)"$`, tc.responseShouldContain)
	ctx.Step(`^the Retry-After header should be set$`, tc.retryAfterShouldBeSet)
	ctx.Step(`^the account is banned$`, tc.accountIsBanned)
	ctx.Step(`^the account is not banned$`, tc.accountIsNotBanned)
}

func (tc *TestContext) gatewayIsRunning() error {
	return tc.GET("/health", nil)
}

func (tc *TestContext) playerWithValidTicket(accountID string) error {
	tc.AccountID = accountID
	tc.Ticket = "ticket-" + accountID
	return nil
}

func (tc *TestContext) requestToken() error {
	return tc.requestTokenWithTicket(tc.Ticket)
}

func (tc *TestContext) requestTokenWithTicket(ticket string) error {
	return tc.POST("/v1/tokens", map[string]any{
		"account_id": tc.AccountID,
		"ticket":     ticket,
	}, nil)
}

func (tc *TestContext) obtainToken() error {
	if err := tc.requestToken(); err != nil {
		return err
	}
	if tc.LastResponse.StatusCode != 200 {
		return fmt.Errorf("token issuance failed with status %d: %s", tc.LastResponse.StatusCode, tc.LastResponseBody)
	}
	value, err := tc.ResponseField("token")
	if err != nil {
		return err
	}
	token, ok := value.(string)
	if !ok || token == "" {
		return fmt.Errorf("token field is not a non-empty string: %v", value)
	}
	tc.Token = token
	return nil
}

func (tc *TestContext) requestTokensRepeatedly(count int) error {
	for i := 0; i < count; i++ {
		if err := tc.requestToken(); err != nil {
			return err
		}
	}
	return nil
}

// plausibleRun is a self-consistent ten-round clear: round kills match the
// wave sizes, weapon and ability kills add up, and every round outlasts its
// final spawn.
func (tc *TestContext) plausibleRun(difficulty string) map[string]any {
	return map[string]any{
		"account_id": tc.AccountID,
		"ticket":     tc.Ticket,
		"token":      tc.Token,
		"difficulty": difficulty,
		"score_ms":   261000,
		"round_times_ms": []int{
			24000, 24500, 25000, 25500, 26000, 26500, 27000, 27500, 28000, 27000,
		},
		"round_kills": []int{18, 20, 22, 24, 26, 28, 30, 32, 34, 36},
		"weapons": []map[string]any{
			{"tag": "crossbow", "kills": 100, "damage": 40000, "acquired_ms": 0},
			{"tag": "bladestaff", "kills": 50, "damage": 30000, "acquired_ms": 30000},
			{"tag": "warhammer", "kills": 50, "damage": 20000, "acquired_ms": 90000},
			{"tag": "dwarf_cannon", "kills": 55, "damage": 10000, "acquired_ms": 150000},
			{"tag": "flame_bracers", "kills": 0, "damage": 0, "acquired_ms": 0},
			{"tag": "ice_amulet", "kills": 0, "damage": 0, "acquired_ms": 0},
			{"tag": "wind_belt", "kills": 0, "damage": 0, "acquired_ms": 0},
			{"tag": "reserved", "kills": 0, "damage": 0, "acquired_ms": 0},
		},
		"abilities": []map[string]any{
			{"tag": "combustion", "uses": 10, "utility": 15, "kills": 15},
			{"tag": "overload", "uses": 0, "utility": 0, "kills": 0},
			{"tag": "frost_nova", "uses": 0, "utility": 0, "kills": 0},
			{"tag": "decoy", "uses": 0, "utility": 0, "kills": 0},
			{"tag": "reserved_a", "uses": 0, "utility": 0, "kills": 0},
			{"tag": "reserved_b", "uses": 0, "utility": 0, "kills": 0},
		},
		"total_kills":        270,
		"total_damage":       100000,
		"total_ability_uses": 10,
	}
}

func (tc *TestContext) submitPlausibleRun(difficulty string) error {
	return tc.POST("/v1/scores", tc.plausibleRun(difficulty), nil)
}

func (tc *TestContext) resubmitRun() error {
	return tc.submitPlausibleRun("warmage")
}

func (tc *TestContext) submitRunWithTicket(ticket string) error {
	body := tc.plausibleRun("warmage")
	body["ticket"] = ticket
	return tc.POST("/v1/scores", body, nil)
}

func (tc *TestContext) submitRunWithFirstRoundTime(ms int) error {
	body := tc.plausibleRun("warmage")
	times := body["round_times_ms"].([]int)
	times[0] = ms
	return tc.POST("/v1/scores", body, nil)
}

func (tc *TestContext) submitRunWithoutToken() error {
	body := tc.plausibleRun("warmage")
	delete(body, "token")
	return tc.POST("/v1/scores", body, nil)
}

func opsHeaders() map[string]string {
	return map[string]string{"X-Ops-Key": OpsKey}
}

func (tc *TestContext) operatorBans(reason string) error {
	return tc.POST("/ops/bans", map[string]any{
		"account_id": tc.AccountID,
		"reason":     reason,
	}, opsHeaders())
}

func (tc *TestContext) operatorUnbans() error {
	return tc.DELETE("/ops/bans/"+tc.AccountID, opsHeaders())
}

func (tc *TestContext) operatorLookup() error {
	return tc.GET("/ops/bans/"+tc.AccountID, opsHeaders())
}

func (tc *TestContext) operatorWithoutCredentials() error {
	return tc.POST("/ops/bans", map[string]any{"account_id": tc.AccountID}, nil)
}

func (tc *TestContext) responseStatusShouldBe(status int) error {
	if tc.LastResponse == nil {
		return fmt.Errorf("no response recorded")
	}
	if tc.LastResponse.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, tc.LastResponse.StatusCode, tc.LastResponseBody)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldBeBool(field, want string) error {
	value, err := tc.ResponseField(field)
	if err != nil {
		return err
	}
	b, ok := value.(bool)
	if !ok {
		return fmt.Errorf("field %q is not a bool: %v", field, value)
	}
	if fmt.Sprintf("%t", b) != want {
		return fmt.Errorf("expected field %q to be %s, got %t", field, want, b)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldEqual(field, want string) error {
	value, err := tc.ResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprintf("%v", value); got != want {
		return fmt.Errorf("expected field %q to equal %q, got %q", field, want, got)
	}
	return nil
}

func (tc *TestContext) responseShouldContain(substr string) error {
	if !strings.Contains(string(tc.LastResponseBody), substr) {
		return fmt.Errorf("response %q does not contain %q", tc.LastResponseBody, substr)
	}
	return nil
}

func (tc *TestContext) retryAfterShouldBeSet() error {
	if tc.LastResponse == nil || tc.LastResponse.Header.Get("Retry-After") == "" {
		return fmt.Errorf("Retry-After header is not set")
	}
	return nil
}

func (tc *TestContext) accountIsBanned() error {
	if err := tc.operatorLookup(); err != nil {
		return err
	}
	return tc.responseStatusShouldBe(200)
}

func (tc *TestContext) accountIsNotBanned() error {
	if err := tc.operatorLookup(); err != nil {
		return err
	}
	return tc.responseStatusShouldBe(404)
}
