package runner

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cyverse-de/notification-doctor/checks"
	"github.com/olekukonko/tablewriter"
)

// Summary holds the result of every check in a single run. Checks that didn't run have the NotRun
// status.
type Summary struct {
	RunID        string
	Identity     checks.Result
	Existence    checks.Result
	Unread       checks.Result
	Subscription checks.Result
	Mutation     checks.Result
}

// NewSummary returns a summary in which no check has run yet.
func NewSummary(runID string) *Summary {
	notRun := func(name string) checks.Result {
		return checks.Result{Name: name, Status: checks.NotRun}
	}
	return &Summary{
		RunID:        runID,
		Identity:     notRun(checks.IdentityCheck),
		Existence:    notRun(checks.ExistenceCheck),
		Unread:       notRun(checks.UnreadCheck),
		Subscription: notRun(checks.SubscriptionCheck),
		Mutation:     notRun(checks.MutationCheck),
	}
}

// Results returns the check results in the order in which the checks run.
func (s *Summary) Results() []checks.Result {
	return []checks.Result{s.Identity, s.Existence, s.Unread, s.Subscription, s.Mutation}
}

// Outcomes maps each check name to whether or not the check succeeded.
func (s *Summary) Outcomes() map[string]bool {
	outcomes := make(map[string]bool)
	for _, result := range s.Results() {
		outcomes[result.Name] = result.Status.OK()
	}
	return outcomes
}

// OK returns true if the critical checks passed: somebody is signed in and the live subscription could
// be set up. The other checks are advisory.
func (s *Summary) OK() bool {
	return s.Identity.Status == checks.Passing && s.Subscription.Status == checks.Passing
}

// Write prints the summary table and the overall verdict to the transcript.
func (s *Summary) Write(out *checks.Transcript) {
	out.Banner("TEST RESULTS")

	out.Block(func(w io.Writer) {
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"#", "Check", "Result"})
		table.SetAutoWrapText(false)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for i, result := range s.Results() {
			table.Append([]string{
				strconv.Itoa(i + 1),
				result.Name,
				fmt.Sprintf("%s %s", result.Status.Emoji(), result.Status),
			})
		}
		table.Render()
	})

	if s.OK() {
		out.Event("🎉", "ALL CRITICAL TESTS PASSED!")
		out.Line("Your notification system should be working.")
		out.Line("If you still don't see alerts, check the code that displays them in your app.")
		return
	}

	out.Event("⚠️", "SOME TESTS FAILED")
	out.Line("Review the error messages above for solutions.")
}
