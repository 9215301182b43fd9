package state

import "testing"

func TestIsTransitionAllowed(t *testing.T) {
	testCases := []struct {
		name    string
		from    Step
		to      Step
		allowed bool
	}{
		{"start registration", StepIdle, StepAwaitingTraffic, true},
		{"traffic to hours", StepAwaitingTraffic, StepAwaitingHours, true},
		{"hours to experience", StepAwaitingHours, StepAwaitingExperience, true},
		{"experience to review", StepAwaitingExperience, StepPendingReview, true},
		{"approve", StepPendingReview, StepCompleted, true},
		{"enter domain claim", StepCompleted, StepAwaitingDomain, true},
		{"domain claimed", StepAwaitingDomain, StepCompleted, true},
		{"enter withdrawal", StepCompleted, StepAwaitingWallet, true},
		{"wallet submitted", StepAwaitingWallet, StepCompleted, true},
		{"unban", StepBanned, StepCompleted, true},
		{"ban from review", StepPendingReview, StepBanned, true},
		{"ban from completed", StepCompleted, StepBanned, true},
		{"ban mid-registration", StepAwaitingHours, StepBanned, true},

		{"skip ladder steps", StepIdle, StepAwaitingExperience, false},
		{"no going back in ladder", StepAwaitingHours, StepAwaitingTraffic, false},
		{"review cannot enter withdrawal", StepPendingReview, StepAwaitingWallet, false},
		{"banned cannot claim domain", StepBanned, StepAwaitingDomain, false},
		{"domain wait cannot jump to wallet", StepAwaitingDomain, StepAwaitingWallet, false},
		{"unknown step has no transitions", Step("typo_step"), StepCompleted, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTransitionAllowed(tc.from, tc.to); got != tc.allowed {
				t.Fatalf("IsTransitionAllowed(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
			}
		})
	}
}

func TestKnown(t *testing.T) {
	for _, s := range []Step{
		StepIdle, StepAwaitingTraffic, StepAwaitingHours, StepAwaitingExperience,
		StepPendingReview, StepCompleted, StepAwaitingDomain, StepAwaitingWallet, StepBanned,
	} {
		if !Known(s) {
			t.Fatalf("expected %s to be a known step", s)
		}
	}

	if Known(Step("awaiting_domian")) {
		t.Fatal("typo'd step must not be known")
	}
}

func TestStatusLadderHasNoSilentDemotion(t *testing.T) {
	// Once completed, the only way out of the approved lattice is an
	// explicit ban; no transition leads back into the review ladder.
	for _, to := range []Step{StepIdle, StepAwaitingTraffic, StepAwaitingHours, StepAwaitingExperience, StepPendingReview} {
		if IsTransitionAllowed(StepCompleted, to) {
			t.Fatalf("completed worker must not re-enter registration step %s", to)
		}
	}
}
