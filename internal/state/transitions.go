package state

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe workflow transitions.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}

// validTransitions contains the permitted workflow transitions. Banning is
// handled separately in IsTransitionAllowed: any step may move to StepBanned.
var validTransitions = map[Step][]Step{
	StepIdle: {
		StepAwaitingTraffic,
	},
	StepAwaitingTraffic: {
		StepAwaitingHours,
	},
	StepAwaitingHours: {
		StepAwaitingExperience,
	},
	StepAwaitingExperience: {
		StepPendingReview,
	},
	StepPendingReview: {
		StepCompleted,
	},
	StepCompleted: {
		StepAwaitingDomain,
		StepAwaitingWallet,
	},
	StepAwaitingDomain: {
		StepCompleted,
	},
	StepAwaitingWallet: {
		StepCompleted,
	},
	StepBanned: {
		// Unban restores the worker straight to the completed step.
		StepCompleted,
	},
}

// IsTransitionAllowed reports whether moving from one step to another is valid.
func IsTransitionAllowed(from, to Step) bool {
	if to == StepBanned {
		return true
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, step := range allowed {
		if step == to {
			return true
		}
	}

	return false
}

// RecordTransition notifies the registered observer about a performed transition.
func RecordTransition(from, to Step) {
	transitionRecorder(string(from), string(to))
}
