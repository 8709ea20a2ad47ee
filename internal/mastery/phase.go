package mastery

// AdvancePhase runs the phase state machine once against updated counters
// and returns the possibly advanced phase. Transitions only move forward and
// at most one fires per recorded attempt.
//
// Recognition -> Production needs recognition accuracy at the advance
// threshold with qualifying volume. Production -> Application needs the same
// for production and, additionally, recognition accuracy still at the
// mixed-mode requirement: advancing must not be purchased by letting
// recognition skill atrophy.
func AdvancePhase(current Phase, snapshot Snapshot, params Params) Phase {
	switch current {
	case PhaseRecognition:
		if phaseReady(snapshot.Recognition, params) {
			return PhaseProduction
		}
	case PhaseProduction:
		if phaseReady(snapshot.Production, params) &&
			snapshot.Recognition.Accuracy() >= params.MixedModeRequirement {
			return PhaseApplication
		}
	}
	return current
}

func phaseReady(c PhaseCounters, params Params) bool {
	return c.Attempts >= params.MinAttemptsPerPhase &&
		c.Correct >= params.MinCorrectPerPhase &&
		c.Accuracy() >= params.PhaseAdvanceThreshold
}
