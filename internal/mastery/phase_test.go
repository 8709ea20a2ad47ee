package mastery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvancePhase(t *testing.T) {
	params := DefaultParams()

	tests := []struct {
		name     string
		current  Phase
		snapshot Snapshot
		want     Phase
	}{
		{
			name:    "recognition advances at threshold",
			current: PhaseRecognition,
			snapshot: Snapshot{
				Recognition: PhaseCounters{Attempts: 4, Correct: 4},
			},
			want: PhaseProduction,
		},
		{
			name:    "recognition stays below attempt volume",
			current: PhaseRecognition,
			snapshot: Snapshot{
				Recognition: PhaseCounters{Attempts: 3, Correct: 3},
			},
			want: PhaseRecognition,
		},
		{
			name:    "recognition stays below accuracy threshold",
			current: PhaseRecognition,
			snapshot: Snapshot{
				Recognition: PhaseCounters{Attempts: 8, Correct: 5},
			},
			want: PhaseRecognition,
		},
		{
			name:    "recognition stays below correct volume",
			current: PhaseRecognition,
			snapshot: Snapshot{
				Recognition: PhaseCounters{Attempts: 4, Correct: 2},
			},
			want: PhaseRecognition,
		},
		{
			name:    "production advances when recognition holds",
			current: PhaseProduction,
			snapshot: Snapshot{
				Recognition: PhaseCounters{Attempts: 10, Correct: 8},
				Production:  PhaseCounters{Attempts: 4, Correct: 4},
			},
			want: PhaseApplication,
		},
		{
			name:    "production blocked by atrophied recognition",
			current: PhaseProduction,
			snapshot: Snapshot{
				Recognition: PhaseCounters{Attempts: 10, Correct: 6},
				Production:  PhaseCounters{Attempts: 4, Correct: 4},
			},
			want: PhaseProduction,
		},
		{
			name:    "application is terminal",
			current: PhaseApplication,
			snapshot: Snapshot{
				Recognition: PhaseCounters{Attempts: 10, Correct: 10},
				Production:  PhaseCounters{Attempts: 10, Correct: 10},
				Application: PhaseCounters{Attempts: 10, Correct: 10},
			},
			want: PhaseApplication,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdvancePhase(tt.current, tt.snapshot, params)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, int(got), int(tt.current), "phase never regresses")
		})
	}
}
