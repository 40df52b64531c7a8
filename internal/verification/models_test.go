package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverallPercent(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		expected int
	}{
		{
			name:     "nothing verified",
			status:   Status{},
			expected: 0,
		},
		{
			name:     "one field verified",
			status:   Status{GST: StatusVerified},
			expected: 25,
		},
		{
			name: "two verified others failed or untouched",
			status: Status{
				GST:  StatusVerified,
				PAN:  StatusVerified,
				Bank: StatusFailed,
			},
			expected: 50,
		},
		{
			name: "three verified",
			status: Status{
				GST: StatusVerified,
				PAN: StatusVerified,
				CIN: StatusVerified,
			},
			expected: 75,
		},
		{
			name: "all four verified",
			status: Status{
				GST:  StatusVerified,
				PAN:  StatusVerified,
				CIN:  StatusVerified,
				Bank: StatusVerified,
			},
			expected: 100,
		},
		{
			name: "pending and failed contribute nothing",
			status: Status{
				GST:  StatusPending,
				PAN:  StatusFailed,
				CIN:  StatusPending,
				Bank: StatusFailed,
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OverallPercent(tt.status))
		})
	}
}

func TestOverallPercentIgnoresStoredOverall(t *testing.T) {
	// The stored value must never leak into the recomputation
	status := Status{GST: StatusVerified, Overall: 100}
	assert.Equal(t, 25, OverallPercent(status))
}

func TestFieldStatusTransitions(t *testing.T) {
	assert.True(t, StatusNotStarted.CanTransition(StatusPending))
	assert.True(t, StatusPending.CanTransition(StatusVerified))
	assert.True(t, StatusPending.CanTransition(StatusFailed))
	assert.True(t, StatusVerified.CanTransition(StatusPending))
	assert.True(t, StatusFailed.CanTransition(StatusPending))

	// Settling requires going through pending first
	assert.False(t, StatusNotStarted.CanTransition(StatusVerified))
	assert.False(t, StatusNotStarted.CanTransition(StatusFailed))
}

func TestFieldStatusNormalize(t *testing.T) {
	assert.Equal(t, StatusNotStarted, FieldStatus("").Normalize())
	assert.Equal(t, StatusVerified, StatusVerified.Normalize())
}

func TestComplianceLevel(t *testing.T) {
	assert.Equal(t, ComplianceFull, ComplianceLevel(100))
	assert.Equal(t, ComplianceSubstantial, ComplianceLevel(75))
	assert.Equal(t, CompliancePartial, ComplianceLevel(50))
	assert.Equal(t, ComplianceMinimal, ComplianceLevel(25))
	assert.Equal(t, ComplianceNone, ComplianceLevel(0))
}
