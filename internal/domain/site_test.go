package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeFromPercentiles(t *testing.T) {
	stats := DailyPercentiles{P10: 20, P25: 50, P50: 100, P75: 200, P90: 400}

	tests := []struct {
		name string
		flow float64
		want Grade
	}{
		{"below p10", 15, GradeVeryLow},
		{"between p10 and p25", 30, GradeLow},
		{"at median", 100, GradeNormal},
		{"between p75 and p90", 300, GradeHigh},
		{"above p90", 450, GradeBlownOut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GradeFromPercentiles(tt.flow, stats))
		})
	}
}

func TestGradeFromPercentiles_BoundaryIsExclusive(t *testing.T) {
	stats := DailyPercentiles{P10: 20, P25: 50, P50: 100, P75: 200, P90: 400}

	// A reading exactly on a threshold falls into the higher tier.
	assert.Equal(t, GradeLow, GradeFromPercentiles(20, stats))
	assert.Equal(t, GradeHigh, GradeFromPercentiles(200, stats))
	assert.Equal(t, GradeBlownOut, GradeFromPercentiles(400, stats))
}

func TestEstimateGrade(t *testing.T) {
	tests := []struct {
		flow float64
		want Grade
	}{
		{5, GradeVeryLow},
		{30, GradeLow},
		{100, GradeNormal},
		{1000, GradeHigh},
		{5000, GradeBlownOut},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateGrade(tt.flow), "flow=%v", tt.flow)
	}
}

func TestDailyPercentiles_Usable(t *testing.T) {
	assert.True(t, DailyPercentiles{P50: 100}.Usable())
	assert.False(t, DailyPercentiles{}.Usable())
	assert.False(t, DailyPercentiles{P10: 5, P90: 500}.Usable(), "missing median means no usable record")
}

func TestGradeTiersAreOrdered(t *testing.T) {
	assert.Less(t, GradeVeryLow.Tier, GradeLow.Tier)
	assert.Less(t, GradeLow.Tier, GradeNormal.Tier)
	assert.Less(t, GradeNormal.Tier, GradeHigh.Tier)
	assert.Less(t, GradeHigh.Tier, GradeBlownOut.Tier)
}
