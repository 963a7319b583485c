package worldview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_ValidBlend(t *testing.T) {
	b := &Blend{
		Stages: []StageScore{
			{Stage: StageOrange, Percent: 50},
			{Stage: StageGreen, Percent: 30},
			{Stage: StageBlue, Percent: 20},
		},
		Primary: StageOrange,
		Summary: "Achievement-driven with a growing communitarian streak.",
	}

	require.NoError(t, b.Normalize())
	assert.Equal(t, 50, b.Stages[0].Percent)
}

func TestNormalize_RebalancesRoundingOntoPrimary(t *testing.T) {
	b := &Blend{
		Stages: []StageScore{
			{Stage: StageGreen, Percent: 33},
			{Stage: StageOrange, Percent: 33},
			{Stage: StageYellow, Percent: 33},
		},
		Primary: StageGreen,
	}

	require.NoError(t, b.Normalize())
	assert.Equal(t, 34, b.Stages[0].Percent)

	b = &Blend{
		Stages: []StageScore{
			{Stage: StageBlue, Percent: 51},
			{Stage: StageRed, Percent: 50},
		},
		Primary: StageBlue,
	}

	require.NoError(t, b.Normalize())
	assert.Equal(t, 50, b.Stages[0].Percent)
}

func TestNormalize_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		blend Blend
	}{
		{"no stages", Blend{Primary: StageBlue}},
		{"unknown stage", Blend{
			Stages:  []StageScore{{Stage: "magenta", Percent: 100}},
			Primary: "magenta",
		}},
		{"unknown primary", Blend{
			Stages:  []StageScore{{Stage: StageBlue, Percent: 100}},
			Primary: "mauve",
		}},
		{"primary not in stages", Blend{
			Stages:  []StageScore{{Stage: StageBlue, Percent: 100}},
			Primary: StageGreen,
		}},
		{"sum far off", Blend{
			Stages:  []StageScore{{Stage: StageBlue, Percent: 60}, {Stage: StageRed, Percent: 20}},
			Primary: StageBlue,
		}},
		{"negative percent", Blend{
			Stages:  []StageScore{{Stage: StageBlue, Percent: 110}, {Stage: StageRed, Percent: -10}},
			Primary: StageBlue,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.blend.Normalize())
		})
	}
}

func TestQuestionsAndStages(t *testing.T) {
	assert.Len(t, Questions, 8)
	assert.Len(t, Stages, 8)
	assert.Equal(t, StageBeige, Stages[0])
	assert.Equal(t, StageTurquoise, Stages[7])
}
