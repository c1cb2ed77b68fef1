package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckApplicable(t *testing.T) {
	applicable := map[Methodology]map[StudyDesign]bool{
		MethodologyCochraneRoB: {DesignRCT: true},
		MethodologyROBINSI:     {DesignCohort: true, DesignCaseControl: true, DesignCaseSeries: true},
	}

	for m, designs := range applicable {
		for _, d := range AllStudyDesigns {
			t.Run(string(m)+"/"+string(d), func(t *testing.T) {
				err := CheckApplicable(m, d)
				if designs[d] {
					assert.NoError(t, err)
					return
				}
				require.ErrorIs(t, err, ErrMethodologyNotApplicable)
				assert.Equal(t, KindMethodologyNotApplicable, KindOf(err))
				assert.Contains(t, err.Error(), string(d))
			})
		}
	}
}

func TestCheckApplicable_GRADE(t *testing.T) {
	for _, d := range AllStudyDesigns {
		assert.NoError(t, CheckApplicable(MethodologyGRADE, d))
	}
	assert.ErrorIs(t, CheckApplicable(MethodologyGRADE, "animal_study"), ErrUnsupportedDesign)
	assert.Equal(t, AllStudyDesigns, ApplicableDesigns(MethodologyGRADE))
}

func TestCheckApplicable_ROBINSIOnRCTSuggestsCochrane(t *testing.T) {
	err := CheckApplicable(MethodologyROBINSI, DesignRCT)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cochrane RoB 2.0")

	err = CheckApplicable(MethodologyROBINSI, DesignCrossSectional)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "Cochrane RoB 2.0")
}

func TestCheckApplicable_UnknownMethodology(t *testing.T) {
	err := CheckApplicable("jadad", DesignRCT)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestApplicableDesigns_ReturnsCopy(t *testing.T) {
	got := ApplicableDesigns(MethodologyCochraneRoB)
	got[0] = DesignOther
	assert.Equal(t, []StudyDesign{DesignRCT}, ApplicableDesigns(MethodologyCochraneRoB))
}

func TestRecommendations(t *testing.T) {
	tests := []struct {
		design   StudyDesign
		wantTool Methodology
		wantOK   bool
		wantAll  []Methodology
	}{
		{DesignRCT, MethodologyCochraneRoB, true, []Methodology{MethodologyGRADE, MethodologyCochraneRoB}},
		{DesignCohort, MethodologyROBINSI, true, []Methodology{MethodologyGRADE, MethodologyROBINSI}},
		{DesignCaseControl, MethodologyROBINSI, true, []Methodology{MethodologyGRADE, MethodologyROBINSI}},
		{DesignCaseSeries, MethodologyROBINSI, true, []Methodology{MethodologyGRADE, MethodologyROBINSI}},
		{DesignCrossSectional, "", false, []Methodology{MethodologyGRADE}},
		{DesignMetaAnalysis, "", false, []Methodology{MethodologyGRADE}},
		{"animal_study", "", false, nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.design), func(t *testing.T) {
			tool, ok := RecommendedRiskOfBiasTool(tt.design)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTool, tool)
			assert.Equal(t, tt.wantAll, RecommendedMethodologies(tt.design))
		})
	}
}

func TestParseMethodology(t *testing.T) {
	tests := map[string]Methodology{
		"grade":         MethodologyGRADE,
		"GRADE":         MethodologyGRADE,
		"cochrane":      MethodologyCochraneRoB,
		"rob2":          MethodologyCochraneRoB,
		"cochrane_rob2": MethodologyCochraneRoB,
		"robins-i":      MethodologyROBINSI,
		" robins_i ":    MethodologyROBINSI,
	}
	for in, want := range tests {
		got, err := ParseMethodology(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseMethodology("newcastle-ottawa")
	assert.ErrorIs(t, err, ErrUnknownEnumValue)

	assert.Equal(t, "ROBINS-I", MethodologyROBINSI.DisplayName())
	assert.False(t, Methodology("x").IsValid())
}
