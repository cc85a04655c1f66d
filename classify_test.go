package otfgrade

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// matches testdata/ClassGradebook.csv
var sampleGradebook = Matrix{
	{10, 8, 9, 5, 7},
	{9, 7, 10, 4, 8},
	{8, 9, 10, 6, 6},
	{10, 6, 9, 3, 9},
	{85, 70, 95, 50, 77},
	{90, 65, 88, 55, 80},
	{92, 72, 97, 48, 75},
}

func TestClassifySampleGradebook(t *testing.T) {
	result := Classify(sampleGradebook, DefaultScheme())

	// quizzes are rows 0-3 at .4, tests are rows 3-6 at .6
	wantTotals := []float64{175.0, 136.2, 183.2, 99.0, 151.2}
	require.Len(t, result.Totals, len(wantTotals))
	for i, want := range wantTotals {
		assert.InDelta(t, want, result.Totals[i], 1e-9, "student %d", i)
	}
	assert.InDelta(t, 148.92, result.Stats.Mean, 1e-9)
	assert.InDelta(t, 30.04758892157572, result.Stats.StdDev, 1e-9)

	want := []Letter{B, C, A, F, B}
	if diff := cmp.Diff(want, result.Letters); diff != "" {
		t.Errorf("letters mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyExactTestWindow(t *testing.T) {
	s := DefaultScheme()
	s.ExactTestWindow = true
	result := Classify(sampleGradebook, s)

	wantTotals := []float64{124.0, 94.2, 126.2, 69.0, 105.0}
	for i, want := range wantTotals {
		assert.InDelta(t, want, result.Totals[i], 1e-9, "student %d", i)
	}
	assert.Equal(t, []Letter{B, C, A, F, B}, result.Letters)
}

func TestClassifyIdenticalStudents(t *testing.T) {
	m := Matrix{
		{10, 10, 10},
		{10, 10, 10},
		{10, 10, 10},
		{10, 10, 10},
		{20, 20, 20},
		{20, 20, 20},
	}
	result := Classify(m, DefaultScheme())

	for _, total := range result.Totals {
		assert.InDelta(t, 46.0, total, 1e-9)
	}
	assert.Equal(t, 0.0, result.Stats.StdDev)
	// every total equals the mean, which is neither > mean nor > mean-0
	assert.Equal(t, []Letter{F, F, F}, result.Letters)
}

func TestClassifySingleStudent(t *testing.T) {
	m := Matrix{{7}, {8}, {9}, {6}, {70}, {80}}
	result := Classify(m, DefaultScheme())

	require.Len(t, result.Letters, 1)
	assert.Equal(t, 0.0, result.Stats.StdDev)
	assert.Equal(t, result.Totals[0], result.Stats.Mean)
	assert.Equal(t, F, result.Letters[0])
}

func TestLettersPopulationDeviation(t *testing.T) {
	letters, st := Letters([]float64{50, 70, 90})

	assert.InDelta(t, 70.0, st.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(800.0/3.0), st.StdDev, 1e-12)
	// with the sample deviation (20) the top student would only get a B
	assert.Equal(t, []Letter{F, C, A}, letters)
}

func TestLetterForBoundaries(t *testing.T) {
	st := Stats{Mean: 70, StdDev: 10}
	tests := []struct {
		name  string
		total float64
		want  Letter
	}{
		{"well above", 95, A},
		{"on mean+dev", 80, B},
		{"above mean", 75, B},
		{"on mean", 70, C},
		{"below mean", 65, C},
		{"on mean-dev", 60, F},
		{"well below", 10, F},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LetterFor(tt.total, st))
		})
	}
}

func TestClassifyProperties(t *testing.T) {
	gradebooks := map[string]Matrix{
		"sample": sampleGradebook,
		"spread": {
			{1, 2, 3, 4, 5, 6, 7, 8},
			{8, 7, 6, 5, 4, 3, 2, 1},
			{0, 0, 0, 0, 0, 0, 0, 0},
			{3, 3, 3, 3, 3, 3, 3, 3},
			{40, 55, 61, 99, 12, 70, 70, 83},
			{38, 60, 59, 97, 20, 71, 69, 80},
		},
		"wide": {
			{5, 5}, {5, 5}, {5, 5}, {5, 5}, {5, 5}, {100, 0}, {100, 0}, {100, 0},
		},
	}

	for name, m := range gradebooks {
		t.Run(name, func(t *testing.T) {
			first := Classify(m, DefaultScheme())
			second := Classify(m, DefaultScheme())

			assert.Len(t, first.Letters, m.Cols())
			assert.Len(t, first.Totals, m.Cols())
			assert.Equal(t, first, second)

			for i, l := range first.Letters {
				assert.Contains(t, []Letter{A, B, C, F}, l)
				for j, other := range first.Letters {
					if first.Totals[i] > first.Totals[j] {
						assert.GreaterOrEqual(t, l.rank(), other.rank(),
							"student %d (%v) ranked below student %d (%v)", i, first.Totals[i], j, first.Totals[j])
					}
				}
			}
		})
	}
}

func TestClassifyEmpty(t *testing.T) {
	result := Classify(Matrix{}, DefaultScheme())
	assert.Empty(t, result.Letters)
	assert.Empty(t, result.Totals)
	assert.Equal(t, Stats{}, result.Stats)
}

func TestSchemeRows(t *testing.T) {
	s := DefaultScheme()

	assert.Equal(t, RowRange{Lo: 0, Hi: 4}, s.QuizRows(7))
	assert.Equal(t, RowRange{Lo: 4, Hi: 7}, s.TestRows(7))
	assert.Equal(t, 3, s.TestRows(7).Len())

	// six rows: the test window reaches back into the last quiz
	assert.Equal(t, RowRange{Lo: 3, Hi: 6}, s.TestRows(6))

	s.ExactTestWindow = true
	assert.Equal(t, RowRange{Lo: 5, Hi: 7}, s.TestRows(7))
	assert.Equal(t, 2, s.TestRows(7).Len())

	// too few rows are clamped rather than wrapped
	assert.Equal(t, RowRange{Lo: 0, Hi: 2}, s.QuizRows(2))
	s.ExactTestWindow = false
	assert.Equal(t, RowRange{Lo: 0, Hi: 1}, s.TestRows(1))
}

func TestSchemeValidate(t *testing.T) {
	assert.NoError(t, DefaultScheme().Validate())

	s := DefaultScheme()
	s.NumTests = -1
	assert.True(t, IsDataError(s.Validate()))

	s = DefaultScheme()
	s.QuizWeight = -.4
	assert.True(t, IsDataError(s.Validate()))
}

func TestLetterOrder(t *testing.T) {
	assert.Greater(t, A.rank(), B.rank())
	assert.Greater(t, B.rank(), C.rank())
	assert.Greater(t, C.rank(), F.rank())
	assert.Equal(t, 0, Letter("D").rank())
}
