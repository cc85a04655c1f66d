package otfgrade

import (
	"fmt"
	"math"
)

// Letter is a recommended letter grade.
type Letter string

const (
	A Letter = "A"
	B Letter = "B"
	C Letter = "C"
	F Letter = "F"
)

// rank orders letters, better grades rank higher and unknown letters lowest.
func (l Letter) rank() int {
	switch l {
	case A:
		return 4
	case B:
		return 3
	case C:
		return 2
	case F:
		return 1
	}
	return 0
}

//
// RowRange is a half-open range [Lo, Hi) of assignment rows
// in a gradebook matrix.
//
type RowRange struct {
	Lo int
	Hi int
}

// Len is the number of rows covered by the range.
func (r RowRange) Len() int {
	if r.Hi <= r.Lo {
		return 0
	}
	return r.Hi - r.Lo
}

//
// Scheme holds the assignment weighting used to build
// each student's total.
//
type Scheme struct {
	// number of leading rows that are quizzes
	NumQuizzes int `json:"numQuizzes" yaml:"numQuizzes"`
	// number of trailing rows that are tests
	NumTests int `json:"numTests" yaml:"numTests"`
	// weight applied to the summed quiz rows (e.g. 40% is .4)
	QuizWeight float64 `json:"quizWeight" yaml:"quizWeight"`
	// weight applied to the summed test rows
	TestWeight float64 `json:"testWeight" yaml:"testWeight"`
	//
	// the historical test window starts one row early, so it covers
	// NumTests+1 rows. Setting this narrows it to exactly the last
	// NumTests rows, which changes results for existing gradebooks.
	//
	ExactTestWindow bool `json:"exactTestWindow" yaml:"exactTestWindow"`
}

// DefaultScheme is 4 quizzes at 40% and 2 tests at 60%.
func DefaultScheme() Scheme {
	return Scheme{
		NumQuizzes: 4,
		NumTests:   2,
		QuizWeight: .4,
		TestWeight: .6,
	}
}

// QuizRows is the quiz block of a matrix with n rows.
func (s Scheme) QuizRows(n int) RowRange {
	return clampRange(0, s.NumQuizzes, n)
}

//
// TestRows is the test block of a matrix with n rows.
// Unless ExactTestWindow is set this is [n-NumTests-1, n).
//
func (s Scheme) TestRows(n int) RowRange {
	lo := n - s.NumTests - 1
	if s.ExactTestWindow {
		lo = n - s.NumTests
	}
	return clampRange(lo, n, n)
}

//
// Validate rejects negative row counts and weights. Weights are
// expected to add up to 1 but that is not enforced.
//
func (s Scheme) Validate() error {
	if s.NumQuizzes < 0 || s.NumTests < 0 {
		return &DataError{Msg: fmt.Sprintf("invalid grading scheme: %d quizzes, %d tests", s.NumQuizzes, s.NumTests)}
	}
	if s.QuizWeight < 0 || s.TestWeight < 0 {
		return &DataError{Msg: fmt.Sprintf("invalid grading scheme: weights %v and %v", s.QuizWeight, s.TestWeight)}
	}
	return nil
}

// MinRows is the smallest gradebook the scheme can weight.
func (s Scheme) MinRows() int {
	return s.NumQuizzes + s.NumTests
}

func clampRange(lo, hi, n int) RowRange {
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	if hi < lo {
		hi = lo
	}
	return RowRange{Lo: lo, Hi: hi}
}

// Stats are the class-wide figures the letter bands are cut from.
type Stats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
}

//
// ClassStats computes the mean and population standard deviation
// (divide by the number of students, not n-1) of the totals.
//
func ClassStats(totals []float64) Stats {
	n := float64(len(totals))
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, t := range totals {
		sum += t
	}
	mean := sum / n

	var sq float64
	for _, t := range totals {
		d := t - mean
		sq += d * d
	}
	return Stats{Mean: mean, StdDev: math.Sqrt(sq / n)}
}

//
// LetterFor bands a total against the class stats. Comparisons are strict
// and checked best grade first, so a total sitting exactly on a boundary
// takes the lower band.
//
func LetterFor(total float64, st Stats) Letter {
	switch {
	case total > st.Mean+st.StdDev:
		return A
	case total > st.Mean:
		return B
	case total > st.Mean-st.StdDev:
		return C
	default:
		return F
	}
}

// Letters bands every total against the stats of the whole list.
func Letters(totals []float64) ([]Letter, Stats) {
	st := ClassStats(totals)
	letters := make([]Letter, len(totals))
	for i, t := range totals {
		letters[i] = LetterFor(t, st)
	}
	return letters, st
}

// Result is the outcome of classifying one gradebook.
type Result struct {
	Totals  []float64 `json:"totals"`
	Stats   Stats     `json:"stats"`
	Letters []Letter  `json:"letters"`
}

//
// Totals computes the weighted total for each student column of m.
//
func Totals(m Matrix, s Scheme) []float64 {
	n := m.Rows()
	quiz := s.QuizRows(n)
	test := s.TestRows(n)

	totals := make([]float64, m.Cols())
	for x := range totals {
		quizSum := m.ColumnSum(x, quiz)
		testSum := m.ColumnSum(x, test)
		totals[x] = quizSum*s.QuizWeight + testSum*s.TestWeight
	}
	return totals
}

//
// Classify weights each student's scores and recommends a letter based
// on where the total sits relative to the class mean and standard deviation.
// Letters are returned in student (column) order.
//
// m must be rectangular, that is checked when the gradebook is read.
//
func Classify(m Matrix, s Scheme) Result {
	totals := Totals(m, s)
	letters, st := Letters(totals)
	return Result{Totals: totals, Stats: st, Letters: letters}
}
