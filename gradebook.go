package otfgrade

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

//
// Matrix is a gradebook: one row per assignment,
// one column per student.
//
type Matrix [][]float64

// Rows is the number of assignments.
func (m Matrix) Rows() int {
	return len(m)
}

// Cols is the number of students.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// ColumnSum adds up student x's scores over the rows in r.
func (m Matrix) ColumnSum(x int, r RowRange) float64 {
	var sum float64
	for i := r.Lo; i < r.Hi; i++ {
		sum += m[i][x]
	}
	return sum
}

//
// Validate checks the gradebook against the roster it will be reported
// with and the scheme it will be weighted by.
//
func (m Matrix) Validate(rosterLen int, s Scheme) error {
	for i, row := range m {
		if len(row) != m.Cols() {
			return &DataError{Line: i + 1, Msg: fmt.Sprintf("Wrong number of columns: expected %d, found %d", m.Cols(), len(row))}
		}
	}
	if m.Cols() != rosterLen {
		return &DataError{Msg: fmt.Sprintf("Wrong number of columns: gradebook has %d students, roster has %d", m.Cols(), rosterLen)}
	}
	if m.Rows() < s.MinRows() {
		return &DataError{Msg: fmt.Sprintf("gradebook has %d assignments, grading needs at least %d (%d quizzes, %d tests)",
			m.Rows(), s.MinRows(), s.NumQuizzes, s.NumTests)}
	}
	return nil
}

//
// DataError reports gradebook or roster content that
// cannot be used, as opposed to a file that cannot be read.
//
type DataError struct {
	// file the data came from, if known
	Path string
	// 1-based line number, 0 when the problem is not tied to a line
	Line int
	Msg  string
}

func (e *DataError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Msg)
	return b.String()
}

// IsDataError reports whether the cause of err is a *DataError.
func IsDataError(err error) bool {
	_, ok := errors.Cause(err).(*DataError)
	return ok
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	return cr
}

func blankRecord(rec []string) bool {
	for _, field := range rec {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

//
// ReadGradebook parses a comma separated numeric grid.
// Blank, whitespace only and # comment lines are skipped, every row must have
// the same number of values.
//
func ReadGradebook(r io.Reader) (Matrix, error) {
	cr := newCSVReader(r)
	var m Matrix
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if pe, ok := err.(*csv.ParseError); ok {
				return nil, &DataError{Line: pe.Line, Msg: pe.Err.Error()}
			}
			return nil, errors.Wrap(err, "problems reading gradebook")
		}
		if blankRecord(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)

		row := make([]float64, len(rec))
		for i, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, &DataError{Line: line, Msg: fmt.Sprintf("could not convert string to float: %q", field)}
			}
			row[i] = v
		}
		if len(m) > 0 && len(row) != len(m[0]) {
			return nil, &DataError{Line: line, Msg: fmt.Sprintf("Wrong number of columns: expected %d, found %d", len(m[0]), len(row))}
		}
		m = append(m, row)
	}
	if len(m) == 0 {
		return nil, &DataError{Msg: "gradebook is empty"}
	}
	return m, nil
}

//
// ReadRoster parses student names laid out as a single row
// or a single column.
//
func ReadRoster(r io.Reader) ([]string, error) {
	cr := newCSVReader(r)
	var names []string
	var rows, widest int
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if pe, ok := err.(*csv.ParseError); ok {
				return nil, &DataError{Line: pe.Line, Msg: pe.Err.Error()}
			}
			return nil, errors.Wrap(err, "problems reading roster")
		}
		rows++
		if len(rec) > widest {
			widest = len(rec)
		}
		for _, field := range rec {
			if name := strings.TrimSpace(field); name != "" {
				names = append(names, name)
			}
		}
	}
	if rows > 1 && widest > 1 {
		return nil, &DataError{Msg: "roster must be a single row or a single column of names"}
	}
	if len(names) == 0 {
		return nil, &DataError{Msg: "roster is empty"}
	}
	return names, nil
}

// LoadGradebook reads the gradebook file at path.
func LoadGradebook(path string) (Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open gradebook")
	}
	defer f.Close()

	m, err := ReadGradebook(f)
	return m, withPath(err, path)
}

// LoadRoster reads the roster file at path.
func LoadRoster(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open roster")
	}
	defer f.Close()

	names, err := ReadRoster(f)
	return names, withPath(err, path)
}

func withPath(err error, path string) error {
	if err == nil {
		return nil
	}
	if de, ok := err.(*DataError); ok {
		de.Path = path
		return de
	}
	return errors.Wrapf(err, "%s", path)
}
