package otfgrade

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

//
// ReportFileName derives the report name from the gradebook path:
// the base name without its extension, plus _letter.csv
//
func ReportFileName(gradePath string) string {
	base := filepath.Base(gradePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + "_letter.csv"
}

//
// WriteReport writes one "<name>: <letter>" line per student
// in roster order.
//
func WriteReport(w io.Writer, roster []string, letters []Letter) error {
	if len(roster) != len(letters) {
		return &DataError{Msg: fmt.Sprintf("Wrong number of columns: %d names for %d grades", len(roster), len(letters))}
	}
	bw := bufio.NewWriter(w)
	for i, name := range roster {
		if _, err := fmt.Fprintf(bw, "%s: %s\n", name, letters[i]); err != nil {
			return errors.Wrap(err, "cannot write report")
		}
	}
	return errors.Wrap(bw.Flush(), "cannot write report")
}

//
// WriteReportFile writes the report for gradePath into dir and returns
// the path of the file written. Nothing is left behind on failure.
//
func WriteReportFile(dir, gradePath string, roster []string, letters []Letter) (string, error) {
	if len(roster) != len(letters) {
		return "", &DataError{Msg: fmt.Sprintf("Wrong number of columns: %d names for %d grades", len(roster), len(letters))}
	}
	out := filepath.Join(dir, ReportFileName(gradePath))

	f, err := os.Create(out)
	if err != nil {
		return "", errors.Wrap(err, "cannot create report file")
	}
	if err := WriteReport(f, roster, letters); err != nil {
		f.Close()
		os.Remove(out)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(out)
		return "", errors.Wrap(err, "cannot close report file")
	}
	return out, nil
}
