package otfgrade

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/nsip/otf-grade/internal/util"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

type GradeService struct {
	// embedded web server to handle classify requests
	e *echo.Echo
	// the unique name of this service when running multiple instances
	serviceName string
	// the unique id of this service when running multiple instances
	serviceID string
	// the host address this service instance is running on
	serviceHost string
	// the port that this service instance is running on
	servicePort int
	// weighting applied to every gradebook posted
	scheme Scheme
}

// ReportLine is one entry of the roster+grade report.
type ReportLine struct {
	Name   string `json:"name"`
	Letter Letter `json:"letter"`
}

//
// create a new service instance
//
func New(options ...Option) (*GradeService, error) {

	srvc := GradeService{
		serviceHost: "localhost",
		scheme:      DefaultScheme(),
	}

	if err := srvc.setOptions(options...); err != nil {
		return nil, err
	}
	if srvc.serviceName == "" {
		srvc.serviceName = util.GenerateName()
	}
	if srvc.serviceID == "" {
		srvc.serviceID = util.GenerateID()
	}

	srvc.e = echo.New()
	srvc.e.HideBanner = true
	srvc.e.Logger.SetLevel(log.INFO)
	// add pingable method to know we're up
	srvc.e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, "OK")
	})
	srvc.e.POST("/classify", srvc.buildClassifyHandler())

	return &srvc, nil
}

//
// start the service running
//
func (s *GradeService) Start() {

	address := s.Addr()
	go func(addr string) {
		if err := s.e.Start(addr); err != nil && err != http.ErrServerClosed {
			s.e.Logger.Info("error starting server: ", err, ", shutting down...")
			// attempt clean shutdown by raising sig int
			p, _ := os.FindProcess(os.Getpid())
			p.Signal(os.Interrupt)
		}
	}(address)

}

//
// creates the classify method
// requires a json body of
// roster: student names, in gradebook column order
// grades: assignment rows of scores, one value per student
//
func (s *GradeService) buildClassifyHandler() echo.HandlerFunc {

	scheme := s.scheme
	sName := s.serviceName
	sID := s.serviceID

	return func(c echo.Context) error {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		roster, m, err := parseClassifyRequest(body)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if err := m.Validate(len(roster), scheme); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		start := time.Now()
		result := Classify(m, scheme)
		c.Logger().Debugf("classified %d students (%d quiz rows, %d test rows) in %s",
			len(roster), scheme.QuizRows(m.Rows()).Len(), scheme.TestRows(m.Rows()).Len(), time.Since(start))

		report := make([]ReportLine, len(roster))
		for i, name := range roster {
			report[i] = ReportLine{Name: name, Letter: result.Letters[i]}
		}

		classifyResponse := map[string]interface{}{
			"letters":          result.Letters,
			"totals":           result.Totals,
			"mean":             result.Stats.Mean,
			"stdDev":           result.Stats.StdDev,
			"report":           report,
			"gradeServiceID":   sID,
			"gradeServiceName": sName,
		}

		return c.JSON(http.StatusOK, classifyResponse)
	}
}

//
// pulls the roster and the grade matrix out of a
// classify request body
//
func parseClassifyRequest(body []byte) ([]string, Matrix, error) {
	if !gjson.ValidBytes(body) {
		return nil, nil, errors.New("request body is not valid json")
	}

	rosterVal := gjson.GetBytes(body, "roster")
	gradesVal := gjson.GetBytes(body, "grades")
	if !rosterVal.IsArray() || !gradesVal.IsArray() {
		return nil, nil, errors.New("must supply arrays for roster & grades")
	}

	var roster []string
	for _, v := range rosterVal.Array() {
		roster = append(roster, v.String())
	}

	var m Matrix
	for i, rowVal := range gradesVal.Array() {
		if !rowVal.IsArray() {
			return nil, nil, &DataError{Line: i + 1, Msg: "grades row is not an array"}
		}
		var row []float64
		for _, v := range rowVal.Array() {
			if v.Type != gjson.Number {
				return nil, nil, &DataError{Line: i + 1, Msg: fmt.Sprintf("could not convert %q to float", v.String())}
			}
			row = append(row, v.Float())
		}
		m = append(m, row)
	}
	if len(m) == 0 {
		return nil, nil, &DataError{Msg: "gradebook is empty"}
	}

	return roster, m, nil
}

//
// shut the server down gracefully
//
func (s *GradeService) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.e.Shutdown(ctx); err != nil {
		s.e.Logger.Error("could not shut down server cleanly: ", err)
	}
}

// Addr is the host:port the service listens on.
func (s *GradeService) Addr() string {
	return fmt.Sprintf("%s:%d", s.serviceHost, s.servicePort)
}

func (s *GradeService) PrintConfig(w io.Writer) {

	fmt.Fprintln(w, "\n\tOTF-Grade Service Configuration")
	fmt.Fprintln(w, "\t---------------------------------")
	fmt.Fprintln(w)

	s.printID(w)
	s.printScheme(w)

}

func (s *GradeService) printID(w io.Writer) {
	fmt.Fprintln(w, "\tservice name:\t\t", s.serviceName)
	fmt.Fprintln(w, "\tservice ID:\t\t", s.serviceID)
	fmt.Fprintln(w, "\tservice host:\t\t", s.serviceHost)
	fmt.Fprintln(w, "\tservice port:\t\t", s.servicePort)
}

func (s *GradeService) printScheme(w io.Writer) {
	fmt.Fprintln(w, "\tquizzes:\t\t", s.scheme.NumQuizzes, "@", s.scheme.QuizWeight)
	fmt.Fprintln(w, "\ttests:\t\t\t", s.scheme.NumTests, "@", s.scheme.TestWeight)
	fmt.Fprintln(w, "\texact test window:\t", s.scheme.ExactTestWindow)
}
