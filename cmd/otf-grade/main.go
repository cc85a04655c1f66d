package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/gommon/log"
	otfgrd "github.com/nsip/otf-grade"
	"github.com/nsip/otf-grade/internal/util"
	"github.com/peterbourgon/ff/v3"
	"github.com/pkg/errors"
)

// exit codes
const (
	success     = 0
	invalidData = 1
	ioError     = 2
)

const (
	defaultRosterFile = "ClassRoster.csv"
	defaultGradeFile  = "ClassGradebook.csv"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type config struct {
	rosterFile string
	gradeFile  string
	outDir     string
	scheme     otfgrd.Scheme
	verbose    bool

	serve       bool
	serviceName string
	serviceID   string
	serviceHost string
	servicePort int
}

func newFlagSet(cfg *config, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("otf-grade", flag.ContinueOnError)
	fs.SetOutput(stderr)

	def := otfgrd.DefaultScheme()
	fs.String("config", "", "config file (optional), json or yaml format.")
	fs.StringVar(&cfg.rosterFile, "roster_csv_data_file", defaultRosterFile, "The location (directory and file name) of the csv file with student names as strings")
	fs.StringVar(&cfg.rosterFile, "r", defaultRosterFile, "shorthand for -roster_csv_data_file")
	fs.StringVar(&cfg.gradeFile, "grade_csv_data_file", defaultGradeFile, "The location (directory and file name) of the csv file with student grades as numbers")
	fs.StringVar(&cfg.gradeFile, "g", defaultGradeFile, "shorthand for -grade_csv_data_file")
	fs.StringVar(&cfg.outDir, "outDir", ".", "directory the letter report is written to")
	fs.IntVar(&cfg.scheme.NumQuizzes, "quizzes", def.NumQuizzes, "number of quizzes this term (leading gradebook rows)")
	fs.IntVar(&cfg.scheme.NumTests, "tests", def.NumTests, "number of tests this term (trailing gradebook rows)")
	fs.Float64Var(&cfg.scheme.QuizWeight, "quizWeight", def.QuizWeight, "weight of quizzes in decimal form (e.g. 50% is .5)")
	fs.Float64Var(&cfg.scheme.TestWeight, "testWeight", def.TestWeight, "weight of tests in decimal form (e.g. 50% is .5)")
	fs.BoolVar(&cfg.scheme.ExactTestWindow, "exactTestWindow", false, "weight exactly the last -tests rows as tests; changes results compared to the default window, which starts one row earlier")
	fs.BoolVar(&cfg.verbose, "verbose", false, "log debug output to stderr")
	fs.BoolVar(&cfg.serve, "serve", false, "run the grade web service instead of writing a report file")
	fs.StringVar(&cfg.serviceName, "name", "", "name for this grade service instance")
	fs.StringVar(&cfg.serviceID, "id", "", "id for this grade service instance, leave blank to auto-generate a unique id")
	fs.StringVar(&cfg.serviceHost, "host", "localhost", "name/address of host for this service")
	fs.IntVar(&cfg.servicePort, "port", 0, "port to run service on, if not specified will assign an available port automatically")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: otf-grade [flags]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Reads in two csv files (one name roster and one grade file) and calculates the")
		fmt.Fprintln(stderr, "recommended grade based on standard deviation. Rows must have the same number of")
		fmt.Fprintln(stderr, "values, and the gradebook needs one column per roster entry.")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}
	return fs
}

func run(args []string, stdout, stderr io.Writer) int {

	cfg := &config{}
	fs := newFlagSet(cfg, stderr)

	logger := log.New("otf-grade")
	logger.SetOutput(stderr)
	logger.SetHeader("${level}")
	logger.SetLevel(log.WARN)

	err := ff.Parse(fs, args,
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(commandLineFirst(fs, configParser)),
	)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return success
		}
		var pe *os.PathError
		if errors.As(err, &pe) {
			logger.Warn("Problems reading file: ", err)
			fs.Usage()
			return ioError
		}
		logger.Warn("Invalid arguments: ", err)
		fs.Usage()
		return invalidData
	}
	if cfg.verbose {
		logger.SetLevel(log.DEBUG)
	}

	if err := cfg.scheme.Validate(); err != nil {
		logger.Warn("Invalid arguments: ", err)
		fs.Usage()
		return invalidData
	}

	if cfg.serve {
		return serve(cfg, stdout, logger)
	}

	ret := writeLetterReport(cfg, stdout, logger)
	if ret != success {
		fs.Usage()
	}
	return ret
}

//
// reads the roster and gradebook, classifies the students
// and writes the letter report next to outDir
//
func writeLetterReport(cfg *config, stdout io.Writer, logger *log.Logger) int {

	roster, err := otfgrd.LoadRoster(cfg.rosterFile)
	if err != nil {
		return fail(logger, err)
	}
	grades, err := otfgrd.LoadGradebook(cfg.gradeFile)
	if err != nil {
		return fail(logger, err)
	}
	if err := grades.Validate(len(roster), cfg.scheme); err != nil {
		return fail(logger, errors.Wrap(err, cfg.gradeFile))
	}
	logger.Debugf("read %d students, %d assignments (%d quiz rows, %d test rows)", grades.Cols(), grades.Rows(),
		cfg.scheme.QuizRows(grades.Rows()).Len(), cfg.scheme.TestRows(grades.Rows()).Len())

	start := time.Now()
	result := otfgrd.Classify(grades, cfg.scheme)
	util.TimeTrack(logger, start, "classify")
	logger.Debugf("class mean %.4f, std dev %.4f", result.Stats.Mean, result.Stats.StdDev)

	out, err := otfgrd.WriteReportFile(cfg.outDir, cfg.gradeFile, roster, result.Letters)
	if err != nil {
		return fail(logger, err)
	}
	fmt.Fprintf(stdout, "Wrote file: %s\n", out)

	return success
}

func fail(logger *log.Logger, err error) int {
	if otfgrd.IsDataError(err) {
		logger.Warn("Read invalid data: ", err)
		return invalidData
	}
	logger.Warn("Problems reading file: ", err)
	return ioError
}

//
// run the grade web service until interrupted
//
func serve(cfg *config, stdout io.Writer, logger *log.Logger) int {

	opts := []otfgrd.Option{
		otfgrd.Name(cfg.serviceName),
		otfgrd.ID(cfg.serviceID),
		otfgrd.Host(cfg.serviceHost),
		otfgrd.Port(cfg.servicePort),
		otfgrd.Grading(cfg.scheme),
	}

	srvc, err := otfgrd.New(opts...)
	if err != nil {
		logger.Error("Cannot create otf-grade service: ", err)
		return invalidData
	}

	srvc.PrintConfig(stdout)

	// signal handler for shutdown
	closed := make(chan struct{})
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		fmt.Fprintln(stdout, "\notf-grade shutting down")
		srvc.Shutdown()
		fmt.Fprintln(stdout, "otf-grade closed")
		close(closed)
	}()

	srvc.Start()

	// block until shutdown by sig-handler
	<-closed

	return success
}
