package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/eshaffer321/campuscard-go/internal/config"
	"github.com/eshaffer321/campuscard-go/internal/logging"
	"github.com/eshaffer321/campuscard-go/pkg/campuscard"
)

// Flags holds the command line options
type Flags struct {
	EnvFile     string
	Start       string
	End         string
	IDSerial    string
	ServiceHall string
	Format      string
	Rows        int
}

func main() {
	flags := parseFlags()

	cfg := config.Load(flags.EnvFile)
	if flags.IDSerial != "" {
		cfg.IDSerial = flags.IDSerial
	}
	if flags.ServiceHall != "" {
		cfg.ServiceHall = flags.ServiceHall
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireCredentials(); err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewProduction(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	params, err := periodParams(flags, cfg.Location(), time.Now())
	if err != nil {
		log.Fatal(err)
	}

	client, err := campuscard.NewClient(cfg.ClientOptions(logger))
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := client.Reports.Generate(ctx, params)
	if err != nil {
		logger.Error("report failed", "kind", campuscard.ErrorKind(err), "error", err)
		fmt.Fprintf(os.Stderr, "Failed to generate report: %v\n", err)
		os.Exit(1)
	}

	switch flags.Format {
	case "json":
		err = writeJSON(os.Stdout, report)
	default:
		err = writeText(os.Stdout, report, flags.Rows)
	}
	if err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
}

func parseFlags() *Flags {
	flags := &Flags{}

	flag.StringVar(&flags.EnvFile, "env", ".env", "Path to a .env file (missing files are ignored)")
	flag.StringVar(&flags.Start, "start", "", "Start date YYYY-MM-DD (default: January 1 of this year)")
	flag.StringVar(&flags.End, "end", "", "End date YYYY-MM-DD (default: December 31 of this year)")
	flag.StringVar(&flags.IDSerial, "idserial", "", "Identity (overrides CAMPUSCARD_IDSERIAL)")
	flag.StringVar(&flags.ServiceHall, "servicehall", "", "Session credential (overrides CAMPUSCARD_SERVICEHALL)")
	flag.StringVar(&flags.Format, "format", "text", "Output format: text or json")
	flag.IntVar(&flags.Rows, "rows", 20, "Number of newest records to print in text output (0 for all)")

	flag.Parse()
	return flags
}

// periodParams resolves the requested period, defaulting to now's calendar year
func periodParams(flags *Flags, loc *time.Location, now time.Time) (*campuscard.ReportParams, error) {
	start, end := campuscard.CalendarYear(now.In(loc))

	if flags.Start != "" {
		d, err := campuscard.ParseDate(flags.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid -start: %w", err)
		}
		start = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	}
	if flags.End != "" {
		d, err := campuscard.ParseDate(flags.End)
		if err != nil {
			return nil, fmt.Errorf("invalid -end: %w", err)
		}
		end = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	}

	return &campuscard.ReportParams{Start: start, End: end}, nil
}
