package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/eshaffer321/campuscard-go/pkg/campuscard"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	idSerial := os.Getenv("CAMPUSCARD_IDSERIAL")
	serviceHall := os.Getenv("CAMPUSCARD_SERVICEHALL")
	if idSerial == "" || serviceHall == "" {
		log.Fatal("CAMPUSCARD_IDSERIAL and CAMPUSCARD_SERVICEHALL environment variables are required")
	}

	location, err := locationFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	timeout, err := timeoutFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	client, err := campuscard.NewClient(&campuscard.ClientOptions{
		BaseURL:     os.Getenv("CAMPUSCARD_BASE_URL"),
		IDSerial:    idSerial,
		ServiceHall: serviceHall,
		Timeout:     timeout,
		Location:    location,
		SentryDSN:   os.Getenv("SENTRY_DSN"),
	})
	if err != nil {
		log.Fatalf("failed to initialize campus card client: %v", err)
	}
	defer client.Close()

	impl := &mcp.Implementation{
		Name:    "campus-card",
		Version: "1.0.0",
	}

	server := mcp.NewServer(impl, nil)

	registerTools(server, client)

	// stdio transport for desktop assistants
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func registerTools(server *mcp.Server, client *campuscard.Client) {
	tools := &cardTools{client: client}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_spending_summary",
		Description: "Summarize campus card consumption for a date range (default: the current year). Returns total spent, transaction count, top merchant, largest purchase, monthly trend, meal-period distribution and the merchant ranking. Recharges and account-management transactions are excluded.",
	}, tools.GetSpendingSummary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_ledger",
		Description: "List campus card consumption records for a date range, newest first. Returns time, merchant, amount, meal period and transaction type.",
	}, tools.GetLedger)
}

// locationFromEnv reads CAMPUSCARD_TIMEZONE_OFFSET in whole hours; unset
// means campuscard.DefaultLocation()
func locationFromEnv() (*time.Location, error) {
	value := os.Getenv("CAMPUSCARD_TIMEZONE_OFFSET")
	if value == "" {
		return campuscard.DefaultLocation(), nil
	}
	hours, err := strconv.Atoi(value)
	if err != nil || hours < -12 || hours > 14 {
		return nil, fmt.Errorf("invalid CAMPUSCARD_TIMEZONE_OFFSET %q: must be whole hours between -12 and 14", value)
	}
	return time.FixedZone(fmt.Sprintf("UTC%+d", hours), hours*60*60), nil
}

// timeoutFromEnv reads CAMPUSCARD_TIMEOUT; unset means the client default
func timeoutFromEnv() (time.Duration, error) {
	value := os.Getenv("CAMPUSCARD_TIMEOUT")
	if value == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(value)
	if err != nil || timeout <= 0 {
		return 0, fmt.Errorf("invalid CAMPUSCARD_TIMEOUT %q: must be a positive duration", value)
	}
	return timeout, nil
}
