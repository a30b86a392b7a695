package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Victor-armando18/cart-pricing/internal/config"
	"github.com/Victor-armando18/cart-pricing/pkg/engine"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run prices one request and returns the process exit code. The service is
// closed before run returns on every path.
func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("external-app", flag.ContinueOnError)
	rulesDir := fs.String("rules", "data/conditions", "directory holding <version>_conditions.{json,yaml} packs")
	version := fs.String("version", "latest", "condition pack version or semver range")
	cartFile := fs.String("cart", "", "JSON pricing request; a sample cart is used when empty")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg := config.Default()
	cfg.RulesDir = *rulesDir
	cfg.PackVersion = *version
	cfg.Metrics = false

	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintln(out, "   CART PRICING CLI - DIAGNOSTIC TOOL")
	fmt.Fprintln(out, strings.Repeat("=", 60))

	req, err := loadRequest(*cartFile)
	if err != nil {
		fmt.Fprintf(out, "\nERROR: %v\n", err)
		return 1
	}

	svc := engine.NewService(cfg, engine.WithLogger(log.Logger.Level(zerolog.WarnLevel)))
	defer svc.Close()

	result, err := svc.PriceWithTimeout(context.Background(), req, 5*time.Second)
	if err != nil {
		fmt.Fprintf(out, "\nERROR: %v\n", err)
		return 1
	}

	displayLedger(out, result)
	return 0
}

func loadRequest(path string) (engine.Request, error) {
	if path == "" {
		return sampleRequest(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Request{}, err
	}
	var req engine.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return engine.Request{}, fmt.Errorf("parse pricing request %s: %w", path, err)
	}
	return req, nil
}

func sampleRequest() engine.Request {
	return engine.Request{
		Cart: engine.Cart{
			ID:       "CART-CLI-2024",
			Currency: "AOA",
			Items: []engine.Item{
				{SKU: "PROD-A", Price: 100, Quantity: 2},
				{SKU: "PROD-B", Price: 50, Quantity: 1},
			},
			Shipments: []engine.Entry{{ID: "ship-1", Amount: 10}, {ID: "ship-2", Amount: 5}},
			Payments:  []engine.Entry{{ID: "card", Amount: 200}, {ID: "voucher", Amount: 25}},
		},
	}
}

func displayLedger(out io.Writer, res *engine.Result) {
	fmt.Fprintln(out, "\n[1. LEDGER]")
	for _, pr := range res.Ledger.Phases() {
		fmt.Fprintf(out, "   [%-13s] %10.2f -> %10.2f  (%+.2f, %d conditions)\n",
			strings.ToUpper(string(pr.Phase)), pr.BaseAmount, pr.FinalAmount, pr.Adjustment, pr.AppliedConditions)
	}

	fmt.Fprintln(out, "\n[2. CONDITIONS]")
	fmt.Fprintf(out, "   Applied: %s\n", strings.Join(res.AppliedConditions, ", "))
	if len(res.SkippedConditions) == 0 {
		fmt.Fprintln(out, "   Skipped: none")
	} else {
		fmt.Fprintf(out, "   Skipped: %s\n", strings.Join(res.SkippedConditions, ", "))
	}

	fmt.Fprintln(out, "\n[3. SUMMARY]")
	summary, _ := json.MarshalIndent(res.Summary, "   ", "  ")
	fmt.Fprintln(out, "   "+string(summary))

	fmt.Fprintln(out, "\n[4. TOTALS]")
	fmt.Fprintf(out, "   Run:       %s\n", res.RunID)
	fmt.Fprintf(out, "   Pack:      %s\n", res.PackVersion)
	fmt.Fprintf(out, "   Subtotal:  %.2f %s\n", res.Subtotal, res.Currency)
	fmt.Fprintf(out, "   Total:     %.2f %s\n", res.Total, res.Currency)

	fmt.Fprintln(out, strings.Repeat("=", 60))
}
