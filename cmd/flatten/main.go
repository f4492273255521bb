// Command flatten runs the transform once from the command line: it loads a
// nested orders export and an optional VIP roster, flattens them, and writes
// the result to a CSV file or stdout. No database required.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/tbraaten/orderflat/internal/export"
	"github.com/tbraaten/orderflat/internal/flatten"
	"github.com/tbraaten/orderflat/internal/logging"
	"github.com/tbraaten/orderflat/internal/orders"
	"github.com/tbraaten/orderflat/internal/roster"
)

func main() {
	var (
		ordersPath     string
		vipsPath       string
		categoriesPath string
		outPath        string
		logLevel       string
	)
	flag.StringVar(&ordersPath, "orders", "customer_orders.json", "path to the nested orders JSON export")
	flag.StringVar(&vipsPath, "vips", "", "path to the VIP roster (one customer ID per line)")
	flag.StringVar(&categoriesPath, "categories", "", "optional YAML file of category code overrides")
	flag.StringVar(&outPath, "out", "", "output CSV path (default: stdout)")
	flag.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logging.Setup(logLevel, "text")

	customers, err := orders.LoadFile(ordersPath)
	if err != nil {
		slog.Error("loading orders", "error", err)
		os.Exit(1)
	}

	vips := make(flatten.VIPSet)
	if vipsPath != "" {
		vips, err = roster.LoadFile(vipsPath)
		if err != nil {
			slog.Error("loading VIP roster", "error", err)
			os.Exit(1)
		}
	}

	categories := flatten.DefaultCategories()
	if categoriesPath != "" {
		f, err := os.Open(categoriesPath)
		if err != nil {
			slog.Error("opening categories file", "error", err)
			os.Exit(1)
		}
		categories, err = flatten.LoadCategories(f)
		f.Close()
		if err != nil {
			slog.Error("loading categories file", "error", err)
			os.Exit(1)
		}
	}

	rows, report := flatten.New(categories).Flatten(customers, vips)

	for _, failure := range report.Failures {
		slog.Warn("record dropped", "record", failure.String())
	}

	if outPath != "" {
		err = export.WriteFile(outPath, rows)
	} else {
		err = export.WriteCSV(os.Stdout, rows)
	}
	if err != nil {
		slog.Error("writing output", "error", err)
		os.Exit(1)
	}

	slog.Info("flatten completed",
		"customers", len(customers),
		"rows", report.Rows,
		"skipped", report.Skipped,
		"failures", len(report.Failures),
	)
}
