// Package export serializes flat rows to tabular output formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tbraaten/orderflat/internal/flatten"
)

// WriteCSV writes rows to w as comma-separated text with a header row.
// Columns follow flatten.Columns() order; null dates render as empty cells.
func WriteCSV(w io.Writer, rows []flatten.FlatRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(flatten.Columns()); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for i, row := range rows {
		if err := cw.Write(Record(row)); err != nil {
			return fmt.Errorf("writing csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// WriteFile writes rows to a CSV file at path, creating or truncating it.
func WriteFile(path string, rows []flatten.FlatRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Record renders one flat row as CSV cells in column order.
func Record(row flatten.FlatRow) []string {
	return []string{
		strconv.FormatInt(row.CustomerID, 10),
		row.CustomerName,
		dateCell(row.RegistrationDate),
		strconv.FormatBool(row.IsVIP),
		strconv.FormatInt(row.OrderID, 10),
		dateCell(row.OrderDate),
		strconv.FormatInt(row.ProductID, 10),
		row.ProductName,
		row.Category,
		floatCell(row.UnitPrice),
		strconv.FormatInt(row.ItemQuantity, 10),
		floatCell(row.TotalItemPrice),
		floatCell(row.TotalOrderValuePercentage),
	}
}

func dateCell(d pgtype.Date) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format("2006-01-02")
}

func floatCell(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
