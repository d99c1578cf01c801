package scraper

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// csvHeader mirrors the WooCommerce product import column set, so the CSV
// can be fed straight into a store import.
var csvHeader = []string{
	"Type",
	"SKU",
	"Name",
	"Published",
	"Is featured?",
	"Visibility in catalog",
	"Short description",
	"Description",
	"Tax status",
	"In stock?",
	"Backorders",
	"Allow customer reviews?",
	"Regular price",
	"Sale price",
	"Categories",
	"Tags",
	"Images",
}

// RecordsToCSV serializes the records with RFC 4180 quoting: fields with
// commas, quotes, or newlines are quoted and embedded quotes doubled, so a
// description survives the round trip byte for byte.
func RecordsToCSV(records []ProductRecord) (string, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			"simple",
			rec.SKU,
			rec.Name,
			"1",
			"0",
			"visible",
			rec.ShortDescription,
			rec.Description,
			"taxable",
			boolTo01(rec.InStock),
			"0",
			"1",
			rec.RegularPrice,
			rec.SalePrice,
			rec.Categories,
			rec.Tags,
			rec.Images,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return buf.String(), nil
}

func boolTo01(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
