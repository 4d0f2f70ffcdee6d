// Package pdf renders the shopping list download.
package pdf

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/aleksej-tulko/foodgram/internal/model"
)

// ShoppingList renders the aggregated items as a one-page-per-overflow PDF,
// one line per ingredient.
func ShoppingList(items []model.ShoppingItem) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Shopping list", true)
	doc.AddPage()

	// Core fonts use cp1252; the translator maps the em dash separator
	// to its single-byte form.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, "Shopping list")
	doc.Ln(14)

	doc.SetFont("Helvetica", "", 12)
	for _, item := range items {
		doc.Cell(0, 8, tr(lineText(item)))
		doc.Ln(8)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: rendering shopping list: %w", err)
	}
	return buf.Bytes(), nil
}

// lineText formats one entry as "name — amount unit".
func lineText(item model.ShoppingItem) string {
	return fmt.Sprintf("%s — %s %s", item.Name, formatAmount(item.Amount), item.Unit)
}

// formatAmount prints whole numbers without a trailing ".0".
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
