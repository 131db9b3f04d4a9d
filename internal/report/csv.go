package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bilancio/internal/core"
)

// csvHeader is the fixed export column set.
var csvHeader = []string{"ts", "who", "category", "amount_display", "display_ccy", "amount_original", "currency", "note"}

// WriteCSV writes every non-deleted expense as one CSV row in the
// display currency. Timestamps are epoch milliseconds; the original
// amount is exported verbatim and newlines in notes become spaces.
func (s *Service) WriteCSV(w io.Writer, snap *core.Snapshot, displayCcy string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range s.ExpenseRows(snap, displayCcy) {
		record := []string{
			strconv.FormatInt(row.Timestamp.UnixMilli(), 10),
			row.Payer,
			row.Category,
			row.AmountInDisplay.StringFixed(2),
			core.NormalizeCurrency(displayCcy),
			row.OriginalAmount,
			row.OriginalCurrency,
			strings.ReplaceAll(row.Note, "\n", " "),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
