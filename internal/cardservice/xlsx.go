package cardservice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/starford/memocurve/internal/models"
)

const (
	exportSheet      = "Cards"
	exportTimeLayout = "2006-01-02 15:04:05"
	exportDueLayout  = "2006-01-02 15:04"
)

var exportHeader = []interface{}{
	"Content", "Meaning", "Example", "RecordedTime",
	"ReviewCount", "ReviewDateList", "CompletedReviewDates", "NextScheduledReview",
}

// ImportResult summarises a spreadsheet import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Import reads an XLSX workbook and adds one card per data row. Column
// headers are matched case-insensitively; only Content is required, and
// rows without it are skipped (counted, not fatal). Imported cards start
// with a fresh schedule anchored at the time of import.
func (s *Service) Import(_ context.Context, r io.Reader) (ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{}, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return ImportResult{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return ImportResult{}, nil
	}

	cols := headerColumns(rows[0])
	now := s.now()

	var res ImportResult
	var cards []models.Card
	for _, row := range rows[1:] {
		content := strings.TrimSpace(cell(row, cols["content"]))
		if content == "" {
			res.Skipped++
			continue
		}
		card := models.NewCard(content,
			strings.TrimSpace(cell(row, cols["meaning"])),
			strings.TrimSpace(cell(row, cols["example"])),
			now)
		cards = append(cards, card)
		res.Imported++
	}
	if len(cards) > 0 {
		if err := s.store.AddAll(cards); err != nil {
			return ImportResult{}, err
		}
		for _, card := range cards {
			s.publish("created", card.ID)
		}
	}
	s.logger.Info("cards imported",
		slog.Int("imported", res.Imported), slog.Int("skipped", res.Skipped))
	return res, nil
}

// headerColumns maps lowercased header names to column indexes. Missing
// columns map to -1 so cell lookups fall through to empty strings.
func headerColumns(header []string) map[string]int {
	cols := map[string]int{"content": -1, "meaning": -1, "example": -1}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := cols[key]; ok {
			cols[key] = i
		}
	}
	return cols
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// Export writes the whole deck as an XLSX workbook. Each row carries the
// card fields plus its full review calendar, matching what the progress
// chart shows on screen.
func (s *Service) Export(_ context.Context, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), exportSheet)
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, card := range s.store.Cards() {
		dates := make([]string, 0, len(card.Schedule))
		for _, t := range card.Schedule {
			dates = append(dates, t.Format(exportDueLayout))
		}
		done := make([]string, 0, len(card.CompletedAt))
		for _, t := range card.CompletedAt {
			done = append(done, t.Format(exportTimeLayout))
		}
		row := []interface{}{
			card.Content, card.Meaning, card.Example,
			card.CreatedAt.Format(exportTimeLayout),
			card.ReviewCount,
			strings.Join(dates, ", "),
			strings.Join(done, ", "),
			card.NextDue.Format(exportDueLayout),
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, axis, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
