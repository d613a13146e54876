package importer

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"animeshelf/internal/events"
	"animeshelf/internal/shelf"
	"animeshelf/pkg/models"
)

// Importer drives the CSV import pipeline: tokenize, reconcile each row
// against the catalog, upsert into the shelf store. Rows fail
// individually; the run itself only fails on unusable input (no header,
// missing mandatory columns).
type Importer struct {
	Shelf      *shelf.Repo
	Reconciler *Reconciler
	Hub        *events.Hub
}

func NewImporter(repo *shelf.Repo, catalog Catalog, hub *events.Hub) *Importer {
	return &Importer{
		Shelf:      repo,
		Reconciler: &Reconciler{Catalog: catalog},
		Hub:        hub,
	}
}

// Result summarizes one import run. SuccessCount counts rows that reached
// the shelf store; every rejected row contributes one entry to Errors.
type Result struct {
	RunID        string                  `json:"run_id"`
	SuccessCount int                     `json:"success_count"`
	Errors       []models.ImportRowError `json:"errors"`
}

// ImportCSV runs the whole pipeline over one CSV document. Rows are
// processed strictly in order, one catalog request in flight at a time.
func (im *Importer) ImportCSV(ctx context.Context, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	records := ParseRecords(string(data), ',')
	if len(records) == 0 {
		return nil, fmt.Errorf("empty csv: header row required")
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(strings.ToLower(name))
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:  uuid.NewString(),
		Errors: []models.ImportRowError{},
	}

	for i, rec := range records[1:] {
		rowNum := i + 2 // 1-based, after the header row
		if isBlankRecord(rec) {
			continue
		}

		if len(rec) != len(header) {
			result.Errors = append(result.Errors, models.ImportRowError{
				Row:     fmt.Sprintf("row %d", rowNum),
				Message: fmt.Sprintf("expected %d columns, got %d", len(header), len(rec)),
			})
			continue
		}

		row := make(map[string]string, len(header))
		for idx, name := range header {
			row[name] = rec[idx]
		}

		entry, rowErr := im.Reconciler.ReconcileRow(ctx, row, rowNum)
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			continue
		}

		if err := im.Shelf.Upsert(ctx, *entry); err != nil {
			log.Printf("[import] upsert %d: %v", entry.MalID, err)
			result.Errors = append(result.Errors, models.ImportRowError{
				Row:     entry.Title,
				AnimeID: entry.MalID,
				Message: "save failed",
			})
			continue
		}
		result.SuccessCount++
	}

	log.Printf("[import] run %s: %d imported, %d failed", result.RunID, result.SuccessCount, len(result.Errors))

	if im.Hub != nil {
		ev := events.ImportEvent{
			Type:     "import.finished",
			RunID:    result.RunID,
			Imported: result.SuccessCount,
			Failed:   len(result.Errors),
			At:       time.Now().UTC(),
		}
		go im.Hub.BroadcastJSON(ev)
	}

	return result, nil
}

// checkHeader enforces the minimum viable header set:
// (mal_id OR title) AND user_status AND current_episode.
func checkHeader(header []string) error {
	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[name] = true
	}

	if !present[colMalID] && !present[colTitle] {
		return fmt.Errorf("csv header must contain %q or %q", colMalID, colTitle)
	}
	if !present[colUserStatus] {
		return fmt.Errorf("csv header must contain %q", colUserStatus)
	}
	if !present[colCurrentEpisode] {
		return fmt.Errorf("csv header must contain %q", colCurrentEpisode)
	}
	return nil
}
