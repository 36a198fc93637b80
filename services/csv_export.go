package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"szpion/models"
)

// sprintCSVHeaders はスプリントCSVの列と順序です
var sprintCSVHeaders = []string{
	"Key", "Summary", "Type", "Status", "Story Points", "Outcome", "Added During Sprint",
}

// WriteSprintCSV はスプリントのイシューをCSVとして書き出します
// 完了 → 未完了 → 除外 の順に、レポートの並び順のまま出力します
func WriteSprintCSV(w io.Writer, detail *models.SprintDetail) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(sprintCSVHeaders); err != nil {
		return fmt.Errorf("CSVヘッダー書き込みエラー: %w", err)
	}

	added := make(map[string]bool, len(detail.Issues.AddedDuringSprint))
	for _, key := range detail.Issues.AddedDuringSprint {
		added[key] = true
	}

	groups := []struct {
		outcome string
		issues  []models.SprintIssue
	}{
		{"completed", detail.Issues.Completed},
		{"not completed", detail.Issues.NotCompleted},
		{"punted", detail.Issues.Punted},
	}

	for _, g := range groups {
		for _, issue := range g.issues {
			estimate := ""
			if issue.Estimate != nil {
				estimate = strconv.FormatFloat(*issue.Estimate, 'f', -1, 64)
			}
			row := []string{
				issue.Key,
				issue.Summary,
				issue.Type,
				issue.Status,
				estimate,
				g.outcome,
				strconv.FormatBool(added[issue.Key]),
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("CSV書き込みエラー: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSVフラッシュエラー: %w", err)
	}
	return nil
}
