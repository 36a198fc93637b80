package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"szpion/api"
	"szpion/models"
)

func TestWriteSprintCSV(t *testing.T) {
	five, half := 5.0, 0.5
	detail := &models.SprintDetail{
		Issues: models.SprintIssues{
			Completed:         []models.SprintIssue{{Key: "A-1", Summary: "Login, form", Type: "Story", Status: "Done", Estimate: &five}},
			NotCompleted:      []models.SprintIssue{{Key: "A-2", Summary: "Reset", Type: "Bug", Status: "In Progress", Estimate: &half}},
			Punted:            []models.SprintIssue{{Key: "A-3", Summary: "SSO", Type: "Task", Status: "To Do"}},
			AddedDuringSprint: []string{"A-2"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSprintCSV(&buf, detail))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Key", "Summary", "Type", "Status", "Story Points", "Outcome", "Added During Sprint"},
		{"A-1", "Login, form", "Story", "Done", "5", "completed", "false"},
		{"A-2", "Reset", "Bug", "In Progress", "0.5", "not completed", "true"},
		{"A-3", "SSO", "Task", "To Do", "", "punted", "false"},
	}, records)
}

func TestWriteSprintCSV_Fixture(t *testing.T) {
	detail, err := api.NewClient("", "", true).FetchSprint(context.Background(), 1, 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSprintCSV(&buf, detail))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"ALP-2", "Password reset link expires too early", "Bug", "Done", "2", "completed", "true"}, records[2])
}
