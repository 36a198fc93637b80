package api

import (
	"maps"
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"szpion/models"
)

func TestNormalizeBoards(t *testing.T) {
	raw := []byte(`{"isLast":true,"values":[
		{"id":3,"name":"Zeta","type":"kanban","location":{"projectKey":"ZET"}},
		{"id":1,"name":"Alpha"}
	]}`)

	boards, err := normalizeBoards(raw)
	if err != nil {
		t.Fatalf("normalizeBoards: %v", err)
	}
	if len(boards) != 2 || boards[0].ID != 3 || boards[1].ID != 1 {
		t.Fatalf("boards = %+v, want input order 3, 1", boards)
	}
	if diff := cmp.Diff([]string{"location", "type"}, slices.Sorted(maps.Keys(boards[0].Extra))); diff != "" {
		t.Errorf("extra keys mismatch (-want +got):\n%s", diff)
	}
	if len(boards[1].Extra) != 0 {
		t.Errorf("boards[1].Extra = %v, want empty", boards[1].Extra)
	}
}

func TestNormalizeBoards_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty":          ``,
		"not json":       `nope`,
		"missing values": `{"total":1}`,
		"null values":    `{"values":null}`,
		"null board":     `{"values":[null]}`,
		"missing id":     `{"values":[{"name":"A"}]}`,
		"string id":      `{"values":[{"id":"1","name":"A"}]}`,
		"null id":        `{"values":[{"id":null,"name":"A"}]}`,
		"missing name":   `{"values":[{"id":1}]}`,
		"numeric name":   `{"values":[{"id":1,"name":2}]}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := normalizeBoards([]byte(raw)); err == nil {
				t.Fatal("normalizeBoards succeeded, want error")
			}
		})
	}
}

func TestNormalizeBoards_EmptyList(t *testing.T) {
	boards, err := normalizeBoards([]byte(`{"values":[]}`))
	if err != nil {
		t.Fatalf("normalizeBoards: %v", err)
	}
	if boards == nil || len(boards) != 0 {
		t.Errorf("boards = %#v, want empty slice", boards)
	}
}

func TestNormalizeSprints(t *testing.T) {
	raw := []byte(`{"values":[
		{"id":11,"name":"S1","state":"CLOSED","originBoardId":4,
		 "startDate":"2020-02-03T09:00:00.000+01:00","endDate":"2020-02-17T09:00:00.000+0100",
		 "completeDate":"2020-02-17T10:00:00Z","goal":"ship"},
		{"id":12,"name":"S2","state":"future"}
	]}`)

	sprints, err := normalizeSprints(raw, 9)
	if err != nil {
		t.Fatalf("normalizeSprints: %v", err)
	}

	start := time.Date(2020, 2, 3, 8, 0, 0, 0, time.UTC)
	end := time.Date(2020, 2, 17, 8, 0, 0, 0, time.UTC)
	complete := time.Date(2020, 2, 17, 10, 0, 0, 0, time.UTC)
	want := []models.Sprint{
		{ID: 11, BoardID: 9, Name: "S1", State: models.SprintClosed, StartDate: &start, EndDate: &end, CompleteDate: &complete, Goal: "ship"},
		{ID: 12, BoardID: 9, Name: "S2", State: models.SprintFuture},
	}
	if diff := cmp.Diff(want, sprints); diff != "" {
		t.Errorf("sprints mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeSprints_Invalid(t *testing.T) {
	tests := map[string]string{
		"missing values": `{}`,
		"missing id":     `{"values":[{"name":"S","state":"active"}]}`,
		"missing name":   `{"values":[{"id":1,"state":"active"}]}`,
		"missing state":  `{"values":[{"id":1,"name":"S"}]}`,
		"unknown state":  `{"values":[{"id":1,"name":"S","state":"paused"}]}`,
		"bad date":       `{"values":[{"id":1,"name":"S","state":"active","startDate":"03/Feb/20"}]}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := normalizeSprints([]byte(raw), 1); err == nil {
				t.Fatal("normalizeSprints succeeded, want error")
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2020, 2, 3, 8, 0, 0, 0, time.UTC)
	for _, s := range []string{
		"2020-02-03T09:00:00.000+0100",
		"2020-02-03T09:00:00+0100",
		"2020-02-03T09:00:00+01:00",
		"2020-02-03T08:00:00Z",
	} {
		got, err := parseDate("startDate", s)
		if err != nil {
			t.Errorf("parseDate(%q): %v", s, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("parseDate(%q) = %v, want %v", s, got, want)
		}
	}

	if got, err := parseDate("startDate", ""); got != nil || err != nil {
		t.Errorf("parseDate(\"\") = %v, %v, want nil, nil", got, err)
	}
}

func reportJSON(sprintID int, contents string) []byte {
	return []byte(`{"sprint":{"id":` + strconv.Itoa(sprintID) + `,"name":"S","state":"ACTIVE"},"contents":` + contents + `}`)
}

func TestNormalizeSprintReport_AddedKeysFollowIssueOrder(t *testing.T) {
	raw := reportJSON(5, `{
		"completedIssues":[{"id":1,"key":"K-9"},{"id":2,"key":"K-1"}],
		"issuesNotCompletedInCurrentSprint":[{"id":3,"key":"K-5"}],
		"puntedIssues":[{"id":4,"key":"K-2"}],
		"issueKeysAddedDuringSprint":{"K-2":true,"K-9":true,"K-5":true,"K-404":true,"K-1":false}
	}`)

	detail, err := normalizeSprintReport(raw, 3, 5)
	if err != nil {
		t.Fatalf("normalizeSprintReport: %v", err)
	}
	if diff := cmp.Diff([]string{"K-9", "K-5", "K-2"}, detail.Issues.AddedDuringSprint); diff != "" {
		t.Errorf("added mismatch (-want +got):\n%s", diff)
	}
	if detail.State != models.SprintActive || detail.BoardID != 3 {
		t.Errorf("sprint = %+v", detail.Sprint)
	}
	want := models.SprintMetrics{CompletedCount: 2, NotCompletedCount: 1, PuntedCount: 1}
	if diff := cmp.Diff(want, detail.Metrics); diff != "" {
		t.Errorf("metrics mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeSprintReport_Invalid(t *testing.T) {
	tests := map[string][]byte{
		"empty":             []byte(``),
		"missing sprint":    []byte(`{"contents":{}}`),
		"missing contents":  []byte(`{"sprint":{"id":5,"name":"S","state":"active"}}`),
		"other sprint":      reportJSON(6, `{}`),
		"issue without id":  reportJSON(5, `{"completedIssues":[{"key":"K-1"}]}`),
		"issue without key": reportJSON(5, `{"puntedIssues":[{"id":1}]}`),
		"bad iso date":      []byte(`{"sprint":{"id":5,"name":"S","state":"active","isoStartDate":"yesterday"},"contents":{}}`),
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := normalizeSprintReport(raw, 1, 5); err == nil {
				t.Fatal("normalizeSprintReport succeeded, want error")
			}
		})
	}
}

func TestNormalizeSprintReport_EmptyGroups(t *testing.T) {
	detail, err := normalizeSprintReport(reportJSON(5, `{}`), 1, 5)
	if err != nil {
		t.Fatalf("normalizeSprintReport: %v", err)
	}
	issues := detail.Issues
	if issues.Completed == nil || issues.NotCompleted == nil || issues.Punted == nil || issues.AddedDuringSprint == nil {
		t.Errorf("issues = %#v, want non-nil empty slices", issues)
	}
}
