package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBoardMarshalJSON(t *testing.T) {
	board := Board{
		ID:   1,
		Name: "Alpha",
		Extra: map[string]json.RawMessage{
			"type": json.RawMessage(`"scrum"`),
			"id":   json.RawMessage(`999`),
		},
	}

	raw, err := json.Marshal(board)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got, want := string(raw), `{"id":1,"name":"Alpha","type":"scrum"}`; got != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}

	raw, err = json.Marshal(Board{ID: 2, Name: "Beta"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got, want := string(raw), `{"id":2,"name":"Beta"}`; got != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}
}

func TestParseSprintState(t *testing.T) {
	tests := []struct {
		in      string
		want    SprintState
		wantErr bool
	}{
		{in: "future", want: SprintFuture},
		{in: "ACTIVE", want: SprintActive},
		{in: " Closed ", want: SprintClosed},
		{in: "paused", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseSprintState(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSprintState(%q) = %q, want error", tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseSprintState(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestSprintDetailJSON(t *testing.T) {
	start := time.Date(2020, 2, 3, 9, 0, 0, 0, time.UTC)
	detail := SprintDetail{
		Sprint: Sprint{ID: 5, BoardID: 2, Name: "S5", State: SprintActive, StartDate: &start},
		Issues: SprintIssues{
			Completed:         []SprintIssue{},
			NotCompleted:      []SprintIssue{},
			Punted:            []SprintIssue{},
			AddedDuringSprint: []string{},
		},
	}

	raw, err := json.Marshal(detail)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"id", "boardId", "name", "state", "startDate", "issues", "metrics"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing %q in %s", key, raw)
		}
	}
	for _, key := range []string{"endDate", "completeDate", "goal"} {
		if _, ok := fields[key]; ok {
			t.Errorf("unexpected %q in %s", key, raw)
		}
	}
	if got := string(fields["startDate"]); got != `"2020-02-03T09:00:00Z"` {
		t.Errorf("startDate = %s", got)
	}
}
