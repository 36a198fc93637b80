package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Board はJIRAのボードを表します
// id と name 以外のフィールドは Extra にそのまま保持され、JSON出力に含まれます
type Board struct {
	ID    int
	Name  string
	Extra map[string]json.RawMessage
}

// MarshalJSON は Extra のフィールドを id / name と同じ階層に展開します
func (b Board) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(b.Extra)+2)
	for k, v := range b.Extra {
		out[k] = v
	}

	id, err := json.Marshal(b.ID)
	if err != nil {
		return nil, err
	}
	name, err := json.Marshal(b.Name)
	if err != nil {
		return nil, err
	}
	out["id"] = id
	out["name"] = name

	return json.Marshal(out)
}

// SprintState はスプリントの状態です
type SprintState string

const (
	SprintFuture SprintState = "future"
	SprintActive SprintState = "active"
	SprintClosed SprintState = "closed"
)

// ParseSprintState はJIRAの状態文字列を SprintState に変換します
// greenhopper は "CLOSED" のように大文字で返すため大文字小文字を区別しません
func ParseSprintState(s string) (SprintState, error) {
	switch state := SprintState(strings.ToLower(strings.TrimSpace(s))); state {
	case SprintFuture, SprintActive, SprintClosed:
		return state, nil
	default:
		return "", fmt.Errorf("不明なスプリント状態: %q", s)
	}
}

// Sprint はボードに属するスプリントを表します
type Sprint struct {
	ID           int         `json:"id"`
	BoardID      int         `json:"boardId"`
	Name         string      `json:"name"`
	State        SprintState `json:"state"`
	StartDate    *time.Time  `json:"startDate,omitempty"`
	EndDate      *time.Time  `json:"endDate,omitempty"`
	CompleteDate *time.Time  `json:"completeDate,omitempty"`
	Goal         string      `json:"goal,omitempty"`
}

// SprintIssue はスプリントレポートに含まれるイシューです
type SprintIssue struct {
	ID       int      `json:"id"`
	Key      string   `json:"key"`
	Summary  string   `json:"summary"`
	Type     string   `json:"type"`
	Status   string   `json:"status"`
	Estimate *float64 `json:"estimate,omitempty"`
}

// SprintIssues はスプリントのイシューを完了状況ごとに分類したものです
type SprintIssues struct {
	Completed         []SprintIssue `json:"completed"`
	NotCompleted      []SprintIssue `json:"notCompleted"`
	Punted            []SprintIssue `json:"punted"`
	AddedDuringSprint []string      `json:"addedDuringSprint"`
}

// SprintMetrics はスプリントの見積もり集計です
type SprintMetrics struct {
	CompletedEstimate    float64 `json:"completedEstimate"`
	NotCompletedEstimate float64 `json:"notCompletedEstimate"`
	PuntedEstimate       float64 `json:"puntedEstimate"`
	AllEstimate          float64 `json:"allEstimate"`
	CompletedCount       int     `json:"completedCount"`
	NotCompletedCount    int     `json:"notCompletedCount"`
	PuntedCount          int     `json:"puntedCount"`
}

// SprintDetail は1スプリント分の詳細 (スプリント + イシュー + 集計) です
type SprintDetail struct {
	Sprint
	Issues  SprintIssues  `json:"issues"`
	Metrics SprintMetrics `json:"metrics"`
}
