package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"szpion/models"
)

// 正規化はネットワーク経由のレスポンスとフィクスチャの両方に同じ処理を適用します。
// 未知のフィールドは無視し、必須フィールドが欠けていればエラーにします。

var errMissingValues = errors.New("values がありません")

// page は /rest/agile/1.0 のページ形式のレスポンスです
type page struct {
	Values *[]json.RawMessage `json:"values"`
}

func decodePage(raw []byte) ([]json.RawMessage, error) {
	var p page
	if err := decodeJSON(raw, &p); err != nil {
		return nil, err
	}
	if p.Values == nil {
		return nil, errMissingValues
	}
	return *p.Values, nil
}

func decodeJSON(raw []byte, v interface{}) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.New("レスポンスが空です")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("JSON解析エラー: %w", err)
	}
	return nil
}

// normalizeBoards はボード一覧を正規化します。順序は入力のまま保持します
func normalizeBoards(raw []byte) ([]models.Board, error) {
	values, err := decodePage(raw)
	if err != nil {
		return nil, err
	}

	boards := make([]models.Board, 0, len(values))
	for i, v := range values {
		board, err := normalizeBoard(v)
		if err != nil {
			return nil, fmt.Errorf("ボード[%d]: %w", i, err)
		}
		boards = append(boards, board)
	}
	return boards, nil
}

func normalizeBoard(raw json.RawMessage) (models.Board, error) {
	var fields map[string]json.RawMessage
	if err := decodeJSON(raw, &fields); err != nil {
		return models.Board{}, err
	}
	if fields == nil {
		return models.Board{}, errors.New("ボードが null です")
	}

	idRaw, ok := fields["id"]
	if !ok || isNull(idRaw) {
		return models.Board{}, errors.New("id がありません")
	}
	var id int
	if err := json.Unmarshal(idRaw, &id); err != nil {
		return models.Board{}, fmt.Errorf("id が不正です: %w", err)
	}

	nameRaw, ok := fields["name"]
	if !ok || isNull(nameRaw) {
		return models.Board{}, errors.New("name がありません")
	}
	var name string
	if err := json.Unmarshal(nameRaw, &name); err != nil {
		return models.Board{}, fmt.Errorf("name が不正です: %w", err)
	}

	delete(fields, "id")
	delete(fields, "name")

	return models.Board{ID: id, Name: name, Extra: fields}, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

type rawSprint struct {
	ID           *int    `json:"id"`
	Name         *string `json:"name"`
	State        *string `json:"state"`
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	CompleteDate string  `json:"completeDate"`
	Goal         string  `json:"goal"`
}

// normalizeSprints はボードのスプリント一覧を正規化します
// 各スプリントの BoardID には要求された boardID を設定します
func normalizeSprints(raw []byte, boardID int) ([]models.Sprint, error) {
	values, err := decodePage(raw)
	if err != nil {
		return nil, err
	}

	sprints := make([]models.Sprint, 0, len(values))
	for i, v := range values {
		var rs rawSprint
		if err := decodeJSON(v, &rs); err != nil {
			return nil, fmt.Errorf("スプリント[%d]: %w", i, err)
		}
		sprint, err := rs.toSprint(boardID, rs.StartDate, rs.EndDate, rs.CompleteDate)
		if err != nil {
			return nil, fmt.Errorf("スプリント[%d]: %w", i, err)
		}
		sprints = append(sprints, sprint)
	}
	return sprints, nil
}

func (rs rawSprint) toSprint(boardID int, start, end, complete string) (models.Sprint, error) {
	if rs.ID == nil {
		return models.Sprint{}, errors.New("id がありません")
	}
	if rs.Name == nil {
		return models.Sprint{}, errors.New("name がありません")
	}
	if rs.State == nil {
		return models.Sprint{}, errors.New("state がありません")
	}
	state, err := models.ParseSprintState(*rs.State)
	if err != nil {
		return models.Sprint{}, err
	}

	sprint := models.Sprint{
		ID:      *rs.ID,
		BoardID: boardID,
		Name:    *rs.Name,
		State:   state,
		Goal:    rs.Goal,
	}
	if sprint.StartDate, err = parseDate("startDate", start); err != nil {
		return models.Sprint{}, err
	}
	if sprint.EndDate, err = parseDate("endDate", end); err != nil {
		return models.Sprint{}, err
	}
	if sprint.CompleteDate, err = parseDate("completeDate", complete); err != nil {
		return models.Sprint{}, err
	}
	return sprint, nil
}

var dateLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
}

// parseDate はJIRAの日時を解析します。空文字は「日付なし」として nil を返します
func parseDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s の日時形式が不正です: %q", field, s)
}

type rawEstimateSum struct {
	Value *float64 `json:"value"`
}

type rawReportIssue struct {
	ID                *int    `json:"id"`
	Key               *string `json:"key"`
	Summary           string  `json:"summary"`
	TypeName          string  `json:"typeName"`
	StatusName        string  `json:"statusName"`
	EstimateStatistic struct {
		StatFieldValue rawEstimateSum `json:"statFieldValue"`
	} `json:"estimateStatistic"`
}

type rawSprintReport struct {
	Contents *struct {
		CompletedIssues               []rawReportIssue `json:"completedIssues"`
		IssuesNotCompletedInCurrent   []rawReportIssue `json:"issuesNotCompletedInCurrentSprint"`
		PuntedIssues                  []rawReportIssue `json:"puntedIssues"`
		CompletedIssuesEstimateSum    rawEstimateSum   `json:"completedIssuesEstimateSum"`
		IssuesNotCompletedEstimateSum rawEstimateSum   `json:"issuesNotCompletedEstimateSum"`
		PuntedIssuesEstimateSum       rawEstimateSum   `json:"puntedIssuesEstimateSum"`
		AllIssuesEstimateSum          rawEstimateSum   `json:"allIssuesEstimateSum"`
		IssueKeysAddedDuringSprint    map[string]bool  `json:"issueKeysAddedDuringSprint"`
	} `json:"contents"`
	Sprint *struct {
		rawSprint
		IsoStartDate    string `json:"isoStartDate"`
		IsoEndDate      string `json:"isoEndDate"`
		IsoCompleteDate string `json:"isoCompleteDate"`
	} `json:"sprint"`
}

// normalizeSprintReport はgreenhopperのスプリントレポートを SprintDetail に正規化します
func normalizeSprintReport(raw []byte, boardID, sprintID int) (*models.SprintDetail, error) {
	var report rawSprintReport
	if err := decodeJSON(raw, &report); err != nil {
		return nil, err
	}
	if report.Sprint == nil {
		return nil, errors.New("sprint がありません")
	}
	if report.Contents == nil {
		return nil, errors.New("contents がありません")
	}

	// startDate 等はロケール依存の表示形式なので iso* を使います
	rs := report.Sprint
	sprint, err := rs.toSprint(boardID, rs.IsoStartDate, rs.IsoEndDate, rs.IsoCompleteDate)
	if err != nil {
		return nil, fmt.Errorf("sprint: %w", err)
	}
	if sprint.ID != sprintID {
		return nil, fmt.Errorf("スプリントIDが一致しません: 要求=%d, 応答=%d", sprintID, sprint.ID)
	}

	c := report.Contents
	detail := &models.SprintDetail{Sprint: sprint}

	if detail.Issues.Completed, err = normalizeIssues("completedIssues", c.CompletedIssues); err != nil {
		return nil, err
	}
	if detail.Issues.NotCompleted, err = normalizeIssues("issuesNotCompletedInCurrentSprint", c.IssuesNotCompletedInCurrent); err != nil {
		return nil, err
	}
	if detail.Issues.Punted, err = normalizeIssues("puntedIssues", c.PuntedIssues); err != nil {
		return nil, err
	}
	detail.Issues.AddedDuringSprint = addedKeys(c.IssueKeysAddedDuringSprint, detail.Issues)

	detail.Metrics = models.SprintMetrics{
		CompletedEstimate:    c.CompletedIssuesEstimateSum.value(),
		NotCompletedEstimate: c.IssuesNotCompletedEstimateSum.value(),
		PuntedEstimate:       c.PuntedIssuesEstimateSum.value(),
		AllEstimate:          c.AllIssuesEstimateSum.value(),
		CompletedCount:       len(detail.Issues.Completed),
		NotCompletedCount:    len(detail.Issues.NotCompleted),
		PuntedCount:          len(detail.Issues.Punted),
	}

	return detail, nil
}

// greenhopper は見積もりがない場合 {"text":"null"} を返します
func (s rawEstimateSum) value() float64 {
	if s.Value == nil {
		return 0
	}
	return *s.Value
}

func normalizeIssues(field string, raw []rawReportIssue) ([]models.SprintIssue, error) {
	issues := make([]models.SprintIssue, 0, len(raw))
	for i, r := range raw {
		if r.ID == nil {
			return nil, fmt.Errorf("%s[%d]: id がありません", field, i)
		}
		if r.Key == nil {
			return nil, fmt.Errorf("%s[%d]: key がありません", field, i)
		}
		issues = append(issues, models.SprintIssue{
			ID:       *r.ID,
			Key:      *r.Key,
			Summary:  r.Summary,
			Type:     r.TypeName,
			Status:   r.StatusName,
			Estimate: r.EstimateStatistic.StatFieldValue.Value,
		})
	}
	return issues, nil
}

// addedKeys はスプリント途中で追加されたイシューのキーをレポート内の出現順で返します
// map の反復順に依存しないよう、イシュー一覧の順序を基準にします
func addedKeys(added map[string]bool, issues models.SprintIssues) []string {
	keys := []string{}
	for _, group := range [][]models.SprintIssue{issues.Completed, issues.NotCompleted, issues.Punted} {
		for _, issue := range group {
			if added[issue.Key] {
				keys = append(keys, issue.Key)
			}
		}
	}
	return keys
}
