// Package fixtures は mocked モードで使うJIRAレスポンスの記録です
//
// ファイルはJIRAが返すJSONをそのまま保存したもので、live モードと同じ正規化処理を通ります。
//
//	boards.json                        GET /rest/agile/1.0/board
//	sprints/{boardId}.json             GET /rest/agile/1.0/board/{boardId}/sprint
//	sprintreport/{boardId}-{sprintId}.json
//	                                   GET /rest/greenhopper/1.0/rapid/charts/sprintreport
package fixtures

import "embed"

//go:embed boards.json sprints/*.json sprintreport/*.json
var FS embed.FS
