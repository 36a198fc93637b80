package services

import (
	"context"
	"fmt"
	"time"

	"szpion/config"
	"szpion/models"
	"szpion/utils"
)

// Upstream はボード/スプリントの取得元です (api.Client が実装します)
type Upstream interface {
	FetchBoards(ctx context.Context) ([]models.Board, error)
	FetchSprintsFromBoard(ctx context.Context, boardID int) ([]models.Sprint, error)
	FetchSprint(ctx context.Context, boardID, sprintID int) (*models.SprintDetail, error)
}

// DashboardService はダッシュボードAPIの各リクエストを処理します
// 取得したデータはそのまま返し、アクセスログと処理時間の記録を担当します
type DashboardService struct {
	upstream     Upstream
	clientConfig map[string]interface{}
}

// NewDashboardService は新しいダッシュボードサービスを作成します
func NewDashboardService(cfg *config.Config, upstream Upstream) *DashboardService {
	clientConfig := cfg.ClientConfig
	if clientConfig == nil {
		clientConfig = map[string]interface{}{}
	}
	return &DashboardService{
		upstream:     upstream,
		clientConfig: clientConfig,
	}
}

// ClientConfig はフロントエンド向けの設定を返します
func (s *DashboardService) ClientConfig() map[string]interface{} {
	return s.clientConfig
}

// Boards はボード一覧を返します
func (s *DashboardService) Boards(ctx context.Context) ([]models.Board, error) {
	defer utils.TrackTime(time.Now(), "ボード一覧取得")
	utils.FromContext(ctx).Info("Accessing boards API")

	boards, err := s.upstream.FetchBoards(ctx)
	if err != nil {
		return nil, fmt.Errorf("ボード一覧取得エラー: %w", err)
	}
	return boards, nil
}

// Sprints はボードのスプリント一覧を返します
func (s *DashboardService) Sprints(ctx context.Context, boardID int) ([]models.Sprint, error) {
	defer utils.TrackTime(time.Now(), "スプリント一覧取得")
	utils.FromContext(ctx).WithField("board_id", boardID).Info("Accessing sprints API")

	sprints, err := s.upstream.FetchSprintsFromBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("ボード %d のスプリント一覧取得エラー: %w", boardID, err)
	}
	return sprints, nil
}

// Sprint はスプリントの詳細を返します
func (s *DashboardService) Sprint(ctx context.Context, boardID, sprintID int) (*models.SprintDetail, error) {
	defer utils.TrackTime(time.Now(), "スプリント詳細取得")
	utils.FromContext(ctx).WithFields(utils.Fields{
		"board_id":  boardID,
		"sprint_id": sprintID,
	}).Info("Accessing sprint API")

	detail, err := s.upstream.FetchSprint(ctx, boardID, sprintID)
	if err != nil {
		return nil, fmt.Errorf("スプリント %d (ボード %d) 取得エラー: %w", sprintID, boardID, err)
	}
	return detail, nil
}
