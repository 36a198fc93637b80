package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"szpion/api"
	"szpion/config"
	"szpion/models"
)

type mockUpstream struct {
	mock.Mock
}

func (m *mockUpstream) FetchBoards(ctx context.Context) ([]models.Board, error) {
	args := m.Called(ctx)
	boards, _ := args.Get(0).([]models.Board)
	return boards, args.Error(1)
}

func (m *mockUpstream) FetchSprintsFromBoard(ctx context.Context, boardID int) ([]models.Sprint, error) {
	args := m.Called(ctx, boardID)
	sprints, _ := args.Get(0).([]models.Sprint)
	return sprints, args.Error(1)
}

func (m *mockUpstream) FetchSprint(ctx context.Context, boardID, sprintID int) (*models.SprintDetail, error) {
	args := m.Called(ctx, boardID, sprintID)
	detail, _ := args.Get(0).(*models.SprintDetail)
	return detail, args.Error(1)
}

func TestDashboardService_PassesDataThrough(t *testing.T) {
	ctx := context.Background()
	upstream := &mockUpstream{}
	boards := []models.Board{{ID: 1, Name: "Alpha"}}
	sprints := []models.Sprint{{ID: 2, BoardID: 1, Name: "S2", State: models.SprintActive}}
	detail := &models.SprintDetail{Sprint: sprints[0]}

	upstream.On("FetchBoards", ctx).Return(boards, nil)
	upstream.On("FetchSprintsFromBoard", ctx, 1).Return(sprints, nil)
	upstream.On("FetchSprint", ctx, 1, 2).Return(detail, nil)

	svc := NewDashboardService(&config.Config{}, upstream)

	gotBoards, err := svc.Boards(ctx)
	require.NoError(t, err)
	assert.Equal(t, boards, gotBoards)

	gotSprints, err := svc.Sprints(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, sprints, gotSprints)

	gotDetail, err := svc.Sprint(ctx, 1, 2)
	require.NoError(t, err)
	assert.Same(t, detail, gotDetail)

	upstream.AssertExpectations(t)
}

func TestDashboardService_KeepsErrorKind(t *testing.T) {
	ctx := context.Background()
	upstream := &mockUpstream{}
	upstream.On("FetchBoards", ctx).Return(nil, api.ErrUnavailable)
	upstream.On("FetchSprintsFromBoard", ctx, 7).Return(nil, api.ErrNotFound)
	upstream.On("FetchSprint", ctx, 7, 8).Return(nil, api.ErrProtocol)

	svc := NewDashboardService(&config.Config{}, upstream)

	_, err := svc.Boards(ctx)
	assert.True(t, api.IsUnavailable(err), "Boards: %v", err)

	_, err = svc.Sprints(ctx, 7)
	assert.True(t, errors.Is(err, api.ErrNotFound), "Sprints: %v", err)

	_, err = svc.Sprint(ctx, 7, 8)
	assert.Equal(t, api.KindUpstreamProtocol, api.KindOf(err))
}

func TestDashboardService_ClientConfig(t *testing.T) {
	svc := NewDashboardService(&config.Config{}, &mockUpstream{})
	assert.NotNil(t, svc.ClientConfig())
	assert.Empty(t, svc.ClientConfig())

	cfg := &config.Config{ClientConfig: map[string]interface{}{"title": "Team"}}
	svc = NewDashboardService(cfg, &mockUpstream{})
	assert.Equal(t, "Team", svc.ClientConfig()["title"])
}

// api.Client が Upstream を満たすこと
var _ Upstream = (*api.Client)(nil)
