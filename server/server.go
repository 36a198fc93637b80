package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"szpion/config"
	"szpion/models"
	"szpion/services"
	"szpion/utils"
)

// Dashboard はルーティング層が呼び出すサービスです
type Dashboard interface {
	ClientConfig() map[string]interface{}
	Boards(ctx context.Context) ([]models.Board, error)
	Sprints(ctx context.Context, boardID int) ([]models.Sprint, error)
	Sprint(ctx context.Context, boardID, sprintID int) (*models.SprintDetail, error)
}

// Server はダッシュボードAPIとフロントエンドを配信するHTTPサーバーです
type Server struct {
	cfg        *config.Config
	dashboard  Dashboard
	router     *gin.Engine
	httpServer *http.Server
}

// New は新しいサーバーを作成します。待ち受けは Run で開始します
func New(cfg *config.Config, dashboard Dashboard) (*Server, error) {
	s := &Server{cfg: cfg, dashboard: dashboard}

	router, err := s.buildRouter()
	if err != nil {
		return nil, err
	}
	s.router = router
	return s, nil
}

// Handler はルーティング済みの http.Handler を返します
func (s *Server) Handler() http.Handler { return s.router }

// Address はサーバーの待ち受けアドレスを返します
func (s *Server) Address() string { return s.cfg.Address() }

// Run はHTTPサーバーを起動し、ctx がキャンセルされるかサーバーが異常終了するまでブロックします
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		utils.LogInfo("Stopping Szpion server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) buildRouter() (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), errorTranslator())
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	router.GET("/config", s.handleConfig)
	router.GET("/boards", s.handleBoards)
	router.GET("/boards/:boardId/sprints", s.handleSprints)
	router.GET("/boards/:boardId/sprints/:sprintId", s.handleSprint)
	router.GET("/boards/:boardId/sprints/:sprintId/export", s.handleSprintExport)

	frontend, err := frontendHandler(s.cfg)
	if err != nil {
		return nil, err
	}
	router.NoRoute(frontend)

	return router, nil
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.dashboard.ClientConfig())
}

func (s *Server) handleBoards(c *gin.Context) {
	boards, err := s.dashboard.Boards(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, boards)
}

func (s *Server) handleSprints(c *gin.Context) {
	boardID, ok := idParam(c, "boardId")
	if !ok {
		return
	}

	sprints, err := s.dashboard.Sprints(c.Request.Context(), boardID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, sprints)
}

func (s *Server) handleSprint(c *gin.Context) {
	detail, ok := s.sprintDetail(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) handleSprintExport(c *gin.Context) {
	detail, ok := s.sprintDetail(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=sprint-%d-%d.csv", detail.BoardID, detail.ID))
	c.Status(http.StatusOK)
	if err := services.WriteSprintCSV(c.Writer, detail); err != nil {
		// ヘッダー送信後なのでステータスは変更できない
		utils.FromContext(c.Request.Context()).WithError(err).Error("CSV出力に失敗しました")
	}
}

func (s *Server) sprintDetail(c *gin.Context) (*models.SprintDetail, bool) {
	boardID, ok := idParam(c, "boardId")
	if !ok {
		return nil, false
	}
	sprintID, ok := idParam(c, "sprintId")
	if !ok {
		return nil, false
	}

	detail, err := s.dashboard.Sprint(c.Request.Context(), boardID, sprintID)
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	return detail, true
}

// idParam はパスパラメータを正の10進整数として取り出します。不正な場合は 400 を返します
func idParam(c *gin.Context, name string) (int, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("%s は正の整数である必要があります: %q", name, raw),
		})
		return 0, false
	}
	return int(id), true
}
