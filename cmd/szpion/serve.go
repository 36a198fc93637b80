package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"szpion/api"
	"szpion/server"
	"szpion/services"
	"szpion/utils"
)

var (
	servePort     int
	serveDevMode  bool
	serveMockJira bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "ダッシュボードサーバーを起動する",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "待ち受けポート（0の場合は設定ファイルの値を使用）")
	serveCmd.Flags().BoolVar(&serveDevMode, "dev", false, "開発モード（フロントエンドの開発サーバーへプロキシする）")
	serveCmd.Flags().BoolVar(&serveMockJira, "mock-jira", false, "JIRAにアクセスせずフィクスチャを返す")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// コマンドラインで指定された場合、設定を上書き
	if servePort > 0 {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("dev") {
		cfg.DevMode = serveDevMode
	}
	if cmd.Flags().Changed("mock-jira") {
		cfg.MockJira = serveMockJira
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	utils.LogInfo("Szpion server starts on port %d ... ", cfg.Port)
	utils.LogInfo("Development mode : %t", cfg.DevMode)

	client := api.NewClient(cfg.UpstreamURL, cfg.UpstreamCredential, cfg.MockJira,
		api.WithAuthScheme(cfg.UpstreamAuthScheme))
	if cfg.MockJira {
		utils.LogInfo("Using test files as mock JIRA")
		if err := api.NewFixtureSource(nil).Validate(ctx); err != nil {
			return fmt.Errorf("フィクスチャが不正です: %w", err)
		}
	} else {
		utils.WithFields(utils.Fields{
			"credential": api.MaskCredential(cfg.UpstreamCredential),
			"scheme":     cfg.UpstreamAuthScheme,
		}).Infof("Using JIRA : %s", cfg.UpstreamURL)
	}
	if cfg.DevMode {
		utils.LogInfo("Proxying front-end requests to %s", cfg.DevServerURL)
	}

	dashboard := services.NewDashboardService(cfg, client)
	srv, err := server.New(cfg, dashboard)
	if err != nil {
		return fmt.Errorf("サーバーの作成に失敗しました: %w", err)
	}

	return srv.Run(ctx)
}
