package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"szpion/config"
	"szpion/utils"
)

// version はビルド時に -ldflags で設定されます
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "szpion",
	Short: "JIRAのボード/スプリントをダッシュボード向けに配信するサーバー",
	Long: `Szpion はJIRAのボードとスプリントを簡略化したREST APIとして配信し、
ダッシュボードのフロントエンドを提供します。

環境変数:
  JIRA_URL               JIRA URL (live モードで必須)
  JIRA_AUTH_TOKEN        JIRA 認証トークン (live モードで必須)
  JIRA_AUTH_SCHEME       Authorization ヘッダーのスキーム (デフォルト: Basic)
  SZPION_PORT            待ち受けポート (デフォルト: 8080)
  SZPION_DEV_MODE        開発モード (デフォルト: false)
  SZPION_MOCK_JIRA       JIRAの代わりにフィクスチャを使う (デフォルト: false)
  SZPION_STATIC_DIR      静的ファイルのディレクトリ (デフォルト: client)
  SZPION_DEV_SERVER_URL  開発モードのプロキシ先 (デフォルト: http://localhost:8081)
  SZPION_CONFIG          設定ファイル (デフォルト: szpion.yml)
  LOG_LEVEL / LOG_FORMAT / LOG_OUTPUT / LOG_MAX_AGE  ログ設定`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "設定ファイルのパス")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkAuthCmd)
	rootCmd.AddCommand(validateFixturesCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig は設定を読み込み、ログを設定します
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}
	if err := utils.Configure(cfg.LogLevel, cfg.LogFormat, cfg.LogOutput, cfg.LogMaxAge); err != nil {
		return nil, fmt.Errorf("ログの設定に失敗しました: %w", err)
	}
	return cfg, nil
}
