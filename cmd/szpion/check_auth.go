package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"szpion/api"
	"szpion/utils"
)

var checkAuthCmd = &cobra.Command{
	Use:   "check-auth",
	Short: "JIRA APIの認証情報を確認する",
	Long: `JIRA APIの認証情報が正しく設定されているかを確認します。
認証が成功すれば、serve も正常にJIRAへアクセスできる可能性が高いです。

環境変数:
  JIRA_URL            JIRA URL (必須)
  JIRA_AUTH_TOKEN     JIRA 認証トークン (必須)
  JIRA_AUTH_SCHEME    Authorization ヘッダーのスキーム (デフォルト: Basic)`,
	RunE: runCheckAuth,
}

func runCheckAuth(cmd *cobra.Command, _ []string) error {
	utils.LogInfo("JIRA認証確認ツール")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.MockJira = false
	if err := cfg.Validate(); err != nil {
		return err
	}

	client := api.NewClient(cfg.UpstreamURL, cfg.UpstreamCredential, false,
		api.WithAuthScheme(cfg.UpstreamAuthScheme))

	utils.LogInfo("JIRA APIの認証を確認しています...")
	if err := client.CheckAuth(cmd.Context()); err != nil {
		utils.LogError("認証情報を確認してください。")
		return fmt.Errorf("JIRA認証エラー: %w", err)
	}

	utils.LogInfo("JIRA認証成功！ 接続先: %s", cfg.UpstreamURL)
	utils.LogInfo("JIRA APIの認証情報は正常です。")
	return nil
}
