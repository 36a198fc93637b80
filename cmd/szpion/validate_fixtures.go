package main

import (
	"github.com/spf13/cobra"

	"szpion/api"
	"szpion/utils"
)

var validateFixturesCmd = &cobra.Command{
	Use:   "validate-fixtures",
	Short: "同梱のフィクスチャを検証する",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := api.NewFixtureSource(nil).Validate(cmd.Context()); err != nil {
			return err
		}
		utils.LogInfo("フィクスチャは正常です。")
		return nil
	},
}
