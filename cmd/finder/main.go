// Package main 食譜搜尋命令列工具
package main

import (
	"fmt"
	"os"
	"strings"

	"recipe-finder/internal/core/cache"
	"recipe-finder/internal/core/client"
	"recipe-finder/internal/core/finder"
	"recipe-finder/internal/core/image"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version 建置時以 ldflags 設定
var version = "dev"

// cfg 在 PersistentPreRunE 載入
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "finder",
	Short: "Search recipes from the command line",
	Long: `finder searches the recipe API, then filters and sorts the results by tag
and cook time. Use "browse" for the interactive view.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if base, _ := cmd.Flags().GetString("api"); base != "" {
			loaded.Client.BaseURL = base
		}
		cfg = loaded

		// 互動模式寫入檔案，避免日誌干擾畫面
		logDir := ""
		if cmd.Name() == "browse" {
			logDir = cfg.LogDir
		}
		return common.InitLogger(cfg.LogLevel, logDir, "finder")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		common.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("api", "", "recipe API base URL (default from RECIPES_API_BASE_URL / RECIPES_API_URL)")
}

// newClient 依設定建立搜尋 API 客戶端
func newClient() *client.Client {
	c := client.NewClient(cfg.Client)
	common.LogDebug("Using recipe API", zap.String("base_url", c.BaseURL()))
	return c
}

// newController 建立連到搜尋 API 的控制器，withPreload 時一併預載圖片
func newController(withPreload bool) (*finder.Controller, *image.Preloader) {
	c := newClient()
	if !withPreload {
		return finder.NewController(c), nil
	}
	p := image.NewPreloader(cfg.Preload, cache.NewManager(cfg.Cache))
	return finder.NewController(c, finder.WithPreloader(p)), p
}

func queryArg(args []string) string {
	return strings.Join(args, " ")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
