package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/sector_radar/pkg/analyzer"
	"github.com/iWorld-y/sector_radar/pkg/collector"
	"github.com/iWorld-y/sector_radar/pkg/config"
	"github.com/iWorld-y/sector_radar/pkg/logger"
	"github.com/iWorld-y/sector_radar/pkg/report"
	"github.com/iWorld-y/sector_radar/pkg/search/factory"
	"github.com/iWorld-y/sector_radar/pkg/validator"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "sectorctl",
		Short:   "Sector Radar — trade opportunity analysis from the command line",
		Version: version,
	}

	root.AddCommand(newAnalyzeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newAnalyzeCmd 一次性生成指定行业的分析报告并输出到 stdout
func newAnalyzeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "analyze <sector>",
		Short: "Generate a markdown trade-opportunity report for a sector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sector, err := validator.Sanitize(args[0])
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			ctx := context.Background()

			searcher, err := factory.NewSearcher(&cfg.Search)
			if err != nil {
				// 搜索不可用时降级运行
				logger.Log.Warnf("搜索客户端不可用，降级运行: %v", err)
				searcher = nil
			}

			cm, err := analyzer.NewChatModel(ctx, &cfg.LLM)
			if err != nil {
				return fmt.Errorf("init chat model: %w", err)
			}

			rpm, qps := cfg.Concurrency.RPM, cfg.Concurrency.QPS
			if rpm <= 0 {
				rpm = 60
			}
			if qps <= 0 {
				qps = 1
			}
			limiter := rate.NewLimiter(rate.Limit(float64(rpm)/60.0), qps)

			col := collector.New(searcher)
			an := analyzer.New(cm, limiter)
			gen := report.NewGenerator()

			data := col.Collect(ctx, sector)
			result := an.Analyze(ctx, data)
			md := gen.Build(data, result, time.Now().UTC())

			fmt.Println(md)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "configs/sectorctl.yaml", "path to config file")
	return cmd
}
