package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/d60-Lab/birdnest/config"
	"github.com/d60-Lab/birdnest/internal/ui"
	"github.com/d60-Lab/birdnest/pkg/logger"
)

var (
	cfgFile   string
	cfg       *config.Config
	cfgSource *config.Source
)

var rootCmd = &cobra.Command{
	Use:           "birdnest",
	Short:         "OTP 保护的极简博客",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, src, err := config.Open(cfgFile)
		if err != nil {
			return err
		}
		if err := logger.Init(c.Log.Level, c.Log.Format); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		cfg, cfgSource = c, src
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径，默认查找 ./config.yaml 和 ./config/config.yaml")
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Failure(err.Error()))
		return err
	}
	return nil
}
