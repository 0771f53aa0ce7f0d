package cmd

import (
	"jdlmedia/logger"
	"jdlmedia/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动媒体库服务",
	Long:  `启动命令通道服务：WebSocket (/ws)、HTTP 命令 (/api/commands/{event})、/healthz 与 /metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("starting media library server", logger.String("addr", cfg.ListenAddr))
		return server.Start(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
