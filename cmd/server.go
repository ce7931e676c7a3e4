package cmd

import (
	"musichub/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动MusicHub服务器",
	Long:  `启动MusicHub音乐系统的HTTP服务器，提供目录、账户和播放状态API`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
