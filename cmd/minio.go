package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"musichub/config"
	"musichub/storage"

	"github.com/spf13/cobra"
)

var minioPrefix string

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "MinIO存储桶统计",
	Long:  `连接MinIO存储桶并显示媒体文件的数量和总大小，用于检查CDN存储状态。`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("开始连接MinIO服务器...")

		// 加载配置
		cfg := config.Load()
		fmt.Printf("MinIO配置: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		// 初始化MinIO客户端
		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("无法连接到MinIO: %v", err)
		}
		fmt.Println("MinIO连接成功！")

		media := storage.NewMediaStore(cfg)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		prefixes := []string{"audio/", "covers/"}
		if minioPrefix != "" {
			prefixes = []string{minioPrefix}
		}

		for _, prefix := range prefixes {
			count, size, err := media.Stats(ctx, prefix)
			if err != nil {
				log.Fatalf("获取存储统计信息失败 (%s): %v", prefix, err)
			}
			fmt.Printf("%s: %d 个文件, 共 %.2f MB\n", prefix, count, float64(size)/(1024*1024))
		}

		fmt.Println("MinIO操作完成！")
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)

	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "只统计指定前缀下的文件")
}
