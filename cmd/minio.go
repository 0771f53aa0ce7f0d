package cmd

import (
	"context"
	"fmt"
	"time"

	"jdlmedia/storage"

	"github.com/spf13/cobra"
)

var minioKey string

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "MinIO封面存储桶检查",
	Long:  `检查封面存储桶是否可用（不存在时创建），可选地为指定对象生成临时访问地址。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("MinIO配置: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		covers, err := storage.NewCoverStore(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		if err := covers.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("存储桶不可用: %w", err)
		}
		fmt.Printf("存储桶 %s 可用\n", covers.Bucket())

		if minioKey != "" {
			url, err := covers.CoverURL(ctx, minioKey)
			if err != nil {
				return err
			}
			fmt.Println(url)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)

	minioCmd.Flags().StringVarP(&minioKey, "key", "k", "", "为指定封面 key 生成预签名地址")
	minioCmd.Example = `  # 检查存储桶
  jdlmedia minio

  # 生成封面地址
  jdlmedia minio -k "covers/playlists/p1.jpg"`
}
