package cmd

import (
	"fmt"
	"os"

	"jdlmedia/core/folder"

	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <ownerId> [folderId]",
	Short: "解析文件夹在磁盘上的目录",
	Long:  `按目录名在用户存储根目录下查找文件夹，不带 folderId 时输出用户根目录。`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, err := folder.NewResolver(cfg.StorageDir, cfg.PathCacheSize)
		if err != nil {
			return err
		}

		var folderID *string
		if len(args) == 2 {
			folderID = &args[1]
		}
		path, err := resolver.ResolvePath(args[0], folderID)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

// ownerRoot 创建用户存储根目录
func ownerRoot(ownerID string) (string, error) {
	if err := os.MkdirAll(cfg.StorageDir, 0o755); err != nil {
		return "", err
	}
	resolver, err := folder.NewResolver(cfg.StorageDir, cfg.PathCacheSize)
	if err != nil {
		return "", err
	}
	return resolver.EnsureOwnerRoot(ownerID)
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
