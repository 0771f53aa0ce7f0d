package cmd

import (
	"errors"
	"fmt"

	"jdlmedia/core/auth"
	"jdlmedia/core/ident"
	"jdlmedia/db"
	"jdlmedia/model"
	"jdlmedia/repository"

	"github.com/spf13/cobra"
)

var (
	userLogin    string
	userEmail    string
	userPassword string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "用户管理",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "创建用户并创建其存储根目录",
	RunE: func(cmd *cobra.Command, args []string) error {
		if userLogin == "" || userEmail == "" || userPassword == "" {
			return errors.New("--login, --email and --password are required")
		}

		if err := db.ConnectGormDB(cfg); err != nil {
			return err
		}
		defer db.CloseGormDB()

		hash, err := auth.HashPassword(userPassword)
		if err != nil {
			return err
		}
		user := &model.User{
			ID:           ident.New(),
			Login:        userLogin,
			Email:        userEmail,
			PasswordHash: hash,
		}
		if err := repository.NewGormUserRepository(db.GormDB).Create(cmd.Context(), user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("login or email already in use")
			}
			return err
		}

		dir, err := ownerRoot(user.ID)
		if err != nil {
			return err
		}
		fmt.Printf("用户已创建: %s (%s)\n存储目录: %s\n", user.ID, user.Login, dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)

	userCreateCmd.Flags().StringVar(&userLogin, "login", "", "用户名")
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "邮箱")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "密码")
}
