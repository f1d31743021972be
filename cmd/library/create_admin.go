package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookhaven/library-app/internal/model"
	"github.com/bookhaven/library-app/internal/service"
)

func newCreateAdminCommand() *cobra.Command {
	var (
		email     string
		password  string
		firstName string
		lastName  string
	)
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a back-office administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, db, log, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			users := service.NewUsers(repo, log)
			admin, err := users.Register(ctx, model.RegisterRequest{
				Email:     email,
				Password:  password,
				FirstName: firstName,
				LastName:  lastName,
				Role:      model.RoleAdmin,
			})
			if err != nil {
				return err
			}
			fmt.Printf("admin #%d created (%s)\n", admin.ID, admin.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&firstName, "first-name", "Admin", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "User", "last name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
