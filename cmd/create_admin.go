package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/reservation-app/database"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account unless the email is already registered",
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminPassword == "" {
			adminPassword = os.Getenv("ADMIN_PASSWORD")
		}
		if adminEmail == "" || adminPassword == "" {
			return errors.New("--email and --password (or ADMIN_PASSWORD) are required")
		}
		if len(adminPassword) < 8 {
			return errors.New("password must be at least 8 characters")
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		user, created, err := database.EnsureAdmin(db, adminName, adminEmail, adminPassword)
		if err != nil {
			return err
		}
		if !created {
			fmt.Fprintf(cmd.OutOrStdout(), "user %s already exists (role=%s)\n", user.Email, user.Role)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (id=%d)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "Display name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Login email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Login password (defaults to $ADMIN_PASSWORD)")
	rootCmd.AddCommand(createAdminCmd)
}
