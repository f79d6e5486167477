package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/reservation-app/repository"
	"github.com/yeremiapane/reservation-app/services"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Release table assignments whose two hour window has passed",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		dispatcher := services.NewDispatcher(db, nil, nil, nil)
		engine := services.NewAssignmentService(repository.NewGormStore(db), cfg.Location, dispatcher)
		n, err := engine.ReleaseExpired(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "released %d expired table assignment(s)\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
