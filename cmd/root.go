// Package cmd holds the command line entry points of the reservation
// service.
package cmd

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/yeremiapane/reservation-app/config"
	"github.com/yeremiapane/reservation-app/database"
	"github.com/yeremiapane/reservation-app/utils"
	"gorm.io/gorm"
)

var (
	envFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "reservation-app",
	Short: "Restaurant reservations and table assignment service",
	Long: `reservation-app serves the reservations HTTP API: guests book, staff
manage tables and assign reservations to them for a two hour window.
Without a subcommand it starts the HTTP server.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path of the .env file to load (ignored if missing)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded

	utils.ConfigureLoggers(cfg.LogLevel, cfg.LogFormat)
	utils.InitJWT(cfg.JWTSecret, cfg.JWTTTL)
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	return nil
}

// openDB connects and migrates, so every subcommand sees the current schema.
func openDB() (*gorm.DB, error) {
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		closeDB(db)
		return nil, err
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		utils.ErrorLogger.Errorf("close database: %v", err)
	}
}
