package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sahilchouksey/devcamper-api/config"
	"github.com/sahilchouksey/devcamper-api/database"
	"github.com/sahilchouksey/devcamper-api/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// flags
	importData  bool
	destroyData bool
	dataDir     string
)

func init() {
	RootCmd.Flags().BoolVarP(&importData, "import", "i", false, "import the JSON fixtures")
	RootCmd.Flags().BoolVarP(&destroyData, "destroy", "d", false, "delete every bootcamp, course, review and user")
	RootCmd.Flags().StringVar(&dataDir, "data", "_data", "directory holding bootcamps.json, courses.json, reviews.json and users.json")
}

var RootCmd = cobra.Command{
	Use:   "seed",
	Short: "Import or destroy the DevCamper fixtures",
	Long:  "Import the JSON fixtures from the data directory (-i) or delete all seeded data (-d)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if importData == destroyData {
			return errors.New("pass exactly one of -i or -d")
		}

		if err := config.LoadENV(); err != nil {
			return err
		}
		env, err := config.Get()
		if err != nil {
			return err
		}

		logger, err := utils.NewLogger(env.GO_ENV)
		if err != nil {
			return err
		}
		defer logger.Sync()

		store, err := database.StartGORM(env, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Init(); err != nil {
			return err
		}

		separator := strings.Repeat("=", 60)
		fmt.Println(separator)
		fmt.Println("DevCamper - Database Seeding")
		fmt.Println(separator)

		seeder := database.NewSeeder(store.GetDB(), logger)
		ctx := context.Background()
		if destroyData {
			if err := seeder.DestroyAll(ctx); err != nil {
				return err
			}
			logger.Info("data destroyed")
			return nil
		}

		if err := seeder.Import(ctx, dataDir); err != nil {
			return err
		}
		logger.Info("data imported", zap.String("dir", dataDir))
		return nil
	},
}

func main() {
	RootCmd.SilenceUsage = true
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
