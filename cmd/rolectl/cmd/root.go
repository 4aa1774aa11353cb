package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/veylabs/rolegate/mongodb"
)

var db *mongo.Database

var rootCmd = &cobra.Command{
	Use:   "rolectl",
	Short: "rolectl inspects the rolegate identity links and gift timers",
	Long: `A command-line interface for operators of the rolegate bot.
It connects directly to the bot's MongoDB database and reads the identity
link and gift timer collections.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		v.AutomaticEnv()
		v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
		v.SetDefault("MONGO_DB_NAME", "rolegate")

		uri, _ := cmd.Flags().GetString("mongo-uri")
		if uri == "" {
			uri = v.GetString("MONGO_URI")
		}
		dbName, _ := cmd.Flags().GetString("db")
		if dbName == "" {
			dbName = v.GetString("MONGO_DB_NAME")
		}

		if err := mongodb.Init(cmd.Context(), uri, dbName); err != nil {
			return fmt.Errorf("connecting to mongodb: %w", err)
		}
		db = mongodb.GetDB()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		mongodb.Close(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().String("mongo-uri", "", "MongoDB connection URI (defaults to MONGO_URI)")
	rootCmd.PersistentFlags().String("db", "", "database name (defaults to MONGO_DB_NAME)")
	rootCmd.AddCommand(linksCmd)
	rootCmd.AddCommand(timersCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
