/*
Copyright © 2025 hyunwoojo
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/hyunwoojo/etf-rag-agent/config"
	"github.com/hyunwoojo/etf-rag-agent/database"
	"github.com/hyunwoojo/etf-rag-agent/logger"
	"github.com/spf13/cobra"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate the document class in Weaviate",
	Long: `Deletes every stored ETF document by dropping the Weaviate class and
recreating it empty. This cannot be undone; pass --yes to confirm.`,
	Run: func(cmd *cobra.Command, args []string) {
		confirmed, _ := cmd.Flags().GetBool("yes")
		if !confirmed {
			fmt.Println("reset deletes all stored documents, re-run with --yes to confirm")
			return
		}

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		logger.Init(cfg.LogLevel)

		ctx := context.Background()
		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}
		if err := weaviateDb.Reset(ctx); err != nil {
			log.Fatalf("Failed to reset document class: %v", err)
		}
		fmt.Printf("Class %s reset\n", cfg.WeaviateStoreConfig.ClassName)
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().Bool("yes", false, "Confirm deleting all stored documents")
}
