/*
Copyright © 2025 hyunwoojo
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/hyunwoojo/etf-rag-agent/collector"
	"github.com/hyunwoojo/etf-rag-agent/config"
	"github.com/hyunwoojo/etf-rag-agent/database"
	"github.com/hyunwoojo/etf-rag-agent/logger"
	"github.com/hyunwoojo/etf-rag-agent/service"
	"github.com/spf13/cobra"
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run a one-shot data collection",
	Long: `Collects ETF documents from the enabled sources, embeds them and
stores them in Weaviate, then prints a summary.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		logger.Init(cfg.LogLevel)

		domestic, _ := cmd.Flags().GetBool("domestic")
		foreign, _ := cmd.Flags().GetBool("foreign")
		dart, _ := cmd.Flags().GetBool("dart")
		domesticMax, _ := cmd.Flags().GetInt("domestic-max")
		tickers, _ := cmd.Flags().GetStringArray("tickers")

		ctx := context.Background()

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}
		aiService, err := service.NewAIService(ctx, cfg, "")
		if err != nil {
			log.Fatalf("Failed to create AI service: %v", err)
		}
		ingestService := service.NewIngestService(weaviateDb, cfg.VersioningConfig)
		coll := collector.NewCollector(cfg.CollectorConfig, cfg.DartAPIKey, ingestService, aiService)

		var total collector.CollectionResult
		if domestic {
			count, result, err := coll.CollectDomestic(ctx, domesticMax)
			if err != nil {
				log.Printf("Domestic collection failed: %v", err)
			}
			total.DomesticCount = count
			total.Inserted += result.Inserted
			total.Skipped += result.Skipped
			total.Failed += result.Failed
		}
		if foreign {
			count, result, err := coll.CollectForeign(ctx, tickers)
			if err != nil {
				log.Printf("Foreign collection failed: %v", err)
			}
			total.ForeignCount = count
			total.Inserted += result.Inserted
			total.Skipped += result.Skipped
			total.Failed += result.Failed
		}
		if dart {
			count, result, err := coll.CollectDart(ctx)
			if err != nil {
				log.Printf("Disclosure collection failed: %v", err)
			}
			total.DartCount = count
			total.Inserted += result.Inserted
			total.Skipped += result.Skipped
			total.Failed += result.Failed
		}

		fmt.Println("Collection Summary:")
		fmt.Printf("  Domestic ETFs: %d\n", total.DomesticCount)
		fmt.Printf("  Foreign ETFs: %d\n", total.ForeignCount)
		fmt.Printf("  DART Disclosures: %d\n", total.DartCount)
		fmt.Printf("  Inserted: %d, Skipped: %d, Failed: %d\n", total.Inserted, total.Skipped, total.Failed)
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().Bool("domestic", true, "Collect domestic ETFs from Naver Finance")
	collectCmd.Flags().Bool("foreign", true, "Collect foreign ETFs from Yahoo Finance")
	collectCmd.Flags().Bool("dart", true, "Collect DART disclosures")
	collectCmd.Flags().Int("domestic-max", 0, "Max domestic ETFs to collect (0 = all)")
	collectCmd.Flags().StringArray("tickers", nil, "Foreign tickers to collect (default from config)")
}
