/*
Copyright © 2025 hyunwoojo
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/hyunwoojo/etf-rag-agent/config"
	"github.com/hyunwoojo/etf-rag-agent/database"
	"github.com/hyunwoojo/etf-rag-agent/logger"
	"github.com/hyunwoojo/etf-rag-agent/service"
	"github.com/spf13/cobra"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about ETFs from the command line",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		logger.Init(cfg.LogLevel)

		etfType, _ := cmd.Flags().GetString("etf-type")
		topK, _ := cmd.Flags().GetInt("top-k")
		provider, _ := cmd.Flags().GetString("provider")

		ctx := context.Background()

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}
		aiService, err := service.NewAIService(ctx, cfg, provider)
		if err != nil {
			log.Fatalf("Failed to create AI service: %v", err)
		}
		queryService := service.NewQueryService(weaviateDb, aiService, cfg.RAGConfig)

		filters := map[string]string{}
		if etfType != "" {
			filters["etf_type"] = etfType
		}

		question := strings.Join(args, " ")
		response, err := queryService.Answer(ctx, question, topK, filters, -1)
		if err != nil {
			log.Fatalf("Failed to answer: %v", err)
		}

		fmt.Printf("질문: %s\n\n", question)
		fmt.Printf("답변:\n%s\n", response.Answer)
		if response.NumSources > 0 {
			fmt.Printf("\n참고 문서 (%d개):\n", response.NumSources)
			for _, source := range response.Sources {
				fmt.Printf("  [%d] %s (%s, 관련도: %.2f)\n",
					source.Rank, source.EtfName, source.EtfCode, source.Relevance)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().String("etf-type", "", "Filter by ETF type: domestic, foreign or disclosure")
	askCmd.Flags().Int("top-k", 0, "Number of documents to retrieve (0 = config default)")
	askCmd.Flags().String("provider", "", "LLM provider override: openai, local or gemini")
}
