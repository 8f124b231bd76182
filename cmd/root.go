/*
Copyright © 2025 hyunwoojo
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "etf-rag-agent",
	Short: "RAG-based ETF information agent",
	Long: `etf-rag-agent collects ETF documents from Naver Finance, Yahoo
Finance and the DART disclosure registry, stores them in Weaviate with
embeddings, and answers natural-language questions about ETFs with
retrieved documents as grounding context.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file")
}

// initConfig reads in ENV variables if set.
func initConfig() {
	viper.AutomaticEnv()
}
