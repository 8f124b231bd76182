/*
Copyright © 2025 hyunwoojo
*/
package main

import (
	"github.com/hyunwoojo/etf-rag-agent/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional, deployments may inject env vars directly
	godotenv.Load()
	cmd.Execute()
}
