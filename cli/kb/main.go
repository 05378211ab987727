package main

import (
	"os"

	"github.com/joho/godotenv"

	kbcmder "github.com/namihq/knowledgebase/cmd/kb"
)

func main() {
	// Optional .env for OPENAI_API_KEY, RAG_DIR, and friends.
	_ = godotenv.Load()

	cmd := kbcmder.NewKBCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
