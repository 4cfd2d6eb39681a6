package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/hirepipe/hirepipe/pkg/ollama"
)

// Dev smoke client: sends a screening-style prompt straight through the
// pkg/ollama wrapper against a local Ollama instance.

const prompt = `You are a technical recruiter. Evaluate the resume below for a
backend engineer role and respond with a JSON object of the shape
{"score": <0..1>, "decision": "shortlist"|"reject", "reasons": "<text>"}.

Resume:
Five years of Go services, SQLite and Postgres, on-call experience.`

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:11434", "Ollama base URL")
		model   = flag.String("model", "deepseek-r1:1.5b", "model name")
	)
	flag.Parse()

	cfg := ollama.DefaultConfig()
	cfg.BaseURL = *baseURL
	cfg.Timeout = 60 * time.Second

	client, err := ollama.NewDefaultClient(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	ctx := context.Background()

	models, err := client.ListModels(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("models:", models)

	res, err := client.Generate(ctx, *model, prompt)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Text)
}
