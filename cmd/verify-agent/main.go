// verify-agent sends sample questions through the live intent router and
// prints the route each one resolves to. It needs OPENAI_API_KEY.
//
// Usage: go run ./cmd/verify-agent ["question" ...]
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"hr-assistant/internal/ai"
	"hr-assistant/internal/config"
	"hr-assistant/internal/core"
)

type sample struct {
	role  core.Role
	query string
}

var samples = []sample{
	{core.RoleEmployee, "How many sick days do I have left?"},
	{core.RoleEmployee, "Has my bank letter been approved?"},
	{core.RoleHR, "What is Salma Ali's salary?"},
	{core.RoleHR, "How many new applicants do we have?"},
	{core.RoleNew, "What's the weather like?"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.OpenAI.APIKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}

	client := ai.NewClient(cfg.OpenAI)
	classifier, err := ai.NewOpenAIClassifier(client, cfg.OpenAI.RouterModel)
	if err != nil {
		log.Fatalf("classifier: %v", err)
	}
	router := ai.NewRouter(classifier, cfg.OpenAI.RouterTimeout(), zap.NewNop())
	ctx := context.Background()

	queries := samples
	if len(os.Args) > 1 {
		queries = nil
		for _, q := range os.Args[1:] {
			queries = append(queries, sample{core.RoleHR, q})
		}
	}

	for _, s := range queries {
		fmt.Printf("\n[%s] %s\n", s.role, s.query)
		route, err := router.Route(ctx, s.query, s.role, core.MenuFor(s.role))
		if err != nil {
			fmt.Printf("  error: %v\n", err)
			continue
		}
		switch r := route.(type) {
		case core.SelectedRoute:
			fmt.Printf("  action: %s\n", r.Action)
			for k, v := range r.Params {
				fmt.Printf("  %s = %q\n", k, v)
			}
		case core.UnrecognizedRoute:
			fmt.Printf("  unrecognized: %s\n", r.Reason)
		}
	}
}
