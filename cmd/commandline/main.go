package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ethanbaker/smartmarket/pkg/config"
	"github.com/ethanbaker/smartmarket/pkg/sdk"
)

func main() {
	// Load global config
	cfg, err := config.Load(config.EnvFile())
	if err != nil {
		log.Fatalf("[COMMANDLINE]: Failed to load config: %v", err)
	}

	client := sdk.NewClient(cfg.Client.URL, cfg.Client.Key)

	// Start interactive session
	ctx := context.Background()
	if err := startInteractiveSession(ctx, client); err != nil {
		log.Fatalf("Failed to start interactive session: %v", err)
	}
}

// startInteractiveSession reads questions from stdin and asks them. Writes
// are echoed back for a y/n confirmation before they run.
func startInteractiveSession(ctx context.Context, client *sdk.Client) error {
	fmt.Println("SmartMarket assistant started. Type 'exit' to quit.")

	// Create scanner for reading user input
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\n> ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())

		if input == "exit" {
			break
		}

		if input == "" {
			continue
		}

		res, err := client.Ask(ctx, &sdk.AskRequest{Question: input})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		if res.IsWrite && !res.Executed {
			fmt.Printf("Assistant: %s\nQuery: %s\nRun it? [y/N] ", res.Message, res.Query)
			if !scanner.Scan() || !isYes(scanner.Text()) {
				fmt.Println("Skipped.")
				continue
			}

			res, err = client.Confirm(ctx, res)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
		}

		printResult(res)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	return nil
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func printResult(res *sdk.AskResponse) {
	fmt.Printf("Assistant: %s\n", res.Message)

	if res.RowsAffected != nil {
		fmt.Printf("(%d row(s) affected)\n", *res.RowsAffected)
	}
	for _, row := range res.Results {
		b, err := json.Marshal(row)
		if err != nil {
			continue
		}
		fmt.Println("  " + string(b))
	}
}
