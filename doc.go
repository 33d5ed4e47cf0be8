// Package skybrief is the Go SDK and run driver for the SkyBrief agent
// platform.
//
// # Quick Start
//
// Create a client, start a run, and let the driver service tool calls:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//		"os"
//
//		skybrief "github.com/skybrief/skybrief-golang"
//	)
//
//	func main() {
//		client, err := skybrief.NewClient(
//			os.Getenv("SKYBRIEF_API_KEY"),
//			os.Getenv("SKYBRIEF_PROJECT_ENDPOINT"),
//			0, // timeout (0 = default 60s)
//			0, // retries (0 = default 3)
//		)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer client.Close()
//
//		thread, err := client.Agents.Threads.Create()
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		_, err = client.Agents.Messages.Create(thread.ID, "user", "What's the weather in Seattle?")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		run, err := client.Agents.Runs.Create(thread.ID, os.Getenv("SKYBRIEF_AGENT_ID"))
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		driver := skybrief.NewRunDriver(client, skybrief.NewDefaultRegistry())
//		outcome := driver.DriveWithContext(context.Background(), thread.ID, run.ID)
//		switch outcome.Kind {
//		case skybrief.OutcomeCompleted:
//			fmt.Println(outcome.Text)
//		case skybrief.OutcomeFailed:
//			log.Fatalf("run failed: %s", outcome.Reason)
//		case skybrief.OutcomeTimedOut:
//			log.Fatalf("run timed out in status %s", outcome.LastStatus)
//		}
//	}
//
// # Core Features
//
//   - Agent management (create, retrieve, list, update, delete)
//   - Thread, message, and run operations
//   - Run driver with automatic tool-call servicing
//   - Local function registry plus HTTP function forwarding
//   - Search index management and document ingestion
//   - JSON response validation suite for agent evaluation
//   - Context-aware operations for cancellation support
//   - Automatic retry logic with exponential backoff
//   - Request/response hooks for monitoring
//
// # Environment Variables
//
//   - SKYBRIEF_API_KEY: Your SkyBrief API key
//   - SKYBRIEF_PROJECT_ENDPOINT: The project endpoint URL
//   - SKYBRIEF_TIMEOUT_SECONDS: Optional request timeout (defaults to 60s)
//   - SKYBRIEF_MAX_RETRIES: Optional max retries (defaults to 3)
//   - SKYBRIEF_POLL_INTERVAL: Optional run poll interval (defaults to 2s)
//   - SKYBRIEF_POLL_TIMEOUT: Optional run wall-clock budget (defaults to 2m)
package skybrief
