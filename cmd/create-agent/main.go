// Command create-agent provisions the weather and news agent and prints
// its ID. It is intended for CI pipelines: when GITHUB_OUTPUT is set the
// agent ID and name are appended there as step outputs.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	skybrief "github.com/skybrief/skybrief-golang"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	model := os.Getenv("MODEL_DEPLOYMENT_NAME")
	if model == "" {
		log.Error("MODEL_DEPLOYMENT_NAME environment variable is required")
		os.Exit(1)
	}

	name := os.Getenv("AGENT_NAME")
	if name == "" {
		name = "test-agent"
	}
	instructions := os.Getenv("AGENT_INSTRUCTIONS")
	if instructions == "" {
		instructions = "You are a helpful AI assistant."
	}
	description := os.Getenv("AGENT_DESCRIPTION")
	if description == "" {
		description = fmt.Sprintf("Weather and news agent using %s", model)
	}

	client, err := skybrief.NewClient(
		os.Getenv("SKYBRIEF_API_KEY"),
		os.Getenv("SKYBRIEF_PROJECT_ENDPOINT"),
		0,
		0,
	)
	if err != nil {
		log.WithError(err).Error("create client")
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	agent, err := client.Agents.CreateWithContext(ctx, skybrief.CreateAgentParams{
		Model:        model,
		Name:         name,
		Instructions: instructions + "\n\n" + skybrief.DefaultAgentInstructions,
		Description:  description,
		Tools:        skybrief.DefaultToolDefinitions(),
	})
	if err != nil {
		log.WithError(err).Error("create agent")
		os.Exit(1)
	}

	log.WithFields(logrus.Fields{
		"agent_id":   agent.ID,
		"agent_name": agent.Name,
		"model":      model,
		"tools":      len(agent.Tools),
	}).Info("agent created")

	fmt.Printf("agent_id=%s\n", agent.ID)

	if outputPath := os.Getenv("GITHUB_OUTPUT"); outputPath != "" {
		if err := appendStepOutputs(outputPath, map[string]string{
			"agent_id":   agent.ID,
			"agent_name": agent.Name,
		}); err != nil {
			log.WithError(err).Error("write step outputs")
			os.Exit(1)
		}
	}
}

func appendStepOutputs(path string, outputs map[string]string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	for key, value := range outputs {
		if _, err := fmt.Fprintf(f, "%s=%s\n", key, value); err != nil {
			return err
		}
	}
	return nil
}
