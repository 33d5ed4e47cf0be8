// Command test-agent runs the JSON validation suite against a deployed
// agent. Results are written to json_validation_results.json and, when
// GITHUB_STEP_SUMMARY is set, a markdown report is appended there. The
// process exits non-zero when any case fails.
package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	skybrief "github.com/skybrief/skybrief-golang"
)

const resultsPath = "json_validation_results.json"

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	agentID := os.Getenv("SKYBRIEF_AGENT_ID")
	if agentID == "" {
		agentID = os.Getenv("AGENT_ID")
	}
	if agentID == "" {
		log.Error("SKYBRIEF_AGENT_ID or AGENT_ID environment variable is required")
		os.Exit(1)
	}
	agentName := os.Getenv("AGENT_NAME")
	if agentName == "" {
		agentName = "Weather Agent"
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

	cases := skybrief.DefaultTestCases()
	if path := os.Getenv("TEST_CASES_FILE"); path != "" {
		cases, err = skybrief.LoadTestCases(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Error("load test cases")
			os.Exit(1)
		}
	}

	// Function calls run locally by default. When FUNCTION_APP_URL is
	// set they are forwarded to the remote function host instead.
	registry := skybrief.NewDefaultRegistry()
	if baseURL := os.Getenv("FUNCTION_APP_URL"); baseURL != "" {
		log.WithField("url", baseURL).Info("forwarding function calls")
		registry = skybrief.NewFunctionRegistry()
		skybrief.NewHTTPFunctions(baseURL).Register(registry, "get_weather", "get_news_articles")
	}

	suite := &skybrief.EvalSuite{
		Client:   client,
		AgentID:  agentID,
		Registry: registry,
		Logger:   log,
	}

	results := suite.Run(context.Background(), cases)
	summary := skybrief.Summarize(results)

	log.WithFields(logrus.Fields{
		"total":      summary.Total,
		"passed":     summary.Passed,
		"valid_json": summary.ValidJSON,
		"pure_json":  summary.PureJSON,
	}).Infof("%d/%d passed", summary.Passed, summary.Total)

	if err := skybrief.SaveResults(resultsPath, results); err != nil {
		log.WithError(err).Error("save results")
		os.Exit(1)
	}

	if summaryPath := os.Getenv("GITHUB_STEP_SUMMARY"); summaryPath != "" {
		f, err := os.OpenFile(summaryPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			log.WithError(err).Error("open step summary")
			os.Exit(1)
		}
		if err := skybrief.WriteMarkdownSummary(f, agentID, agentName, results); err != nil {
			f.Close()
			log.WithError(err).Error("write step summary")
			os.Exit(1)
		}
		f.Close()
	}

	if !summary.AllPassed() {
		os.Exit(1)
	}
}
