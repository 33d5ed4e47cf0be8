package skybrief

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidateJSONResponse(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		valid     bool
		pure      bool
		dataType  string
		hasFields bool
	}{
		{
			name:      "Weather",
			response:  `{"location":"Seattle","temperature":18,"condition":"Cloudy"}`,
			valid:     true,
			pure:      true,
			dataType:  "weather",
			hasFields: true,
		},
		{
			name:      "News",
			response:  `{"topic":"Technology","articles":[]}`,
			valid:     true,
			pure:      true,
			dataType:  "news",
			hasFields: true,
		},
		{
			name:      "UnknownObject",
			response:  `{"answer":42}`,
			valid:     true,
			pure:      true,
			dataType:  "unknown",
			hasFields: false,
		},
		{
			name:     "MarkdownWrapped",
			response: "```json\n{\"location\":\"x\"}\n```",
			valid:    false,
			pure:     false,
		},
		{
			name:     "PlainText",
			response: "I can only help with weather and news queries.",
			valid:    false,
			pure:     false,
		},
		{
			name:      "WhitespacePadded",
			response:  "  {\"topic\":\"Sports\",\"articles\":[]}  ",
			valid:     true,
			pure:      true,
			dataType:  "news",
			hasFields: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValidateJSONResponse(tt.response)
			if v.IsValidJSON != tt.valid {
				t.Fatalf("valid: expected %v, got %v", tt.valid, v.IsValidJSON)
			}
			if v.IsPureJSON != tt.pure {
				t.Fatalf("pure: expected %v, got %v", tt.pure, v.IsPureJSON)
			}
			if tt.dataType != "" && v.DataType != tt.dataType {
				t.Fatalf("data type: expected %q, got %q", tt.dataType, v.DataType)
			}
			if v.HasRequiredFields != tt.hasFields {
				t.Fatalf("fields: expected %v, got %v", tt.hasFields, v.HasRequiredFields)
			}
		})
	}
}

func TestCasePassedRules(t *testing.T) {
	weather := ValidateJSONResponse(`{"location":"x","temperature":1,"condition":"y"}`)
	news := ValidateJSONResponse(`{"topic":"x","articles":[]}`)
	rejection := "I cannot help with that."

	if !casePassed("weather", "", weather) {
		t.Fatalf("weather case should pass")
	}
	if casePassed("weather", "", news) {
		t.Fatalf("news payload should fail a weather expectation")
	}
	if !casePassed("news", "", news) {
		t.Fatalf("news case should pass")
	}
	if !casePassed("rejection", rejection, ValidateJSONResponse(rejection)) {
		t.Fatalf("rejection wording should pass")
	}
	if casePassed("rejection", `{"location":"x"}`, ValidateJSONResponse(`{"location":"x"}`)) {
		t.Fatalf("valid json without rejection wording should fail")
	}
	if !casePassed("any", "", weather) {
		t.Fatalf("any should accept valid json")
	}
}

func TestLoadTestCasesYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "cases.yaml")
	yamlBody := "- query: \"What's the weather in Seattle?\"\n  expected_type: weather\n  description: basic\n- query: Get me technology news\n  expected_type: news\n"
	if err := os.WriteFile(yamlPath, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cases, err := LoadTestCases(yamlPath)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if len(cases) != 2 || cases[0].ExpectedType != "weather" || cases[1].Query != "Get me technology news" {
		t.Fatalf("unexpected cases %+v", cases)
	}

	jsonPath := filepath.Join(dir, "cases.json")
	jsonBody := `[{"query":"What is 2 + 2?","expected_type":"rejection"}]`
	if err := os.WriteFile(jsonPath, []byte(jsonBody), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}

	cases, err = LoadTestCases(jsonPath)
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	if len(cases) != 1 || cases[0].ExpectedType != "rejection" {
		t.Fatalf("unexpected cases %+v", cases)
	}
}

func TestLoadTestCasesRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("[]"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadTestCases(empty); err == nil {
		t.Fatalf("expected error for empty file")
	}

	noQuery := filepath.Join(dir, "noquery.yaml")
	if err := os.WriteFile(noQuery, []byte("- expected_type: weather\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadTestCases(noQuery); err == nil {
		t.Fatalf("expected error for case without query")
	}
}

// suiteServer simulates the full thread/message/run flow for an agent that
// answers weather queries with weather JSON and everything else with a
// rejection sentence.
func suiteHandler(t *testing.T) http.Handler {
	var lastQuery string
	requiresActionSeen := map[string]bool{}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		path := r.URL.Path

		switch {
		case r.Method == http.MethodPost && path == "/v1/threads/":
			_, _ = w.Write([]byte(`{"id":"t1","created_at":1}`))

		case r.Method == http.MethodPost && strings.HasSuffix(path, "/messages/"):
			var payload map[string]any
			_ = json.NewDecoder(r.Body).Decode(&payload)
			lastQuery, _ = payload["content"].(string)
			_, _ = w.Write([]byte(`{"id":"m1","thread_id":"t1","role":"user","content":[]}`))

		case r.Method == http.MethodPost && strings.HasSuffix(path, "/runs/"):
			requiresActionSeen["r1"] = false
			_, _ = w.Write([]byte(`{"id":"r1","thread_id":"t1","agent_id":"a1","status":"queued"}`))

		case r.Method == http.MethodPost && strings.HasSuffix(path, "/submit_tool_outputs/"):
			_, _ = w.Write([]byte(`{"id":"r1","thread_id":"t1","agent_id":"a1","status":"completed"}`))

		case r.Method == http.MethodGet && strings.Contains(path, "/runs/"):
			if strings.Contains(strings.ToLower(lastQuery), "weather") && !requiresActionSeen["r1"] {
				requiresActionSeen["r1"] = true
				_, _ = w.Write([]byte(`{"id":"r1","thread_id":"t1","agent_id":"a1","status":"requires_action","required_action":{"type":"submit_tool_outputs","submit_tool_outputs":{"tool_calls":[{"id":"c1","type":"function","function":{"name":"get_weather","arguments":"{\"location\":\"Seattle\"}"}}]}}}`))
				return
			}
			_, _ = w.Write([]byte(`{"id":"r1","thread_id":"t1","agent_id":"a1","status":"completed"}`))

		case r.Method == http.MethodGet && strings.HasSuffix(path, "/messages/"):
			var text string
			if strings.Contains(strings.ToLower(lastQuery), "weather") {
				text = `{\"location\":\"Seattle\",\"temperature\":18,\"condition\":\"Cloudy\"}`
			} else {
				text = `I cannot help with that. I can only help with weather and news queries.`
			}
			body := fmt.Sprintf(`{"data":[{"id":"m2","thread_id":"t1","role":"assistant","content":[{"type":"text","text":{"value":"%s"}}]}]}`, text)
			_, _ = w.Write([]byte(body))

		default:
			t.Fatalf("unexpected request %s %s", r.Method, path)
		}
	})
}

func TestEvalSuiteRunAndSummarize(t *testing.T) {
	server := newTestServer(t, suiteHandler(t))
	defer server.Close()

	client, err := NewClientWithConfig(Config{
		APIKey:          "k",
		ProjectEndpoint: server.URL,
		Timeout:         2 * time.Second,
		PollInterval:    time.Millisecond,
		PollTimeout:     2 * time.Second,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	suite := &EvalSuite{
		Client:   client,
		AgentID:  "a1",
		Registry: NewDefaultRegistry(),
	}

	cases := []TestCase{
		{Query: "What's the weather in Seattle?", ExpectedType: "weather"},
		{Query: "What is 2 + 2?", ExpectedType: "rejection"},
	}
	results := suite.Run(context.Background(), cases)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Passed {
		t.Fatalf("weather case should pass: %+v", results[0])
	}
	if got := results[0].FunctionCalls; len(got) != 1 || got[0] != "get_weather" {
		t.Fatalf("expected get_weather recorded, got %v", got)
	}
	if !results[1].Passed {
		t.Fatalf("rejection case should pass: %+v", results[1])
	}
	if results[0].TestNumber != 1 || results[1].TestNumber != 2 {
		t.Fatalf("test numbers not assigned: %+v", results)
	}

	summary := Summarize(results)
	if summary.Total != 2 || summary.Passed != 2 || !summary.AllPassed() {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Categories["weather"].Passed != 1 || summary.Categories["rejection"].Total != 1 {
		t.Fatalf("unexpected category tallies %+v", summary.Categories)
	}
}

func TestSaveResultsWritesJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")

	results := []CaseResult{{TestNumber: 1, Query: "q", ExpectedType: "any", Passed: true, Success: true}}
	if err := SaveResults(path, results); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var decoded []CaseResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Query != "q" {
		t.Fatalf("unexpected round trip %+v", decoded)
	}
}

func TestWriteMarkdownSummary(t *testing.T) {
	results := []CaseResult{
		{TestNumber: 1, Query: "weather?", ExpectedType: "weather", Passed: true, Success: true, Validation: Validation{IsValidJSON: true, IsPureJSON: true}, FunctionCalls: []string{"get_weather"}},
		{TestNumber: 2, Query: "joke?", ExpectedType: "rejection", Passed: false, Success: false, Error: "timeout, last status in_progress"},
	}

	var sb strings.Builder
	if err := WriteMarkdownSummary(&sb, "a1", "Weather Agent", results); err != nil {
		t.Fatalf("write summary: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"JSON Response Validation Results",
		"Weather Agent",
		"| Total tests | 2 |",
		"[PASS] Test 1",
		"[FAIL] Test 2",
		"called get_weather",
		"error: timeout",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}
