package skybrief

import (
	"encoding/json"
	"strings"
	"time"
)

// RunStatus is the lifecycle state of a remote run. The remote service owns
// the state machine; the SDK only translates the wire strings into a fixed
// enum at the response boundary.
type RunStatus int

const (
	RunQueued RunStatus = iota
	RunInProgress
	RunRequiresAction
	RunCompleted
	RunFailed
	RunCancelled
	RunExpired
	RunUnknown
)

var runStatusNames = map[RunStatus]string{
	RunQueued:         "queued",
	RunInProgress:     "in_progress",
	RunRequiresAction: "requires_action",
	RunCompleted:      "completed",
	RunFailed:         "failed",
	RunCancelled:      "cancelled",
	RunExpired:        "expired",
}

func (s RunStatus) String() string {
	if name, ok := runStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsTerminal reports whether the run can no longer make progress.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunCompleted, RunFailed, RunCancelled, RunExpired:
		return true
	default:
		return false
	}
}

// InFlight reports whether the driver should keep polling this status.
func (s RunStatus) InFlight() bool {
	switch s {
	case RunQueued, RunInProgress, RunRequiresAction:
		return true
	default:
		return false
	}
}

// ParseRunStatus translates a wire status string. Unrecognized values map to
// RunUnknown rather than failing, so a new remote status never breaks decode.
func ParseRunStatus(raw string) RunStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "queued":
		return RunQueued
	case "in_progress":
		return RunInProgress
	case "requires_action":
		return RunRequiresAction
	case "completed":
		return RunCompleted
	case "failed":
		return RunFailed
	case "cancelled", "canceled":
		return RunCancelled
	case "expired":
		return RunExpired
	default:
		return RunUnknown
	}
}

func (s *RunStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseRunStatus(raw)
	return nil
}

func (s RunStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// RunError carries the remote-supplied diagnostic for a failed run.
type RunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ToolCall is a single callback request raised by a run while it is in the
// requires_action state. Arguments is the raw serialized payload; the driver
// decodes it and tolerates malformed content.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the registry function a tool call targets.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// RequiredAction wraps the pending tool calls of a requires_action episode.
type RequiredAction struct {
	Type              string             `json:"type"`
	SubmitToolOutputs *SubmitToolOutputs `json:"submit_tool_outputs,omitempty"`
}

// SubmitToolOutputs lists the callbacks that must all be answered in one
// resume call.
type SubmitToolOutputs struct {
	ToolCalls []ToolCall `json:"tool_calls"`
}

// PendingToolCalls returns the tool calls of the current requires_action
// episode, or nil when none are pending.
func (r *Run) PendingToolCalls() []ToolCall {
	if r == nil || r.RequiredAction == nil || r.RequiredAction.SubmitToolOutputs == nil {
		return nil
	}
	return r.RequiredAction.SubmitToolOutputs.ToolCalls
}

// ToolOutput pairs a tool call id with the string produced for it.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

// Run is the local read handle on a remote run.
type Run struct {
	ID             string          `json:"id"`
	ThreadID       string          `json:"thread_id"`
	AgentID        string          `json:"agent_id"`
	Status         RunStatus       `json:"status"`
	RequiredAction *RequiredAction `json:"required_action,omitempty"`
	LastError      *RunError       `json:"last_error,omitempty"`
	CreatedAt      float64         `json:"created_at"`
}

// Thread is a remote conversation container.
type Thread struct {
	ID        string  `json:"id"`
	CreatedAt float64 `json:"created_at"`
}

// MessageContent is one content part of a message.
type MessageContent struct {
	Type string       `json:"type"`
	Text *MessageText `json:"text,omitempty"`
}

// MessageText holds the textual value of a text content part.
type MessageText struct {
	Value string `json:"value"`
}

// Message is one entry in a thread.
type Message struct {
	ID        string           `json:"id"`
	ThreadID  string           `json:"thread_id"`
	Role      string           `json:"role"`
	Content   []MessageContent `json:"content"`
	CreatedAt float64          `json:"created_at"`
}

// Text returns the first non-empty text value of the message, or "".
func (m Message) Text() string {
	for _, part := range m.Content {
		if part.Text != nil && part.Text.Value != "" {
			return part.Text.Value
		}
	}
	return ""
}

// Agent is a remote agent resource.
type Agent struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Model        string           `json:"model"`
	Instructions string           `json:"instructions"`
	Description  string           `json:"description,omitempty"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// ToolDefinition declares a tool the agent may call.
type ToolDefinition struct {
	Type     string              `json:"type"`
	Function *FunctionDefinition `json:"function,omitempty"`
}

// FunctionDefinition describes a callable function with a JSON-schema
// parameter object.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// PaginatedResponse wraps paginated results.
type PaginatedResponse[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func (p PaginatedResponse[T]) HasNext() bool {
	return p.Next != nil
}

func (p PaginatedResponse[T]) HasPrevious() bool {
	return p.Previous != nil
}

// SearchIndex is a remote search index resource.
type SearchIndex struct {
	Name          string `json:"name"`
	DocumentCount int    `json:"document_count"`
	Status        string `json:"status"`
}

// IndexerStatus reports the state of a remote indexing pipeline run.
type IndexerStatus struct {
	Name          string  `json:"name"`
	Status        string  `json:"status"`
	ItemsIndexed  int     `json:"items_indexed"`
	ItemsFailed   int     `json:"items_failed"`
	LastRunAt     float64 `json:"last_run_at"`
	FailureReason *string `json:"failure_reason,omitempty"`
}

// DocumentIngestResult is returned by the document upload endpoint.
type DocumentIngestResult struct {
	DocumentID string `json:"document_id"`
	Index      string `json:"index"`
	Accepted   bool   `json:"accepted"`
}
