package skybrief

import (
	"context"
	"fmt"
)

// AgentsAPI manages agent, thread, message and run operations.
type AgentsAPI struct {
	cfg        Config
	httpClient *httpClient
	Threads    *ThreadsAPI
	Messages   *MessagesAPI
	Runs       *RunsAPI
}

func newAgentsAPI(cfg Config, httpClient *httpClient) *AgentsAPI {
	api := &AgentsAPI{cfg: cfg, httpClient: httpClient}
	api.Threads = &ThreadsAPI{agentsAPI: api}
	api.Messages = &MessagesAPI{agentsAPI: api}
	api.Runs = &RunsAPI{agentsAPI: api}
	return api
}

// CreateAgentParams collects the fields of an agent create call.
type CreateAgentParams struct {
	Model        string
	Name         string
	Instructions string
	Description  string
	Tools        []ToolDefinition
}

// Create creates a new agent.
func (a *AgentsAPI) Create(params CreateAgentParams) (Agent, error) {
	return a.CreateWithContext(context.Background(), params)
}

// CreateWithContext creates a new agent with a caller-supplied context.
func (a *AgentsAPI) CreateWithContext(ctx context.Context, params CreateAgentParams) (Agent, error) {
	if params.Model == "" {
		return Agent{}, fmt.Errorf("model cannot be empty")
	}
	if params.Name == "" {
		return Agent{}, fmt.Errorf("name cannot be empty")
	}
	payload := map[string]any{
		"model":        params.Model,
		"name":         params.Name,
		"instructions": params.Instructions,
	}
	if params.Description != "" {
		payload["description"] = params.Description
	}
	if len(params.Tools) > 0 {
		payload["tools"] = params.Tools
	}
	var resp Agent
	if err := a.httpClient.postJSONWithContext(ctx, "/v1/agents/", payload, nil, &resp); err != nil {
		return Agent{}, fmt.Errorf("create agent %s: %w", params.Name, err)
	}
	return resp, nil
}

// Retrieve fetches an agent.
func (a *AgentsAPI) Retrieve(agentID string) (Agent, error) {
	return a.RetrieveWithContext(context.Background(), agentID)
}

// RetrieveWithContext fetches an agent with a caller-supplied context.
func (a *AgentsAPI) RetrieveWithContext(ctx context.Context, agentID string) (Agent, error) {
	if agentID == "" {
		return Agent{}, fmt.Errorf("agentID cannot be empty")
	}
	var resp Agent
	if err := a.httpClient.getWithContext(ctx, fmt.Sprintf("/v1/agents/%s/", agentID), nil, &resp); err != nil {
		return Agent{}, fmt.Errorf("retrieve agent %s: %w", agentID, err)
	}
	return resp, nil
}

// List returns paginated agents.
func (a *AgentsAPI) List(page, pageSize int) (PaginatedResponse[Agent], error) {
	return a.ListWithContext(context.Background(), page, pageSize)
}

// ListWithContext returns paginated agents with a caller-supplied context.
func (a *AgentsAPI) ListWithContext(ctx context.Context, page, pageSize int) (PaginatedResponse[Agent], error) {
	params := map[string]string{}
	if page > 0 {
		params["page"] = fmt.Sprintf("%d", page)
	}
	if pageSize > 0 {
		params["page_size"] = fmt.Sprintf("%d", pageSize)
	}
	var resp PaginatedResponse[Agent]
	if err := a.httpClient.getWithContext(ctx, "/v1/agents/", params, &resp); err != nil {
		return PaginatedResponse[Agent]{}, err
	}
	return resp, nil
}

// Update updates an agent's mutable fields. Empty fields are left unchanged.
func (a *AgentsAPI) Update(agentID string, params CreateAgentParams) (Agent, error) {
	return a.UpdateWithContext(context.Background(), agentID, params)
}

// UpdateWithContext updates an agent with a caller-supplied context.
func (a *AgentsAPI) UpdateWithContext(ctx context.Context, agentID string, params CreateAgentParams) (Agent, error) {
	if agentID == "" {
		return Agent{}, fmt.Errorf("agentID cannot be empty")
	}
	payload := map[string]any{}
	if params.Name != "" {
		payload["name"] = params.Name
	}
	if params.Model != "" {
		payload["model"] = params.Model
	}
	if params.Instructions != "" {
		payload["instructions"] = params.Instructions
	}
	if params.Description != "" {
		payload["description"] = params.Description
	}
	if len(params.Tools) > 0 {
		payload["tools"] = params.Tools
	}
	var resp Agent
	if err := a.httpClient.putJSONWithContext(ctx, fmt.Sprintf("/v1/agents/%s/", agentID), payload, nil, &resp); err != nil {
		return Agent{}, err
	}
	return resp, nil
}

// Delete removes an agent.
func (a *AgentsAPI) Delete(agentID string) error {
	return a.DeleteWithContext(context.Background(), agentID)
}

// DeleteWithContext removes an agent with a caller-supplied context.
func (a *AgentsAPI) DeleteWithContext(ctx context.Context, agentID string) error {
	if agentID == "" {
		return fmt.Errorf("agentID cannot be empty")
	}
	if err := a.httpClient.deleteWithContext(ctx, fmt.Sprintf("/v1/agents/%s/", agentID), nil); err != nil {
		return fmt.Errorf("delete agent %s: %w", agentID, err)
	}
	return nil
}

// ThreadsAPI handles thread operations.
type ThreadsAPI struct {
	agentsAPI *AgentsAPI
}

// Create opens a new conversation thread.
func (t *ThreadsAPI) Create() (Thread, error) {
	return t.CreateWithContext(context.Background())
}

// CreateWithContext opens a new thread with a caller-supplied context.
func (t *ThreadsAPI) CreateWithContext(ctx context.Context) (Thread, error) {
	var resp Thread
	if err := t.agentsAPI.httpClient.postJSONWithContext(ctx, "/v1/threads/", nil, nil, &resp); err != nil {
		return Thread{}, fmt.Errorf("create thread: %w", err)
	}
	return resp, nil
}

// Delete removes a thread.
func (t *ThreadsAPI) Delete(threadID string) error {
	return t.DeleteWithContext(context.Background(), threadID)
}

// DeleteWithContext removes a thread with a caller-supplied context.
func (t *ThreadsAPI) DeleteWithContext(ctx context.Context, threadID string) error {
	if threadID == "" {
		return fmt.Errorf("threadID cannot be empty")
	}
	return t.agentsAPI.httpClient.deleteWithContext(ctx, fmt.Sprintf("/v1/threads/%s/", threadID), nil)
}

// MessagesAPI handles message operations.
type MessagesAPI struct {
	agentsAPI *AgentsAPI
}

// Create posts a message to a thread.
func (m *MessagesAPI) Create(threadID, role, text string) (Message, error) {
	return m.CreateWithContext(context.Background(), threadID, role, text)
}

// CreateWithContext posts a message with a caller-supplied context.
func (m *MessagesAPI) CreateWithContext(ctx context.Context, threadID, role, text string) (Message, error) {
	if threadID == "" {
		return Message{}, fmt.Errorf("threadID cannot be empty")
	}
	payload := map[string]any{
		"role":    role,
		"content": text,
	}
	var resp Message
	if err := m.agentsAPI.httpClient.postJSONWithContext(ctx, fmt.Sprintf("/v1/threads/%s/messages/", threadID), payload, nil, &resp); err != nil {
		return Message{}, fmt.Errorf("create message in thread %s: %w", threadID, err)
	}
	return resp, nil
}

// List returns the messages of a thread, newest first.
func (m *MessagesAPI) List(threadID string) ([]Message, error) {
	return m.ListWithContext(context.Background(), threadID)
}

// ListWithContext lists messages with a caller-supplied context.
func (m *MessagesAPI) ListWithContext(ctx context.Context, threadID string) ([]Message, error) {
	if threadID == "" {
		return nil, fmt.Errorf("threadID cannot be empty")
	}
	var resp struct {
		Data []Message `json:"data"`
	}
	if err := m.agentsAPI.httpClient.getWithContext(ctx, fmt.Sprintf("/v1/threads/%s/messages/", threadID), nil, &resp); err != nil {
		return nil, fmt.Errorf("list messages in thread %s: %w", threadID, err)
	}
	return resp.Data, nil
}

// RunsAPI handles run operations.
type RunsAPI struct {
	agentsAPI *AgentsAPI
}

// Create starts a run of the given agent on a thread.
func (r *RunsAPI) Create(threadID, agentID string) (Run, error) {
	return r.CreateWithContext(context.Background(), threadID, agentID)
}

// CreateWithContext starts a run with a caller-supplied context.
func (r *RunsAPI) CreateWithContext(ctx context.Context, threadID, agentID string) (Run, error) {
	if threadID == "" {
		return Run{}, fmt.Errorf("threadID cannot be empty")
	}
	if agentID == "" {
		return Run{}, fmt.Errorf("agentID cannot be empty")
	}
	payload := map[string]any{"agent_id": agentID}
	var resp Run
	if err := r.agentsAPI.httpClient.postJSONWithContext(ctx, fmt.Sprintf("/v1/threads/%s/runs/", threadID), payload, nil, &resp); err != nil {
		return Run{}, fmt.Errorf("create run for agent %s: %w", agentID, err)
	}
	return resp, nil
}

// Retrieve re-fetches the current state of a run.
func (r *RunsAPI) Retrieve(threadID, runID string) (Run, error) {
	return r.RetrieveWithContext(context.Background(), threadID, runID)
}

// RetrieveWithContext re-fetches a run with a caller-supplied context.
func (r *RunsAPI) RetrieveWithContext(ctx context.Context, threadID, runID string) (Run, error) {
	if threadID == "" || runID == "" {
		return Run{}, fmt.Errorf("threadID and runID cannot be empty")
	}
	var resp Run
	if err := r.agentsAPI.httpClient.getWithContext(ctx, fmt.Sprintf("/v1/threads/%s/runs/%s/", threadID, runID), nil, &resp); err != nil {
		return Run{}, fmt.Errorf("retrieve run %s: %w", runID, err)
	}
	return resp, nil
}

// SubmitToolOutputs resumes a blocked run with one batch of callback results.
// The remote contract is one batch per requires_action episode; partial
// submissions stall the run.
func (r *RunsAPI) SubmitToolOutputs(threadID, runID string, outputs []ToolOutput) (Run, error) {
	return r.SubmitToolOutputsWithContext(context.Background(), threadID, runID, outputs)
}

// SubmitToolOutputsWithContext resumes a run with a caller-supplied context.
func (r *RunsAPI) SubmitToolOutputsWithContext(ctx context.Context, threadID, runID string, outputs []ToolOutput) (Run, error) {
	if threadID == "" || runID == "" {
		return Run{}, fmt.Errorf("threadID and runID cannot be empty")
	}
	if len(outputs) == 0 {
		return Run{}, fmt.Errorf("outputs cannot be empty")
	}
	payload := map[string]any{"tool_outputs": outputs}
	var resp Run
	if err := r.agentsAPI.httpClient.postJSONWithContext(ctx, fmt.Sprintf("/v1/threads/%s/runs/%s/submit_tool_outputs/", threadID, runID), payload, nil, &resp); err != nil {
		return Run{}, fmt.Errorf("submit tool outputs for run %s: %w", runID, err)
	}
	return resp, nil
}

// Cancel requests cancellation of an in-flight run.
func (r *RunsAPI) Cancel(threadID, runID string) (Run, error) {
	return r.CancelWithContext(context.Background(), threadID, runID)
}

// CancelWithContext requests cancellation with a caller-supplied context.
func (r *RunsAPI) CancelWithContext(ctx context.Context, threadID, runID string) (Run, error) {
	if threadID == "" || runID == "" {
		return Run{}, fmt.Errorf("threadID and runID cannot be empty")
	}
	var resp Run
	if err := r.agentsAPI.httpClient.postJSONWithContext(ctx, fmt.Sprintf("/v1/threads/%s/runs/%s/cancel/", threadID, runID), nil, nil, &resp); err != nil {
		return Run{}, fmt.Errorf("cancel run %s: %w", runID, err)
	}
	return resp, nil
}
