package skybrief

import (
	"context"
	"fmt"
	"time"
)

// OutcomeKind classifies how a driven run ended.
type OutcomeKind int

const (
	// OutcomeCompleted means the run finished and produced assistant output.
	OutcomeCompleted OutcomeKind = iota
	// OutcomeFailed means the run ended without usable output.
	OutcomeFailed
	// OutcomeTimedOut means the wall-clock budget expired before the run
	// reached a terminal status.
	OutcomeTimedOut
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	case OutcomeTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// RunOutcome is the single result type a driven run resolves to.
// Text is set only for OutcomeCompleted, Reason only for OutcomeFailed,
// and LastStatus only for OutcomeTimedOut.
type RunOutcome struct {
	Kind       OutcomeKind
	Text       string
	Reason     string
	LastStatus RunStatus
}

// RunDriver polls a run to completion, servicing callback requests from a
// FunctionRegistry along the way.
type RunDriver struct {
	client   *Client
	registry *FunctionRegistry

	// PollInterval is the fixed delay between status polls. PollTimeout is
	// the wall-clock budget for the whole run. Zero values fall back to the
	// client configuration.
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// NewRunDriver builds a driver around a client and registry.
func NewRunDriver(client *Client, registry *FunctionRegistry) *RunDriver {
	return &RunDriver{
		client:       client,
		registry:     registry,
		PollInterval: client.Config.PollInterval,
		PollTimeout:  client.Config.PollTimeout,
	}
}

// Drive polls the run until it resolves.
func (d *RunDriver) Drive(threadID, runID string) RunOutcome {
	return d.DriveWithContext(context.Background(), threadID, runID)
}

// DriveWithContext polls the run until it resolves or ctx is done.
// It never returns an error: every failure mode collapses into a RunOutcome.
func (d *RunDriver) DriveWithContext(ctx context.Context, threadID, runID string) RunOutcome {
	interval := d.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	budget := d.PollTimeout
	if budget <= 0 {
		budget = defaultPollTimeout
	}
	deadline := time.Now().Add(budget)

	lastStatus := RunUnknown
	for {
		run, err := d.client.Agents.Runs.RetrieveWithContext(ctx, threadID, runID)
		if err != nil {
			return RunOutcome{Kind: OutcomeFailed, Reason: fmt.Sprintf("poll run: %v", err)}
		}
		lastStatus = run.Status

		switch run.Status {
		case RunRequiresAction:
			resumed, err := d.serviceToolCalls(ctx, threadID, run)
			if err != nil {
				return RunOutcome{Kind: OutcomeFailed, Reason: err.Error()}
			}
			lastStatus = resumed.Status
			// The resume response may already be terminal.
			if outcome, done := d.terminalOutcome(ctx, threadID, resumed); done {
				return outcome
			}
		default:
			if outcome, done := d.terminalOutcome(ctx, threadID, run); done {
				return outcome
			}
		}

		if time.Now().After(deadline) {
			return RunOutcome{Kind: OutcomeTimedOut, LastStatus: lastStatus}
		}
		if err := waitWithContext(ctx, interval); err != nil {
			return RunOutcome{Kind: OutcomeTimedOut, LastStatus: lastStatus}
		}
	}
}

func waitWithContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// terminalOutcome maps a terminal run state to its outcome. The second
// return is false while the run is still in flight.
func (d *RunDriver) terminalOutcome(ctx context.Context, threadID string, run Run) (RunOutcome, bool) {
	switch run.Status {
	case RunCompleted:
		text, err := d.latestAssistantText(ctx, threadID)
		if err != nil {
			return RunOutcome{Kind: OutcomeFailed, Reason: fmt.Sprintf("fetch final output: %v", err)}, true
		}
		if text == "" {
			return RunOutcome{Kind: OutcomeFailed, Reason: "run completed but produced no output"}, true
		}
		return RunOutcome{Kind: OutcomeCompleted, Text: text}, true
	case RunFailed:
		reason := "run failed"
		if run.LastError != nil && run.LastError.Message != "" {
			reason = run.LastError.Message
		}
		return RunOutcome{Kind: OutcomeFailed, Reason: reason}, true
	case RunCancelled, RunExpired:
		return RunOutcome{Kind: OutcomeFailed, Reason: fmt.Sprintf("run ended with status %s", run.Status)}, true
	default:
		return RunOutcome{}, false
	}
}

// serviceToolCalls answers every pending tool call in one batch. Individual
// callback failures become error payloads inside the batch so the run always
// resumes with a complete set of outputs.
func (d *RunDriver) serviceToolCalls(ctx context.Context, threadID string, run Run) (Run, error) {
	calls := run.PendingToolCalls()
	if len(calls) == 0 {
		return run, fmt.Errorf("run %s requires action but lists no tool calls", run.ID)
	}

	outputs := make([]ToolOutput, 0, len(calls))
	for _, call := range calls {
		outputs = append(outputs, ToolOutput{
			ToolCallID: call.ID,
			Output:     d.invoke(ctx, call),
		})
	}

	resumed, err := d.client.Agents.Runs.SubmitToolOutputsWithContext(ctx, threadID, run.ID, outputs)
	if err != nil {
		return run, fmt.Errorf("submit tool outputs for run %s: %v", run.ID, err)
	}
	return resumed, nil
}

// invoke runs one callback and always yields an output string.
func (d *RunDriver) invoke(ctx context.Context, call ToolCall) (output string) {
	name := call.Function.Name
	defer func() {
		if r := recover(); r != nil {
			output = errorOutput("function %s panicked: %v", name, r)
		}
	}()

	fn, ok := d.registry.Resolve(name)
	if !ok {
		return errorOutput("unknown function: %s", name)
	}

	args := decodeArguments(call.Function.Arguments)
	result, err := fn(ctx, args)
	if err != nil {
		return errorOutput("function %s failed: %v", name, err)
	}
	return result
}

// latestAssistantText returns the newest assistant message text in the
// thread, or "" when the thread has none.
func (d *RunDriver) latestAssistantText(ctx context.Context, threadID string) (string, error) {
	messages, err := d.client.Agents.Messages.ListWithContext(ctx, threadID)
	if err != nil {
		return "", err
	}
	for _, msg := range messages {
		if msg.Role == "assistant" {
			if text := msg.Text(); text != "" {
				return text, nil
			}
		}
	}
	return "", nil
}
