package agents

import (
	"context"
	"errors"
	"fmt"

	"dispatch/internal/events"
)

// executeTrace handles distributed-trace inspection actions.
func executeTrace(ctx context.Context, a *Agent, action string, params map[string]interface{}) (map[string]interface{}, error) {
	var result map[string]interface{}
	var err error

	switch action {
	case "get_recent_traces":
		limit := intParam(params, "limit", 20)
		a.emit("Fetching recent traces", events.PhaseRunning, fmt.Sprintf("Limit: %d", limit))
		result, err = a.tools.CallTool(ctx, "get_recent_traces", map[string]interface{}{"limit": limit})

	case "get_trace_details":
		traceID := strParam(params, "trace_id", "")
		if traceID == "" {
			return nil, errors.New("trace_id is required")
		}
		a.emit("Fetching trace details", events.PhaseRunning, fmt.Sprintf("Trace: %.16s", traceID))
		result, err = a.tools.CallTool(ctx, "get_trace_details", map[string]interface{}{"trace_id": traceID})

	case "get_trace_summary":
		hours := intParam(params, "hours", 1)
		a.emit(fmt.Sprintf("Generating trace summary, last %dh", hours), events.PhaseRunning, "")
		result, err = a.tools.CallTool(ctx, "get_trace_summary", map[string]interface{}{"hours": hours})

	default:
		a.emit("Default: fetching recent traces", events.PhaseRunning, "")
		result, err = a.tools.CallTool(ctx, "get_recent_traces", map[string]interface{}{"limit": 20})
	}

	if err != nil {
		return nil, err
	}

	traceCount := 0
	if traces, ok := result["traces"].([]interface{}); ok {
		traceCount = len(traces)
	}
	a.emit(fmt.Sprintf("Retrieved %d traces", traceCount), events.PhaseCompleted, "")
	return result, nil
}
