package agents

import (
	"context"
	"fmt"

	"dispatch/internal/events"
)

// executeLog handles log retrieval and search actions.
func executeLog(ctx context.Context, a *Agent, action string, params map[string]interface{}) (map[string]interface{}, error) {
	a.emit("Fetching logs from the logs backend", events.PhaseRunning,
		fmt.Sprintf("Action: %s", action))

	var result map[string]interface{}
	var err error

	switch action {
	case "get_error_logs":
		hours := intParam(params, "hours", 24)
		limit := intParam(params, "limit", 100)
		a.emit(fmt.Sprintf("Scanning error logs, last %dh", hours), events.PhaseRunning,
			fmt.Sprintf("Limit: %d", limit))
		result, err = a.tools.CallTool(ctx, "get_error_logs", map[string]interface{}{"hours": hours, "limit": limit})

	case "get_recent_logs":
		limit := intParam(params, "limit", 50)
		a.emit("Fetching recent logs", events.PhaseRunning, fmt.Sprintf("Limit: %d", limit))
		result, err = a.tools.CallTool(ctx, "get_recent_logs", map[string]interface{}{"limit": limit})

	case "get_app_logs":
		hours := intParam(params, "hours", 1)
		limit := intParam(params, "limit", 50)
		a.emit(fmt.Sprintf("Fetching app logs, last %dh", hours), events.PhaseRunning, "")
		result, err = a.tools.CallTool(ctx, "get_app_logs", map[string]interface{}{"hours": hours, "limit": limit})

	case "get_platform_logs":
		hours := intParam(params, "hours", 1)
		limit := intParam(params, "limit", 50)
		a.emit(fmt.Sprintf("Fetching platform logs, last %dh", hours), events.PhaseRunning, "")
		result, err = a.tools.CallTool(ctx, "get_platform_logs", map[string]interface{}{"hours": hours, "limit": limit})

	case "query_logs":
		query := strParam(params, "query", "source logs")
		hours := intParam(params, "hours", 1)
		limit := intParam(params, "limit", 50)
		a.emit("Running custom log query", events.PhaseRunning, fmt.Sprintf("Query: %s", query))
		result, err = a.tools.CallTool(ctx, "query_logs", map[string]interface{}{"query": query, "hours": hours, "limit": limit})

	default:
		// Best effort: unknown actions fall back to the error-log scan.
		a.emit("Default: fetching error logs, last 24h", events.PhaseRunning, "")
		result, err = a.tools.CallTool(ctx, "get_error_logs", map[string]interface{}{"hours": 24, "limit": 100})
	}

	if err != nil {
		return nil, err
	}

	detail := ""
	if logs, ok := result["logs"].([]interface{}); ok {
		detail = fmt.Sprintf("Found %d log entries", len(logs))
	}
	a.emit("Log data retrieved", events.PhaseCompleted, detail)
	return result, nil
}
