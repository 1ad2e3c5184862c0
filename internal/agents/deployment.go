package agents

import (
	"context"

	"dispatch/internal/events"
)

// executeDeployment handles app lifecycle and deployment inspection actions.
func executeDeployment(ctx context.Context, a *Agent, action string, params map[string]interface{}) (map[string]interface{}, error) {
	switch action {
	case "get_deployment_history":
		a.emit("Fetching deployment history", events.PhaseRunning, "")
		return a.tools.CallTool(ctx, "get_deployment_history", nil)

	case "get_app_status":
		a.emit("Checking app status", events.PhaseRunning, "")
		return a.tools.CallTool(ctx, "get_app_status", nil)

	case "restart_app":
		a.emit("Restarting application", events.PhaseRunning, "Scale 0 then scale 1")
		result, err := a.tools.CallTool(ctx, "restart_app", nil)
		if err != nil {
			return nil, err
		}
		a.emit("Restart initiated", events.PhaseCompleted, "")
		return result, nil

	case "stop_app":
		a.emit("Stopping application", events.PhaseRunning, "")
		return a.tools.CallTool(ctx, "stop_app", nil)

	case "start_app":
		a.emit("Starting application", events.PhaseRunning, "")
		return a.tools.CallTool(ctx, "start_app", nil)

	default:
		a.emit("Default: fetching app status", events.PhaseRunning, "")
		return a.tools.CallTool(ctx, "get_app_status", nil)
	}
}
