package agents

import (
	"context"
	"fmt"

	"dispatch/internal/events"
)

// executeDashboard assembles the golden-signals dashboard and its individual
// metric views.
func executeDashboard(ctx context.Context, a *Agent, action string, params map[string]interface{}) (map[string]interface{}, error) {
	switch action {
	case "get_dashboard":
		a.emit("Building SRE dashboard", events.PhaseRunning, "Collecting golden signals")

		a.emit("Latency: fetching response times", events.PhaseRunning, "")
		responseTimes, err := a.tools.CallTool(ctx, "get_response_times",
			map[string]interface{}{"hours": intParam(params, "hours", 1)})
		if err != nil {
			return nil, err
		}

		a.emit("Traffic: checking system status", events.PhaseRunning, "")
		systemStatus, err := a.tools.CallTool(ctx, "get_system_status", nil)
		if err != nil {
			return nil, err
		}

		a.emit("Errors: analyzing failures", events.PhaseRunning, "")
		failures, err := a.tools.CallTool(ctx, "get_failure_analysis",
			map[string]interface{}{"hours": intParam(params, "hours", 24)})
		if err != nil {
			return nil, err
		}

		a.emit("Saturation: fetching SRE dashboard", events.PhaseRunning, "")
		dashboard, err := a.tools.CallTool(ctx, "get_sre_dashboard", nil)
		if err != nil {
			return nil, err
		}

		a.emit("Assembling dashboard", events.PhaseCompleted, "")
		return map[string]interface{}{
			"dashboard":        dashboard,
			"response_times":   responseTimes,
			"system_status":    systemStatus,
			"failure_analysis": failures,
		}, nil

	case "get_response_times":
		hours := intParam(params, "hours", 1)
		a.emit(fmt.Sprintf("Fetching response time metrics, last %dh", hours), events.PhaseRunning, "")
		return a.tools.CallTool(ctx, "get_response_times", map[string]interface{}{"hours": hours})

	case "get_failure_analysis":
		hours := intParam(params, "hours", 24)
		a.emit(fmt.Sprintf("Analyzing failures, last %dh", hours), events.PhaseRunning, "")
		return a.tools.CallTool(ctx, "get_failure_analysis", map[string]interface{}{"hours": hours})

	default:
		a.emit("Default: building full SRE dashboard", events.PhaseRunning, "")
		return a.tools.CallTool(ctx, "get_sre_dashboard", nil)
	}
}
