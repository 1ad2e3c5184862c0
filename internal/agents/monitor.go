package agents

import (
	"context"
	"fmt"

	"dispatch/internal/events"
)

// executeMonitor controls the continuous monitoring loop on the tool server.
func executeMonitor(ctx context.Context, a *Agent, action string, params map[string]interface{}) (map[string]interface{}, error) {
	switch action {
	case "start":
		interval := intParam(params, "interval_minutes", 2)
		webhook := strParam(params, "webhook_url", "")
		a.emit("Starting continuous monitoring", events.PhaseRunning,
			fmt.Sprintf("Interval: %d min", interval))
		result, err := a.tools.CallTool(ctx, "start_monitoring",
			map[string]interface{}{"interval_minutes": interval, "webhook_url": webhook})
		if err != nil {
			return nil, err
		}
		a.emit("Monitoring activated", events.PhaseCompleted, "")
		return result, nil

	case "stop":
		a.emit("Stopping continuous monitoring", events.PhaseRunning, "")
		result, err := a.tools.CallTool(ctx, "stop_monitoring", nil)
		if err != nil {
			return nil, err
		}
		a.emit("Monitoring deactivated", events.PhaseCompleted, "")
		return result, nil

	case "status":
		a.emit("Checking monitoring status", events.PhaseRunning, "")
		result, err := a.tools.CallTool(ctx, "get_monitoring_status", nil)
		if err != nil {
			return nil, err
		}
		a.emit(fmt.Sprintf("Monitoring is %s", activeLabel(result)), events.PhaseCompleted, "")
		return result, nil

	default:
		a.emit("Default: fetching monitoring status", events.PhaseRunning, "")
		return a.tools.CallTool(ctx, "get_monitoring_status", nil)
	}
}

// activeLabel renders the common active/monitoring_active flags from a
// status result.
func activeLabel(result map[string]interface{}) string {
	active, ok := result["active"].(bool)
	if !ok {
		active, _ = result["monitoring_active"].(bool)
	}
	if active {
		return "ACTIVE"
	}
	return "INACTIVE"
}
