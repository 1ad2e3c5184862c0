package agents

import (
	"context"
	"fmt"

	"dispatch/internal/events"
)

// executeRunbook controls the automated runbook loop (health checks with
// auto-restart on detected errors).
func executeRunbook(ctx context.Context, a *Agent, action string, params map[string]interface{}) (map[string]interface{}, error) {
	switch action {
	case "start":
		interval := intParam(params, "interval_minutes", 5)
		webhook := strParam(params, "webhook_url", "")
		a.emit("Activating runbook RB-SRE-001", events.PhaseRunning, "Auto-restart on errors enabled")
		a.emit(fmt.Sprintf("Setting check interval: %d min", interval), events.PhaseRunning, "")
		result, err := a.tools.CallTool(ctx, "start_runbook_monitoring",
			map[string]interface{}{"interval_minutes": interval, "webhook_url": webhook})
		if err != nil {
			return nil, err
		}
		a.emit("Runbook monitoring active", events.PhaseCompleted, "Will auto-restart on detected errors")
		return result, nil

	case "stop":
		a.emit("Stopping runbook monitoring", events.PhaseRunning, "")
		result, err := a.tools.CallTool(ctx, "stop_runbook_monitoring", nil)
		if err != nil {
			return nil, err
		}
		a.emit("Runbook monitoring deactivated", events.PhaseCompleted, "")
		return result, nil

	case "status":
		a.emit("Checking runbook monitoring status", events.PhaseRunning, "")
		result, err := a.tools.CallTool(ctx, "get_runbook_monitoring_status", nil)
		if err != nil {
			return nil, err
		}
		a.emit(fmt.Sprintf("Runbook is %s", activeLabel(result)), events.PhaseCompleted, "")
		return result, nil

	default:
		a.emit("Default: fetching runbook status", events.PhaseRunning, "")
		return a.tools.CallTool(ctx, "get_runbook_monitoring_status", nil)
	}
}
