package agents

import (
	"context"

	"dispatch/internal/events"
)

// executeHealth handles application, database and system health actions.
func executeHealth(ctx context.Context, a *Agent, action string, params map[string]interface{}) (map[string]interface{}, error) {
	var result map[string]interface{}
	var err error

	switch action {
	case "check_app_health":
		a.emit("Checking application health", events.PhaseRunning, "HTTP GET to app endpoint")
		result, err = a.tools.CallTool(ctx, "check_app_health", nil)

	case "check_database_health":
		a.emit("Checking database health", events.PhaseRunning, "Database connection test")
		result, err = a.tools.CallTool(ctx, "check_database_health", nil)

	case "get_system_status":
		a.emit("Fetching full system status", events.PhaseRunning, "App + DB + error scan")
		result, err = a.tools.CallTool(ctx, "get_system_status", nil)

	case "check_all":
		a.emit("Checking application health", events.PhaseRunning, "")
		appHealth, appErr := a.tools.CallTool(ctx, "check_app_health", nil)
		if appErr != nil {
			return nil, appErr
		}

		a.emit("Checking database health", events.PhaseRunning, "")
		dbHealth, dbErr := a.tools.CallTool(ctx, "check_database_health", nil)
		if dbErr != nil {
			return nil, dbErr
		}

		a.emit("Fetching system status", events.PhaseRunning, "")
		sysStatus, sysErr := a.tools.CallTool(ctx, "get_system_status", nil)
		if sysErr != nil {
			return nil, sysErr
		}

		result = map[string]interface{}{
			"app_health":      appHealth,
			"database_health": dbHealth,
			"system_status":   sysStatus,
		}

	default:
		a.emit("Default: full system status", events.PhaseRunning, "")
		result, err = a.tools.CallTool(ctx, "get_system_status", nil)
	}

	if err != nil {
		return nil, err
	}

	verdict := "HEALTHY"
	if _, hasError := result["error"]; hasError {
		verdict = "ERROR"
	}
	a.emit("Health check result: "+verdict, events.PhaseCompleted, "")
	return result, nil
}
