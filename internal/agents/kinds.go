package agents

import (
	"context"
	"sort"
)

// Kind identifies one agent variant in the closed kind set.
type Kind string

const (
	KindLog        Kind = "log_agent"
	KindHealth     Kind = "health_agent"
	KindTrace      Kind = "trace_agent"
	KindDashboard  Kind = "dashboard_agent"
	KindDeployment Kind = "deployment_agent"
	KindMonitor    Kind = "monitoring_agent"
	KindRunbook    Kind = "runbook_agent"
)

// kindSpec binds a kind to its description, default action and execute
// implementation.
type kindSpec struct {
	description   string
	defaultAction string
	execute       func(ctx context.Context, a *Agent, action string, params map[string]interface{}) (map[string]interface{}, error)
}

var kinds = map[Kind]kindSpec{
	KindLog: {
		description:   "Log Analysis Agent",
		defaultAction: "get_error_logs",
		execute:       executeLog,
	},
	KindHealth: {
		description:   "Health Check Agent",
		defaultAction: "get_system_status",
		execute:       executeHealth,
	},
	KindTrace: {
		description:   "Trace Analysis Agent",
		defaultAction: "get_recent_traces",
		execute:       executeTrace,
	},
	KindDashboard: {
		description:   "SRE Dashboard Agent",
		defaultAction: "get_dashboard",
		execute:       executeDashboard,
	},
	KindDeployment: {
		description:   "Deployment Agent",
		defaultAction: "get_app_status",
		execute:       executeDeployment,
	},
	KindMonitor: {
		description:   "Monitoring Control Agent",
		defaultAction: "status",
		execute:       executeMonitor,
	},
	KindRunbook: {
		description:   "Runbook Automation Agent",
		defaultAction: "status",
		execute:       executeRunbook,
	},
}

// Known reports whether name is a registered agent kind.
func Known(name string) bool {
	_, ok := kinds[Kind(name)]
	return ok
}

// Description returns the human-readable description for a kind, or the
// kind name itself when unknown.
func Description(kind Kind) string {
	if spec, ok := kinds[kind]; ok {
		return spec.description
	}
	return string(kind)
}

// DefaultAction returns the documented default action for a kind.
func DefaultAction(kind Kind) string {
	if spec, ok := kinds[kind]; ok {
		return spec.defaultAction
	}
	return ""
}

// KindInfo describes one registered kind for listing surfaces.
type KindInfo struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	DefaultAction string `json:"default_action"`
}

// List returns all registered kinds in stable name order.
func List() []KindInfo {
	out := make([]KindInfo, 0, len(kinds))
	for kind, spec := range kinds {
		out = append(out, KindInfo{
			Name:          string(kind),
			Description:   spec.description,
			DefaultAction: spec.defaultAction,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// intParam reads an integer parameter, tolerating the float64 values JSON
// decoding produces.
func intParam(params map[string]interface{}, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// strParam reads a string parameter with a fallback.
func strParam(params map[string]interface{}, key, fallback string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
