package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"dispatch/internal/orchestrator"
)

// keywordRoute maps utterance keywords to a routing decision. Routes are
// checked in order; the first match wins.
type keywordRoute struct {
	keywords []string
	agent    string
	action   string
}

var routes = []keywordRoute{
	{[]string{"runbook"}, "runbook_agent", "status"},
	{[]string{"monitor"}, "monitoring_agent", "status"},
	{[]string{"trace", "slow", "latency"}, "trace_agent", "get_recent_traces"},
	{[]string{"dashboard", "golden signal"}, "dashboard_agent", "get_dashboard"},
	{[]string{"deploy", "restart", "rollout"}, "deployment_agent", "get_app_status"},
	{[]string{"error", "exception"}, "log_agent", "get_error_logs"},
	{[]string{"log"}, "log_agent", "get_recent_logs"},
	{[]string{"health", "healthy", "status", "up"}, "health_agent", "check_all"},
}

// RuleClassifier routes utterances with keyword matching. It never fails,
// defaulting to a full health check, which makes it the classifier of
// choice when no LLM endpoint is configured.
type RuleClassifier struct{}

// Classify picks the first route whose keyword appears in the utterance.
func (RuleClassifier) Classify(ctx context.Context, utterance string) (orchestrator.Intent, error) {
	lowered := strings.ToLower(utterance)
	for _, route := range routes {
		for _, keyword := range route.keywords {
			if strings.Contains(lowered, keyword) {
				return orchestrator.Intent{
					Agent:     route.agent,
					Action:    route.action,
					Params:    map[string]interface{}{},
					Reasoning: fmt.Sprintf("matched keyword %q", keyword),
				}, nil
			}
		}
	}
	return orchestrator.Intent{
		Agent:     "health_agent",
		Action:    "check_all",
		Params:    map[string]interface{}{},
		Reasoning: "no keyword matched, defaulting to full health check",
	}, nil
}

// RawFormatter renders results as indented JSON, for deployments without
// an LLM endpoint.
type RawFormatter struct{}

// Format marshals the raw result.
func (RawFormatter) Format(ctx context.Context, agentKind, action string, raw map[string]interface{}) (string, error) {
	pretty, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	return fmt.Sprintf("Result from %s (%s):\n%s", agentKind, action, pretty), nil
}
