package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dispatch/internal/orchestrator"
	"dispatch/pkg/logging"
)

const classifySystemPrompt = `You are an SRE agent orchestrator for a web application.
Your job is to understand operator queries and decide which specialized agent to spin up.

Available ephemeral agents:
1. log_agent - Analyze application logs, error logs, search for patterns
2. health_agent - Check app health, database health, system status
3. monitoring_agent - Start/stop continuous monitoring, check monitoring status
4. runbook_agent - Start/stop automated runbook monitoring with auto-restart
5. trace_agent - Analyze request traces, find slow endpoints, trace details
6. dashboard_agent - Generate SRE dashboard with golden signals, response times, failure analysis
7. deployment_agent - Check deployment history, app status, manage app lifecycle

Given an operator query, respond with a JSON object:
{"agent": "<agent_name>", "action": "<specific_action>", "params": {...}, "reasoning": "Brief explanation"}

Always respond with valid JSON only. No markdown, no extra text.`

const formatSystemPrompt = `You are an SRE agent presenting results to a human operator.
Format the data into a clear, concise, human-readable response using markdown.
Include relevant metrics, timestamps and status indicators.
For health checks, give a clear healthy/unhealthy verdict.
Keep it professional but easy to scan quickly.
If there are errors, suggest potential actions.`

// Config holds the LLM endpoint settings for a Brain.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Brain is an LLM-backed classifier and formatter over an OpenAI-compatible
// chat-completions API.
type Brain struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// New creates a Brain for the given endpoint configuration.
func New(cfg Config) *Brain {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Brain{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http:    &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// chat sends one system+user exchange and returns the assistant text.
func (b *Brain) chat(ctx context.Context, system, user string, maxTokens int) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: b.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat endpoint returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("chat endpoint error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat endpoint returned no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// Classify asks the model which agent and action fit the utterance. Errors
// (including unparseable model output) are returned to the caller, which
// applies its default routing.
func (b *Brain) Classify(ctx context.Context, utterance string) (orchestrator.Intent, error) {
	text, err := b.chat(ctx, classifySystemPrompt, utterance, 500)
	if err != nil {
		return orchestrator.Intent{}, err
	}

	var intent orchestrator.Intent
	if err := json.Unmarshal([]byte(stripFences(text)), &intent); err != nil {
		return orchestrator.Intent{}, fmt.Errorf("parsing intent %q: %w", truncate(text, 120), err)
	}
	if intent.Params == nil {
		intent.Params = map[string]interface{}{}
	}
	return intent, nil
}

// Format turns a raw agent result into a human-readable report.
func (b *Brain) Format(ctx context.Context, agentKind, action string, raw map[string]interface{}) (string, error) {
	rawJSON, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding raw result: %w", err)
	}
	if len(rawJSON) > 4000 {
		rawJSON = rawJSON[:4000]
	}

	user := fmt.Sprintf("Agent: %s\nAction: %s\nRaw Data:\n```json\n%s\n```\n\nFormat this into a clear SRE report.",
		agentKind, action, rawJSON)

	text, err := b.chat(ctx, formatSystemPrompt, user, 2000)
	if err != nil {
		logging.Warn("Brain", "Formatting failed: %v", err)
		return "", err
	}
	return text, nil
}

// stripFences removes a surrounding markdown code fence, tolerating a
// language tag, so fenced model output still parses as JSON.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.Index(text, "\n"); i >= 0 && !strings.HasPrefix(text, "{") {
		text = text[i+1:]
	}
	if i := strings.LastIndex(text, "```"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
