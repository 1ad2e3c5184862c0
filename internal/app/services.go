package app

import (
	"time"

	"dispatch/internal/agents"
	"dispatch/internal/brain"
	"dispatch/internal/config"
	"dispatch/internal/events"
	"dispatch/internal/mcpclient"
	"dispatch/internal/orchestrator"
	"dispatch/internal/registry"
	"dispatch/internal/server"
	"dispatch/pkg/logging"
)

// Services holds the wired service graph for one dispatch process.
type Services struct {
	Registry     *registry.Registry
	Broadcaster  *events.Broadcaster
	Tools        *mcpclient.Client
	Orchestrator *orchestrator.Orchestrator
	Server       *server.Server
}

// InitializeServices constructs and wires all services from configuration.
func InitializeServices(cfg *Config) (*Services, error) {
	dispatchCfg := cfg.DispatchConfig

	reg := registry.New(dispatchCfg.Orchestrator.MaxCompleted)
	broadcaster := events.NewBroadcaster()

	// Progress events are mirrored into the process log so operators can
	// follow agent lifecycles without an MCP subscriber attached.
	broadcaster.Subscribe(events.SubscriberFunc(func(event events.ProgressEvent) error {
		logging.Debug("Events", "[%s] %s (%s) %s", event.AgentID, event.Step, event.Phase, event.Detail)
		return nil
	}))

	tools := mcpclient.New(mcpclient.Config{
		Endpoint:  dispatchCfg.Tools.Endpoint,
		Transport: mcpclient.TransportType(dispatchCfg.Tools.Transport),
		APIKey:    dispatchCfg.Tools.APIKey,
		Timeout:   time.Duration(dispatchCfg.Tools.TimeoutSeconds) * time.Second,
	})

	classifier, formatter := selectBrain(dispatchCfg.Brain)

	orch := orchestrator.New(orchestrator.Config{
		Registry:      reg,
		Broadcaster:   broadcaster,
		Classifier:    classifier,
		Formatter:     formatter,
		Tools:         tools,
		Cooldown:      time.Duration(dispatchCfg.Orchestrator.CooldownSeconds) * time.Second,
		DefaultKind:   agents.Kind(dispatchCfg.Orchestrator.DefaultAgent),
		DefaultAction: dispatchCfg.Orchestrator.DefaultAction,
		MaxHistory:    dispatchCfg.Orchestrator.MaxHistory,
	})

	srv := server.New(dispatchCfg.Server, orch, reg)

	return &Services{
		Registry:     reg,
		Broadcaster:  broadcaster,
		Tools:        tools,
		Orchestrator: orch,
		Server:       srv,
	}, nil
}

// selectBrain picks the LLM brain when an API key is configured, otherwise
// the keyword-rule fallback so dispatch works without credentials.
func selectBrain(cfg config.BrainConfig) (orchestrator.Classifier, orchestrator.Formatter) {
	if cfg.APIKey == "" {
		logging.Info("Bootstrap", "No brain API key configured, using keyword-rule classification")
		return brain.RuleClassifier{}, brain.RawFormatter{}
	}

	b := brain.New(brain.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
	logging.Info("Bootstrap", "Using LLM brain (model %s)", cfg.Model)
	return b, b
}
