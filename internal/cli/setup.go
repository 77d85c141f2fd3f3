package cli

import (
	"fmt"

	"github.com/leadmate/leadmate/internal/assistant"
	"github.com/leadmate/leadmate/internal/audit"
	"github.com/leadmate/leadmate/internal/config"
	"github.com/leadmate/leadmate/internal/platform"
	"github.com/leadmate/leadmate/internal/progress"
	"github.com/leadmate/leadmate/internal/provider"
	"github.com/leadmate/leadmate/internal/scope"
	"github.com/leadmate/leadmate/internal/store"
)

// runtime bundles everything a command needs after wiring.
type runtime struct {
	cfg       *config.Config
	store     *store.Store
	audit     *audit.Logger
	backend   *platform.HTTPClient
	assistant *assistant.Assistant
}

func (r *runtime) Close() {
	r.store.Close()
}

// buildRuntime loads config and wires the assistant and its dependencies.
func buildRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Providers.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("API key not found. Set LEADMATE_OPENAI_API_KEY, OPENAI_API_KEY, or use config.json")
	}
	if cfg.Platform.BaseURL == "" {
		return nil, fmt.Errorf("platform base URL not configured. Set LEADMATE_PLATFORM_BASE_URL or use config.json")
	}

	if err := config.EnsureDir(cfg.Paths.DataDir); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	st, err := store.New(cfg.Paths.DBPath)
	if err != nil {
		return nil, err
	}

	backend := platform.NewHTTPClient(cfg.Platform.BaseURL, cfg.Platform.APIToken)
	var writer platform.Writer = backend
	if cfg.Notifications.SlackWebhookURL != "" {
		writer = platform.NewSlackNotifier(backend, cfg.Notifications.SlackWebhookURL)
	}

	var mirror audit.Mirror
	if len(cfg.Audit.KafkaBrokers) > 0 {
		mirror = audit.NewKafkaMirror(cfg.Audit.KafkaBrokers, cfg.Audit.KafkaTopic)
	}
	auditLog := audit.NewLogger(st, mirror)

	scopes := scope.NewResolver(backend)
	snapshots := progress.NewBuilder(platform.Readers{
		Tasks:       backend,
		PDIs:        backend,
		Assessments: backend,
	})
	prov := provider.NewOpenAIClient(cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.APIBase, cfg.Model.Name)

	return &runtime{
		cfg:       cfg,
		store:     st,
		audit:     auditLog,
		backend:   backend,
		assistant: assistant.New(prov, scopes, snapshots, st, auditLog, writer, cfg.Model),
	}, nil
}
