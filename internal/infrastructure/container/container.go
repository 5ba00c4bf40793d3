// Package container provides dependency injection for the application.
package container

import (
	"fmt"
	"log/slog"

	apperrors "github.com/Microsoft/data-accelerator/internal/application/errors"
	"github.com/Microsoft/data-accelerator/internal/application/ports"
	"github.com/Microsoft/data-accelerator/internal/application/processors"
	"github.com/Microsoft/data-accelerator/internal/application/services"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/config"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/engine"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/output"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/redaction"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/sensitivedata"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/storage"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/system"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/validation"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/vault"
)

// Container holds all application dependencies.
type Container struct {
	flowLoader    ports.FlowLoader
	flowValidator ports.FlowValidator
	vault         *vault.Client
	pipeline      *engine.Pipeline
	metrics       *engine.Metrics
	formatters    *output.FormatterFactory
	settings      config.Settings
	systemCfg     *system.Config
	logger        *slog.Logger
}

// Options configure the container.
type Options struct {
	Logger           *slog.Logger
	SystemConfigPath string
	Overrides        config.Overrides

	// Provider collects plaintext secrets seen during the run. Share it with
	// the log writer so secrets never reach the logs.
	Provider *sensitivedata.Provider

	// Store replaces the configured vault backend
	Store vault.Store
}

// New creates a new dependency injection container.
func New(opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Provider == nil {
		opts.Provider = sensitivedata.NewProvider()
	}

	// Load system config
	systemCfg, err := system.NewConfigLoader().Load(opts.SystemConfigPath)
	if err != nil {
		return nil, err
	}

	// Settings are resolved once and injected into every step
	settings, err := config.FromSystemConfig(systemCfg, opts.Overrides)
	if err != nil {
		return nil, apperrors.NewConfigurationError("settings", "invalid system config", err)
	}

	store := opts.Store
	if store == nil {
		store, err = newStore(systemCfg.Vault, opts.Logger)
		if err != nil {
			return nil, err
		}
	}

	vaultClient := vault.NewClient(store, settings.SecretScheme(),
		vault.WithSensitiveValueProvider(opts.Provider),
		vault.WithLogger(opts.Logger),
	)

	// Initialize leak scanner
	scanner, err := redaction.New(redaction.Config{
		Patterns:        systemCfg.Redaction.Patterns,
		DisableGitleaks: systemCfg.Redaction.DisableGitleaks,
		Ignore:          vault.IsSecretRef,
	})
	if err != nil {
		return nil, err
	}

	flowValidator, err := validation.NewFlowValidator()
	if err != nil {
		return nil, err
	}

	metrics := engine.NewMetrics()
	pipeline := engine.NewPipeline(
		processors.DefaultSteps(vaultClient, settings, opts.Logger),
		engine.WithLeakScanner(scanner),
		engine.WithSensitiveValueProvider(opts.Provider),
		engine.WithMetrics(metrics),
		engine.WithLogger(opts.Logger),
	)

	return &Container{
		flowLoader:    config.NewFlowLoader(),
		flowValidator: flowValidator,
		vault:         vaultClient,
		pipeline:      pipeline,
		metrics:       metrics,
		formatters:    output.NewFormatterFactory(),
		settings:      settings,
		systemCfg:     systemCfg,
		logger:        opts.Logger,
	}, nil
}

func newStore(cfg system.VaultConfig, logger *slog.Logger) (vault.Store, error) {
	switch cfg.Backend {
	case system.VaultBackendMemory:
		return vault.NewMemoryStore(), nil
	case system.VaultBackendFile:
		return vault.NewFileStore(cfg.FilePath), nil
	case system.VaultBackendAzure, "":
		store, err := vault.NewKeyVaultStore(vault.KeyVaultConfig{
			DNSSuffix:   cfg.DNSSuffix,
			MaxAttempts: cfg.MaxAttempts,
			Logger:      logger,
		})
		if err != nil {
			return nil, apperrors.NewConfigurationError("vault", "cannot create key vault store", err)
		}
		return store, nil
	default:
		return nil, apperrors.NewConfigurationError("vault", fmt.Sprintf("unknown vault backend %q", cfg.Backend), nil)
	}
}

// GenerateConfigUseCase builds the generate use case for one invocation.
// An empty destination disables persistence; a blob URL uploads to Azure
// Blob Storage and anything else is a local directory.
func (c *Container) GenerateConfigUseCase(format, destination string) (*services.GenerateConfigUseCase, error) {
	formatter, err := c.formatters.Create(format)
	if err != nil {
		return nil, err
	}

	writer, err := c.artifactWriter(destination)
	if err != nil {
		return nil, err
	}

	return services.NewGenerateConfigUseCase(
		c.flowLoader,
		c.flowValidator,
		c.pipeline,
		formatter,
		writer,
		c.logger,
	), nil
}

func (c *Container) artifactWriter(destination string) (ports.ArtifactWriter, error) {
	switch {
	case destination == "":
		return nil, nil
	case storage.IsBlobLocation(destination):
		return storage.NewBlobWriter(storage.BlobWriterConfig{
			Destination: destination,
			Logger:      c.logger,
		})
	default:
		return storage.NewFileWriter(destination), nil
	}
}

// RedactFlowUseCase returns the redact use case.
func (c *Container) RedactFlowUseCase() *services.RedactFlowUseCase {
	return services.NewRedactFlowUseCase(c.flowLoader, c.flowValidator, c.pipeline, c.logger)
}

// Formatter returns the formatter registered under format.
func (c *Container) Formatter(format string) (ports.OutputFormatter, error) {
	return c.formatters.Create(format)
}

// Pipeline returns the deployment pipeline.
func (c *Container) Pipeline() *engine.Pipeline {
	return c.pipeline
}

// Metrics returns the step metrics of this run.
func (c *Container) Metrics() *engine.Metrics {
	return c.metrics
}

// Vault returns the secret vault client.
func (c *Container) Vault() *vault.Client {
	return c.vault
}

// Settings returns the resolved settings.
func (c *Container) Settings() config.Settings {
	return c.settings
}

// SystemConfig returns the system configuration.
func (c *Container) SystemConfig() *system.Config {
	return c.systemCfg
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}
