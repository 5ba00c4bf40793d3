package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	apperrors "github.com/Microsoft/data-accelerator/internal/application/errors"
	"github.com/Microsoft/data-accelerator/internal/application/ports"
	"github.com/Microsoft/data-accelerator/internal/domain/entities"
	domainservices "github.com/Microsoft/data-accelerator/internal/domain/services"
	"github.com/Microsoft/data-accelerator/internal/domain/values"
	"github.com/Microsoft/data-accelerator/internal/infrastructure/config"
)

// TimePartitionTemplate is appended to blob and local output folders. The
// runtime expands the strftime fields and the bucket placeholders per batch.
const TimePartitionTemplate = "%Y/%m/%d/%H/${quarterBucket}/${minuteBucket}"

// Placeholders written when a blob connection string lacks a field. They
// are stored verbatim so the deployment still succeeds; the job fails later
// with a readable storage error.
const (
	missingAccountName = "The connectionString does not have AccountName"
	missingAccountKey  = "The connectionString does not have AccountKey"
)

var (
	accountNamePattern = regexp.MustCompile(`AccountName=(.*);AccountKey`)
	accountKeyPattern  = regexp.MustCompile(`AccountKey=(.*);EndpointSuffix`)
)

// OutputResolver turns authored output declarations into the per-group
// runtime sink specs of a flow.
type OutputResolver struct {
	vault    ports.SecretVault
	settings config.Settings
	logger   *slog.Logger
}

// NewOutputResolver creates an output resolver.
func NewOutputResolver(vault ports.SecretVault, settings config.Settings, logger *slog.Logger) *OutputResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &OutputResolver{
		vault:    vault,
		settings: settings,
		logger:   logger,
	}
}

// Resolve groups the declarations referenced by rules and resolves each
// group member into its slot of the group's spec. Groups come back in the
// order rules first name them.
//
// Blob outputs write two secrets to the runtime vault: the folder path
// (content-addressed under <flow>-output) and the account key under
// datax-sa-<account>, overwriting the key of any earlier flow using the same
// account. Writes already made are not rolled back when a later member fails.
func (r *OutputResolver) Resolve(ctx context.Context, flowName string, outputs []entities.FlowGuiOutput, pairs []entities.RuleOutput) ([]entities.FlowOutputSpec, error) {
	referenced := domainservices.ReferencedOutputs(outputs, pairs)
	declared := make(map[string]bool, len(referenced))
	for id := range referenced {
		declared[id] = true
	}

	groups := domainservices.GroupRuleOutputs(pairs, declared)
	specs := make([]entities.FlowOutputSpec, 0, len(groups))

	for _, group := range groups {
		spec := entities.FlowOutputSpec{Name: group.Name}
		for _, id := range group.Members {
			if err := r.resolveMember(ctx, flowName, &spec, referenced[id]); err != nil {
				return nil, err
			}
		}
		specs = append(specs, spec)
	}

	return specs, nil
}

func (r *OutputResolver) resolveMember(ctx context.Context, flowName string, spec *entities.FlowOutputSpec, out entities.FlowGuiOutput) error {
	outputType, err := values.ParseOutputType(out.Type)
	if err != nil || outputType == values.OutputHTTP {
		return apperrors.NewNotSupportedError(spec.Name, fmt.Sprintf("%s output type not supported", out.Type))
	}

	switch outputType {
	case values.OutputCosmosDB:
		if spec.CosmosDbOutput != nil {
			return duplicateSlot(spec.Name, "cosmosDB")
		}
		spec.CosmosDbOutput = resolveCosmosDB(out)

	case values.OutputEventHub:
		if spec.EventHubOutput != nil {
			return duplicateSlot(spec.Name, "eventHub/metric")
		}
		spec.EventHubOutput = resolveEventHub(out)

	case values.OutputMetric:
		return r.resolveMetric(flowName, spec, out)

	case values.OutputBlob:
		if spec.BlobOutput != nil {
			return duplicateSlot(spec.Name, "blob")
		}
		blob, err := r.resolveBlob(ctx, flowName, out)
		if err != nil {
			return err
		}
		spec.BlobOutput = blob

	case values.OutputLocal:
		if spec.BlobOutput != nil {
			return duplicateSlot(spec.Name, "blob")
		}
		spec.BlobOutput = resolveLocal(out)
	}

	return nil
}

func (r *OutputResolver) resolveMetric(flowName string, spec *entities.FlowOutputSpec, out entities.FlowGuiOutput) error {
	if r.settings.IsLocal() {
		if r.settings.LocalMetricsHTTPEndpoint == "" {
			r.logger.Debug("local metrics endpoint not configured, metric output dropped", "flow", flowName, "output", out.ID)
			return nil
		}
		if spec.HTTPOutput != nil {
			return duplicateSlot(spec.Name, "httppost/metric")
		}
		if out.Properties == nil {
			return nil
		}
		spec.HTTPOutput = &entities.HTTPOutputSpec{
			Endpoint: r.settings.LocalMetricsHTTPEndpoint,
			Filter:   "",
			Headers: map[string]string{
				"Content-Type": "application/json",
				"jobName":      flowName,
			},
		}
		return nil
	}

	if spec.EventHubOutput != nil {
		return duplicateSlot(spec.Name, "eventHub/metric")
	}
	if out.Properties == nil {
		return nil
	}
	if r.settings.RuntimeKeyVaultName == "" || r.settings.MetricEventHubConnectionKey == "" {
		return apperrors.NewConfigurationError("metrics",
			"runtime_keyvault_name and metric_eventhub_connection_key are required for metric outputs", nil)
	}
	spec.EventHubOutput = &entities.EventHubOutputSpec{
		ConnectionStringRef: r.vault.ComposeURI(r.settings.RuntimeKeyVaultName, r.settings.MetricEventHubConnectionKey),
		CompressionType:     "none",
		Format:              "json",
	}
	return nil
}

func (r *OutputResolver) resolveBlob(ctx context.Context, flowName string, out entities.FlowGuiOutput) (*entities.BlobOutputSpec, error) {
	if out.Properties == nil {
		return nil, nil
	}
	vaultName, err := r.settings.RequireRuntimeVault()
	if err != nil {
		return nil, apperrors.NewConfigurationError("vault", "blob outputs need a runtime vault", err)
	}

	connectionString, err := r.vault.Resolve(ctx, out.Properties.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("resolving connection string of output %s: %w", out.ID, err)
	}

	accountName := parseAccountName(connectionString)
	accountKey := parseAccountKey(connectionString)
	if accountName == missingAccountName || accountKey == missingAccountKey {
		r.logger.Warn("blob connection string is malformed, storing placeholder", "flow", flowName, "output", out.ID)
	}

	folder := BlobFolder(r.settings.BlobScheme, r.settings.BlobDomain, out.Properties.ContainerName, accountName, out.Properties.BlobPrefix)
	folderRef, err := r.vault.Save(ctx, vaultName, flowName+"-output", folder, true)
	if err != nil {
		return nil, err
	}
	if _, err := r.vault.Save(ctx, vaultName, "datax-sa-"+accountName, accountKey, false); err != nil {
		return nil, err
	}

	return &entities.BlobOutputSpec{
		CompressionType: out.Properties.CompressionType,
		Format:          out.Properties.Format,
		Groups:          entities.BlobOutputGroups{Main: entities.BlobOutputMain{Folder: folderRef}},
	}, nil
}

// BlobFolder renders the time-partitioned folder of a blob output.
func BlobFolder(scheme, domain, container, account, prefix string) string {
	return scheme + "://" + container + "@" + account + "." + domain + "/" + prefix + "/" + TimePartitionTemplate
}

func resolveCosmosDB(out entities.FlowGuiOutput) *entities.CosmosDbOutputSpec {
	if out.Properties == nil {
		return nil
	}
	return &entities.CosmosDbOutputSpec{
		ConnectionStringRef: out.Properties.ConnectionString,
		Database:            out.Properties.Db,
		Collection:          out.Properties.Collection,
	}
}

func resolveEventHub(out entities.FlowGuiOutput) *entities.EventHubOutputSpec {
	if out.Properties == nil {
		return nil
	}
	return &entities.EventHubOutputSpec{
		ConnectionStringRef: out.Properties.ConnectionString,
		CompressionType:     out.Properties.CompressionType,
		Format:              out.Properties.Format,
	}
}

func resolveLocal(out entities.FlowGuiOutput) *entities.BlobOutputSpec {
	if out.Properties == nil {
		return nil
	}
	folder := strings.TrimRight(out.Properties.ConnectionString, "/") + "/" + TimePartitionTemplate
	return &entities.BlobOutputSpec{
		CompressionType: out.Properties.CompressionType,
		Format:          out.Properties.Format,
		Groups:          entities.BlobOutputGroups{Main: entities.BlobOutputMain{Folder: folder}},
	}
}

func duplicateSlot(group, kind string) error {
	return apperrors.NewNotSupportedError(group, fmt.Sprintf("Multiple target %s output for same dataset not supported", kind))
}

func parseAccountName(connectionString string) string {
	if m := accountNamePattern.FindStringSubmatch(connectionString); m != nil {
		return m[1]
	}
	return missingAccountName
}

func parseAccountKey(connectionString string) string {
	if m := accountKeyPattern.FindStringSubmatch(connectionString); m != nil {
		return m[1]
	}
	return missingAccountKey
}
