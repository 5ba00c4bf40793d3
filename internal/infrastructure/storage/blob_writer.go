package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"
)

// BlobHostSuffix is the host suffix of Azure Blob Storage accounts.
const BlobHostSuffix = ".blob.core.windows.net"

// BlobLocation is a container and virtual directory in a storage account.
type BlobLocation struct {
	AccountName   string
	ContainerName string
	Prefix        string
}

// URL returns the https URL of blob under the location.
func (l BlobLocation) URL(blob string) string {
	return (&url.URL{
		Scheme: "https",
		Host:   l.AccountName + BlobHostSuffix,
		Path:   path.Join(l.ContainerName, l.Prefix, blob),
	}).String()
}

// ParseBlobLocation parses https://<account>.blob.core.windows.net/<container>[/<prefix>].
func ParseBlobLocation(loc string) (BlobLocation, error) {
	u, err := url.Parse(loc)
	if err != nil {
		return BlobLocation{}, fmt.Errorf("parsing location: %w", err)
	}
	if u.Scheme != "https" {
		return BlobLocation{}, fmt.Errorf("parsing location: want https:// scheme, got %q", u.Scheme)
	}
	account, ok := strings.CutSuffix(u.Host, BlobHostSuffix)
	if !ok || account == "" {
		return BlobLocation{}, fmt.Errorf("parsing location: want subdomain of %s, got %q", BlobHostSuffix, u.Host)
	}
	container, prefix, _ := strings.Cut(strings.Trim(u.Path, "/"), "/")
	if container == "" {
		return BlobLocation{}, fmt.Errorf("parsing location: want container name as first segment of path, got %q", u.Path)
	}
	return BlobLocation{AccountName: account, ContainerName: container, Prefix: prefix}, nil
}

// IsBlobLocation reports whether loc is an Azure Blob Storage location.
func IsBlobLocation(loc string) bool {
	_, err := ParseBlobLocation(loc)
	return err == nil
}

// BlobWriterConfig configures a BlobWriter.
type BlobWriterConfig struct {
	// Destination is an https location, see ParseBlobLocation
	Destination string
	// ConnectionString takes precedence over Credential when set
	ConnectionString string
	// Credential defaults to the default Azure credential chain
	Credential azcore.TokenCredential
	Logger     *slog.Logger
}

type uploadFunc func(ctx context.Context, container, blob string, data []byte) error

// BlobWriter uploads artifacts as block blobs.
type BlobWriter struct {
	loc    BlobLocation
	upload uploadFunc
	logger *slog.Logger
}

// NewBlobWriter creates a writer for the configured destination.
func NewBlobWriter(cfg BlobWriterConfig) (*BlobWriter, error) {
	loc, err := ParseBlobLocation(cfg.Destination)
	if err != nil {
		return nil, err
	}

	client, err := newServiceClient(loc, cfg)
	if err != nil {
		return nil, err
	}

	upload := func(ctx context.Context, container, blob string, data []byte) error {
		_, err := client.NewContainerClient(container).NewBlockBlobClient(blob).UploadBuffer(ctx, data, nil)
		return err
	}
	return newBlobWriter(loc, upload, cfg.Logger), nil
}

func newBlobWriter(loc BlobLocation, upload uploadFunc, logger *slog.Logger) *BlobWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &BlobWriter{loc: loc, upload: upload, logger: logger}
}

func newServiceClient(loc BlobLocation, cfg BlobWriterConfig) (*service.Client, error) {
	if cfg.ConnectionString != "" {
		client, err := service.NewClientFromConnectionString(cfg.ConnectionString, nil)
		if err != nil {
			return nil, fmt.Errorf("creating blob client with connection string: %w", err)
		}
		return client, nil
	}

	cred := cfg.Credential
	if cred == nil {
		defaultCred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("creating default Azure credential: %w", err)
		}
		cred = defaultCred
	}

	client, err := service.NewClient(fmt.Sprintf("https://%s%s/", loc.AccountName, BlobHostSuffix), cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}
	return client, nil
}

// Location returns the parsed destination.
func (w *BlobWriter) Location() BlobLocation {
	return w.loc
}

// Write uploads data as <prefix>/<name> and returns the blob URL.
func (w *BlobWriter) Write(ctx context.Context, name string, data []byte) (string, error) {
	blob := path.Join(w.loc.Prefix, name)
	w.logger.Debug("uploading artifact", "blob", blob, "bytes", len(data))

	if err := w.upload(ctx, w.loc.ContainerName, blob, data); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", blob, err)
	}
	return w.loc.URL(name), nil
}
