package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/foomo/flatfileserver/pkg/handler"
	"github.com/foomo/flatfileserver/pkg/metrics"
	"github.com/foomo/flatfileserver/pkg/site"
	"github.com/foomo/flatfileserver/pkg/snapshot"
	"github.com/foomo/keel"
	"github.com/foomo/keel/healthz"
	"github.com/foomo/keel/net/http/middleware"
	"github.com/foomo/keel/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func NewServeCommand() *cobra.Command {
	v := newViper()
	// TODO: When keel is updated, set it in the correct place
	service.DefaultHTTPPProfAddr = ":6060"

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start http server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svr := keel.NewServer(
				keel.WithHTTPPrometheusService(servicePrometheusEnabledFlag(v)),
				keel.WithHTTPHealthzService(serviceHealthzEnabledFlag(v)),
				keel.WithPrometheusMeter(servicePrometheusEnabledFlag(v)),
				keel.WithGracefulPeriod(gracefulPeriodFlag(v)),
				keel.WithOTLPGRPCTracer(otelEnabledFlag(v)),
				keel.WithHTTPPProfService(servicePProfEnabledFlag(v)),
			)

			l := svr.Logger()

			s := newSite(l, v,
				site.WithPoll(pollFlag(v)),
				site.WithPollInterval(pollIntervalFlag(v)),
			)

			handlerOpts := []handler.HTTPOption{handler.WithPath(basePathFlag(v))}

			if snapshotLimitFlag(v) > 0 {
				storage, err := createStorage(cmd.Context(), v, l)
				if err != nil {
					return fmt.Errorf("failed to create storage: %w", err)
				}

				history, err := snapshot.New(l.Named("inst.snapshot"),
					snapshot.WithStorage(storage),
					snapshot.WithLimit(snapshotLimitFlag(v)),
				)
				if err != nil {
					return fmt.Errorf("failed to create snapshot history: %w", err)
				}

				s.OnLoaded(func() {
					if err := history.Persist(context.Background(), s); err != nil {
						metrics.SnapshotPersistFailedCounter.WithLabelValues().Inc()
						l.Error("failed to persist snapshot", zap.Error(err))
					}
				})

				svr.AddClosers(func(ctx context.Context) error {
					return history.Close()
				})

				handlerOpts = append(handlerOpts, handler.WithHistory(history))
			}

			isLoadedHealtherFn := healthz.NewHealthzerFn(func(ctx context.Context) error {
				if !s.Loaded() {
					return errors.New("site not loaded yet")
				}
				return nil
			})
			// start initial load and handle error
			svr.AddStartupHealthzers(isLoadedHealtherFn)
			svr.AddReadinessHealthzers(isLoadedHealtherFn)

			svr.AddServices(
				service.NewGoRoutine(l.Named("go.site"), "site", func(ctx context.Context, l *zap.Logger) error {
					return s.Start(ctx)
				}),
				service.NewHTTP(l.Named("svc.http"), "http", addressFlag(v),
					handler.NewHTTP(l.Named("inst.handler"), s, handlerOpts...),
					middleware.Telemetry(),
					middleware.Logger(),
					middleware.GZip(middleware.GZipWithLevel(gzipLevelFlag(v))),
					middleware.Recover(),
				),
			)

			svr.Run()
			return nil
		},
	}

	flags := cmd.Flags()
	addSiteFlags(flags, v)
	addAddressFlag(flags, v)
	addBasePathFlag(flags, v)
	addPollFlag(flags, v)
	addPollIntervalFlag(flags, v)
	addSnapshotDirFlag(flags, v)
	addSnapshotLimitFlag(flags, v)
	addSnapshotTypeFlag(flags, v)
	addSnapshotBlobBucketFlag(flags, v)
	addSnapshotBlobPrefixFlag(flags, v)
	addGracefulPeriodFlag(flags, v)
	addOtelEnabledFlag(flags, v)
	addServiceHealthzEnabledFlag(flags, v)
	addServicePrometheusEnabledFlag(flags, v)
	addServicePProfEnabledFlag(flags, v)
	addGzipLevelFlag(flags, v)

	return cmd
}

// supportedBlobSchemes lists the URL schemes supported by blob storage
var supportedBlobSchemes = []string{"gs://", "s3://", "azblob://"}

// createStorage creates a snapshot storage based on the configuration
func createStorage(ctx context.Context, v *viper.Viper, l *zap.Logger) (snapshot.Storage, error) {
	storageType := snapshotTypeFlag(v)
	blobBucket := snapshotBlobBucketFlag(v)
	blobPrefix := snapshotBlobPrefixFlag(v)

	// Warn about ignored blob config
	if storageType != snapshot.StorageTypeBlob && (blobBucket != "" || blobPrefix != "") {
		l.Warn("blob storage flags are set but snapshot-type is not 'blob'; blob config will be ignored",
			zap.String("snapshot-type", storageType),
			zap.String("blob-bucket", blobBucket),
			zap.String("blob-prefix", blobPrefix),
		)
	}

	l.Info("creating snapshot storage", zap.String("type", storageType))

	switch storageType {
	case snapshot.StorageTypeBlob:
		if blobBucket == "" {
			return nil, fmt.Errorf("blob bucket URL is required when snapshot-type is 'blob' (supported schemes: gs://, s3://, azblob://)")
		}
		if !isValidBlobScheme(blobBucket) {
			return nil, fmt.Errorf("unsupported blob storage URL scheme in %q; supported schemes: gs://, s3://, azblob://", blobBucket)
		}
		l.Info("using blob storage",
			zap.String("bucket", blobBucket),
			zap.String("prefix", blobPrefix),
			zap.String("provider", detectBlobProvider(blobBucket)),
		)
	case snapshot.StorageTypeFilesystem, "":
		l.Info("using filesystem storage", zap.String("dir", snapshotDirFlag(v)))
	default:
		return nil, fmt.Errorf("unknown snapshot storage type: %s (supported: fs, blob)", storageType)
	}

	return snapshot.NewStorage(ctx, storageType, snapshotDirFlag(v), blobBucket, blobPrefix)
}

// isValidBlobScheme checks if the bucket URL has a supported scheme
func isValidBlobScheme(bucketURL string) bool {
	for _, scheme := range supportedBlobSchemes {
		if strings.HasPrefix(bucketURL, scheme) {
			return true
		}
	}
	return false
}

// detectBlobProvider returns a human-readable provider name from the URL scheme
func detectBlobProvider(bucketURL string) string {
	switch {
	case strings.HasPrefix(bucketURL, "gs://"):
		return "Google Cloud Storage"
	case strings.HasPrefix(bucketURL, "s3://"):
		return "AWS S3"
	case strings.HasPrefix(bucketURL, "azblob://"):
		return "Azure Blob Storage"
	default:
		return "unknown"
	}
}
