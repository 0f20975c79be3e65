package cmd

import (
	"time"

	"github.com/foomo/flatfileserver/pkg/flatfile"
	"github.com/foomo/flatfileserver/pkg/snapshot"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func logLevelFlag(v *viper.Viper) string {
	return v.GetString("log.level")
}

func addLogLevelFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-level", "info", "log level")
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindEnv("log.level", "LOG_LEVEL")
}

func logFormatFlag(v *viper.Viper) string {
	return v.GetString("log.format")
}

func addLogFormatFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-format", "json", "log format")
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = v.BindEnv("log.format", "LOG_FORMAT")
}

func envFileFlag(v *viper.Viper) string {
	return v.GetString("env_file")
}

func addEnvFileFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("env-file", ".env", "Optional dotenv file to load before reading the environment")
	_ = v.BindPFlag("env_file", flags.Lookup("env-file"))
}

func addressFlag(v *viper.Viper) string {
	return v.GetString("address")
}

func addAddressFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("address", ":8080", "Address to bind to (host:port)")
	_ = v.BindPFlag("address", flags.Lookup("address"))
	_ = v.BindEnv("address", "FLATFILE_ADDRESS")
}

func basePathFlag(v *viper.Viper) string {
	return v.GetString("base_path")
}

func addBasePathFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("base-path", "", "Base path to export the webserver on")
	_ = v.BindPFlag("base_path", flags.Lookup("base-path"))
	_ = v.BindEnv("base_path", "FLATFILE_BASE_PATH")
}

func dirFlag(v *viper.Viper) string {
	return v.GetString("dir")
}

func addDirFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("dir", ".", "Site root directory")
	_ = v.BindPFlag("dir", flags.Lookup("dir"))
	_ = v.BindEnv("dir", "FLATFILE_DIR")
}

// contentDirFlag falls back to the content directory below the site root
func contentDirFlag(v *viper.Viper) string {
	if dir := v.GetString("content_dir"); dir != "" {
		return dir
	}
	return flatfile.ContentDir(dirFlag(v))
}

func addContentDirFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("content-dir", "", "Content directory, defaults to <dir>/storage/content")
	_ = v.BindPFlag("content_dir", flags.Lookup("content-dir"))
	_ = v.BindEnv("content_dir", "FLATFILE_CONTENT_DIR", "KIRBY_CONTENT")
}

func baseURLFlag(v *viper.Viper) string {
	return v.GetString("base_url")
}

func addBaseURLFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("base-url", "", "Public base url of the site")
	_ = v.BindPFlag("base_url", flags.Lookup("base-url"))
	_ = v.BindEnv("base_url", "FLATFILE_BASE_URL")
}

func homeFlag(v *viper.Viper) string {
	return v.GetString("home")
}

func addHomeFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("home", "home", "Path of the page served for the empty route")
	_ = v.BindPFlag("home", flags.Lookup("home"))
	_ = v.BindEnv("home", "FLATFILE_HOME")
}

func multiLanguageFlag(v *viper.Viper) bool {
	return v.GetBool("multi_language")
}

func addMultiLanguageFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("multi-language", false, "Content file names carry a language")
	_ = v.BindPFlag("multi_language", flags.Lookup("multi-language"))
	_ = v.BindEnv("multi_language", "FLATFILE_MULTI_LANGUAGE")
}

func extensionsFlag(v *viper.Viper) []string {
	return v.GetStringSlice("extensions")
}

func addExtensionsFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.StringSlice("extensions", []string{flatfile.DefaultExtension}, "Content file extensions")
	_ = v.BindPFlag("extensions", flags.Lookup("extensions"))
	_ = v.BindEnv("extensions", "FLATFILE_EXTENSIONS")
}

func pollFlag(v *viper.Viper) bool {
	return v.GetBool("poll.enabled")
}

func addPollFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("poll", false, "If true, the content directory is polled for changes periodically")
	_ = v.BindPFlag("poll.enabled", flags.Lookup("poll"))
	_ = v.BindEnv("poll.enabled", "FLATFILE_POLL")
}

func pollIntervalFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("poll.interval")
}

func addPollIntervalFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("poll-interval", time.Minute, "Specifies the poll interval")
	_ = v.BindPFlag("poll.interval", flags.Lookup("poll-interval"))
	_ = v.BindEnv("poll.interval", "FLATFILE_POLL_INTERVAL")
}

func snapshotDirFlag(v *viper.Viper) string {
	return v.GetString("snapshot.dir")
}

func addSnapshotDirFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("snapshot-dir", "/var/lib/flatfileserver", "Where to put the site snapshots")
	_ = v.BindPFlag("snapshot.dir", flags.Lookup("snapshot-dir"))
	_ = v.BindEnv("snapshot.dir", "FLATFILE_SNAPSHOT_DIR")
}

func snapshotLimitFlag(v *viper.Viper) int {
	return v.GetInt("snapshot.limit")
}

func addSnapshotLimitFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("snapshot-limit", 2, "Number of snapshots to keep, 0 disables snapshots")
	_ = v.BindPFlag("snapshot.limit", flags.Lookup("snapshot-limit"))
	_ = v.BindEnv("snapshot.limit", "FLATFILE_SNAPSHOT_LIMIT")
}

func snapshotTypeFlag(v *viper.Viper) string {
	return v.GetString("snapshot.type")
}

func addSnapshotTypeFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("snapshot-type", snapshot.StorageTypeFilesystem, "Snapshot storage type (fs, blob)")
	_ = v.BindPFlag("snapshot.type", flags.Lookup("snapshot-type"))
	_ = v.BindEnv("snapshot.type", "FLATFILE_SNAPSHOT_TYPE")
}

func snapshotBlobBucketFlag(v *viper.Viper) string {
	return v.GetString("snapshot.blob.bucket")
}

func addSnapshotBlobBucketFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("snapshot-blob-bucket", "", "Blob bucket url, e.g. gs://my-bucket")
	_ = v.BindPFlag("snapshot.blob.bucket", flags.Lookup("snapshot-blob-bucket"))
	_ = v.BindEnv("snapshot.blob.bucket", "FLATFILE_SNAPSHOT_BLOB_BUCKET")
}

func snapshotBlobPrefixFlag(v *viper.Viper) string {
	return v.GetString("snapshot.blob.prefix")
}

func addSnapshotBlobPrefixFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("snapshot-blob-prefix", "", "Key prefix within the blob bucket")
	_ = v.BindPFlag("snapshot.blob.prefix", flags.Lookup("snapshot-blob-prefix"))
	_ = v.BindEnv("snapshot.blob.prefix", "FLATFILE_SNAPSHOT_BLOB_PREFIX")
}

func gzipLevelFlag(v *viper.Viper) int {
	return v.GetInt("gzip.level")
}

func addGzipLevelFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("gzip-level", 5, "Compression level of http responses")
	_ = v.BindPFlag("gzip.level", flags.Lookup("gzip-level"))
	_ = v.BindEnv("gzip.level", "FLATFILE_GZIP_LEVEL")
}

func gracefulPeriodFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("graceful_period")
}

func addGracefulPeriodFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("graceful-period", 0, "Period to wait before shutting down")
	_ = v.BindPFlag("graceful_period", flags.Lookup("graceful-period"))
	_ = v.BindEnv("graceful_period", "FLATFILE_GRACEFUL_PERIOD")
}

func serviceHealthzEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.healthz.enabled")
}

func addServiceHealthzEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-healthz-enabled", false, "Enable healthz service")
	_ = v.BindPFlag("service.healthz.enabled", flags.Lookup("service-healthz-enabled"))
}

func servicePrometheusEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.prometheus.enabled")
}

func addServicePrometheusEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-prometheus-enabled", false, "Enable prometheus service")
	_ = v.BindPFlag("service.prometheus.enabled", flags.Lookup("service-prometheus-enabled"))
}

func servicePProfEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.pprof.enabled")
}

func addServicePProfEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-pprof-enabled", false, "Enable pprof service")
	_ = v.BindPFlag("service.pprof.enabled", flags.Lookup("service-pprof-enabled"))
}

func otelEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("otel.enabled")
}

func addOtelEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("otel-enabled", false, "Enable otel service")
	_ = v.BindPFlag("otel.enabled", flags.Lookup("otel-enabled"))
	_ = v.BindEnv("otel.enabled", "OTEL_ENABLED")
}

func changesCountFlag(v *viper.Viper) int {
	return v.GetInt("changes.count")
}

func addChangesCountFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("count", 0, "Number of polls, 0 polls until interrupted")
	_ = v.BindPFlag("changes.count", flags.Lookup("count"))
}
