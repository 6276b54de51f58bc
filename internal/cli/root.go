// Package cli implements the s3fetch command-line tool: an independent
// client of the object store for listing buckets and objects and for batch
// downloads. It shares no state with the gateway server.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/pixvault/service/internal/downloader"
	"github.com/pixvault/service/internal/storage"
)

// logFileName is the persistent log appended to in the working directory.
const logFileName = "s3fetch.log"

var (
	flagEndpoint  string
	flagAccessKey string
	flagSecretKey string
	flagRegion    string
	flagBucket    string
	flagInsecure  bool
	flagOut       string
	flagQuiet     bool

	store   storage.ObjectStore
	fetcher *downloader.Downloader
	logger  *log.Logger
	logFile *os.File
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "s3fetch",
	Short: "Batch-download objects from an S3-compatible bucket",
	Long: `s3fetch lists and downloads objects from an S3-compatible object store.

Credentials and the target bucket can be given as flags or via the same
environment variables the gateway server reads (STORAGE_ENDPOINT,
STORAGE_ACCESS_KEY, STORAGE_SECRET_KEY, STORAGE_REGION, STORAGE_BUCKET).

Examples:
  # List accessible buckets
  s3fetch buckets

  # List objects under a prefix
  s3fetch ls --prefix images/

  # Download a single object
  s3fetch get images/cat.png

  # Download every image under a prefix, at most 50 files
  s3fetch sync images/ --ext .jpg,.png,.gif --max-files 50`,
	PersistentPreRunE: initClient,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if logFile != nil {
		logFile.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagEndpoint, "endpoint", "", "storage endpoint host:port (env STORAGE_ENDPOINT)")
	pf.StringVar(&flagAccessKey, "access-key", "", "access key (env STORAGE_ACCESS_KEY)")
	pf.StringVar(&flagSecretKey, "secret-key", "", "secret key (env STORAGE_SECRET_KEY)")
	pf.StringVar(&flagRegion, "region", "", "region (env STORAGE_REGION, default us-east-1)")
	pf.StringVar(&flagBucket, "bucket", "", "bucket name (env STORAGE_BUCKET)")
	pf.BoolVar(&flagInsecure, "insecure", false, "use plain HTTP instead of TLS")
	pf.StringVarP(&flagOut, "out", "o", "downloads", "local destination directory")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "suppress progress output (still written to "+logFileName+")")

	rootCmd.AddCommand(bucketsCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(syncCmd)
}

// initClient resolves configuration, opens the persistent log, and builds
// the storage client shared by all subcommands.
func initClient(cmd *cobra.Command, args []string) error {
	fallback(&flagEndpoint, "STORAGE_ENDPOINT")
	fallback(&flagAccessKey, "STORAGE_ACCESS_KEY")
	fallback(&flagSecretKey, "STORAGE_SECRET_KEY")
	fallback(&flagRegion, "STORAGE_REGION")
	fallback(&flagBucket, "STORAGE_BUCKET")
	if flagRegion == "" {
		flagRegion = "us-east-1"
	}

	if flagEndpoint == "" || flagAccessKey == "" || flagSecretKey == "" {
		return fmt.Errorf("storage endpoint and credentials are required (flags or STORAGE_* environment variables)")
	}
	// Every subcommand except "buckets" operates inside one bucket.
	if cmd.Name() != "buckets" && flagBucket == "" {
		return fmt.Errorf("a bucket is required (--bucket or STORAGE_BUCKET)")
	}

	f, err := os.OpenFile(logFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logFile = f

	var sink io.Writer = io.MultiWriter(os.Stdout, logFile)
	if flagQuiet {
		sink = logFile
	}
	logger = log.New(sink, "", log.LstdFlags)

	store, err = storage.NewMinioStore(storage.MinioOptions{
		Endpoint:  flagEndpoint,
		AccessKey: flagAccessKey,
		SecretKey: flagSecretKey,
		Region:    flagRegion,
		Bucket:    flagBucket,
		UseSSL:    !flagInsecure,
	})
	if err != nil {
		return fmt.Errorf("initialize storage client: %w", err)
	}

	fetcher = downloader.New(store, flagOut, logger)
	return nil
}

// fallback fills an empty flag value from the environment.
func fallback(flag *string, env string) {
	if *flag == "" {
		*flag = os.Getenv(env)
	}
}

// getContext returns the context used for backend operations.
func getContext() context.Context {
	return context.Background()
}
