package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	syncExtensions []string
	syncMaxFiles   int
)

// syncCmd downloads every object under a prefix, preserving the relative
// path structure beneath the destination directory.
var syncCmd = &cobra.Command{
	Use:   "sync [PREFIX]",
	Short: "Download every object under a prefix",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().StringSliceVar(&syncExtensions, "ext", nil, "only download files with these extensions (e.g. .jpg,.png)")
	syncCmd.Flags().IntVar(&syncMaxFiles, "max-files", 0, "cap the number of files transferred (0 = no cap)")
}

func runSync(cmd *cobra.Command, args []string) error {
	prefix := ""
	if len(args) == 1 {
		prefix = args[0]
	}

	stats, err := fetcher.DownloadPrefix(getContext(), prefix, syncExtensions, syncMaxFiles)
	if err != nil {
		return err
	}

	fmt.Print(fetcher.Report(stats, flagBucket))

	path, err := fetcher.WriteReport(stats, flagBucket)
	if err != nil {
		return err
	}
	fmt.Printf("\nDownload report saved to: %s\n", path)

	if !stats.Success() {
		return fmt.Errorf("%d of %d downloads failed", stats.Failed, stats.Total)
	}
	return nil
}
