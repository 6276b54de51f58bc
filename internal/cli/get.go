package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pixvault/service/internal/storage"
)

var getLocalPath string

// getCmd downloads a single object.
var getCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Download a single object",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	getCmd.Flags().StringVar(&getLocalPath, "path", "", "local file path (defaults to <out>/<key base name>)")
}

func runGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	if err := fetcher.DownloadFile(getContext(), key, getLocalPath); err != nil {
		if storage.IsNotFound(err) {
			return fmt.Errorf("object %q not found in bucket %q", key, flagBucket)
		}
		return err
	}

	fmt.Printf("Successfully downloaded %s\n", key)
	return nil
}
