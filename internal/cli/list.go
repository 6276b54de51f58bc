package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	lsPrefix string
	lsMax    int
)

// lsCmd lists objects in the configured bucket.
var lsCmd = &cobra.Command{
	Use:     "ls",
	Short:   "List objects in the bucket",
	Aliases: []string{"list"},
	Args:    cobra.NoArgs,
	RunE:    runLs,
}

func init() {
	lsCmd.Flags().StringVar(&lsPrefix, "prefix", "", "only list keys starting with this prefix")
	lsCmd.Flags().IntVar(&lsMax, "max", 1000, "maximum number of objects to list")
}

func runLs(cmd *cobra.Command, args []string) error {
	objects, err := fetcher.ListObjects(getContext(), lsPrefix, lsMax)
	if err != nil {
		return err
	}

	if len(objects) == 0 {
		fmt.Printf("No objects found in bucket %q with prefix %q\n", flagBucket, lsPrefix)
		return nil
	}

	fmt.Printf("Objects in bucket %q:\n", flagBucket)
	for _, obj := range objects {
		fmt.Printf("  %-60s %10s  %s\n",
			obj.Key,
			humanize.IBytes(uint64(obj.Size)),
			obj.LastModified.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Total: %d objects\n", len(objects))
	return nil
}
