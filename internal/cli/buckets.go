package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// bucketsCmd lists every bucket accessible with the configured credentials.
var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "List accessible buckets",
	Args:  cobra.NoArgs,
	RunE:  runBuckets,
}

func runBuckets(cmd *cobra.Command, args []string) error {
	buckets, err := store.Buckets(getContext())
	if err != nil {
		return fmt.Errorf("list buckets: %w", err)
	}

	if len(buckets) == 0 {
		fmt.Println("No accessible buckets")
		return nil
	}

	fmt.Printf("Available buckets (%d):\n", len(buckets))
	for _, b := range buckets {
		fmt.Printf("  - %s (created %s)\n", b.Name, humanize.Time(b.CreatedAt))
	}
	return nil
}
