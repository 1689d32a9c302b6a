package cmd

import (
	"fmt"

	"github.com/bianoble/bucketpub/internal/publish"
	"github.com/bianoble/bucketpub/internal/source"
	"github.com/spf13/cobra"
)

var (
	publishForce      bool
	publishCreateOnly bool
	publishDryRun     bool
	publishSync       bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the source directory to the bucket",
	Long: `Walks the configured source directory and uploads every file whose content
changed since the last run, consulting the content-hash cache first and the
bucket second. With --sync, remote objects under the prefix that no local
file accounts for are deleted afterwards, except whitelisted keys.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		eng, err := newEngine(cfg, publish.Options{
			Force:      publishForce,
			CreateOnly: publishCreateOnly,
			Simulate:   publishDryRun,
		})
		if err != nil {
			return err
		}

		files, err := source.Walk(cmd.Context(), cfg.Source)
		if err != nil {
			return err
		}
		info("Publishing %d files from %s to %s", len(files), cfg.Source, cfg.Bucket)

		result, err := eng.Run(cmd.Context(), files, publishSync)
		if err != nil {
			return err
		}

		if publishDryRun {
			info("Dry run — nothing uploaded or deleted.")
			for _, f := range result.Simulated {
				info("  would publish  %s", f.Key)
			}
		}
		for _, f := range result.Created {
			info("  create  %s", f.Key)
		}
		for _, f := range result.Updated {
			info("  update  %s", f.Key)
		}
		for _, f := range result.Skipped {
			detail("skip    %s", f.Key)
		}
		for _, f := range result.CacheHits {
			detail("cached  %s", f.Key)
		}
		for _, f := range result.Deleted {
			info("  delete  %s", f.Key)
		}
		for _, e := range result.Errors {
			errorf("%s", e)
		}

		info("")
		info("Publish complete: %d uploaded, %d unchanged, %d deleted, %d errors.",
			result.Uploaded(), result.Unchanged(), len(result.Deleted), len(result.Errors))

		if len(result.Errors) > 0 {
			return fmt.Errorf("%d file(s) failed", len(result.Errors))
		}
		return nil
	},
}

func init() {
	publishCmd.Flags().BoolVar(&publishForce, "force", false, "re-upload files even when unchanged")
	publishCmd.Flags().BoolVar(&publishCreateOnly, "create-only", false, "never overwrite existing remote objects")
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "classify files without touching the bucket")
	publishCmd.Flags().BoolVar(&publishSync, "sync", false, "delete remote objects with no local counterpart")
	rootCmd.AddCommand(publishCmd)
}
