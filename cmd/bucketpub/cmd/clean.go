package cmd

import (
	"github.com/bianoble/bucketpub/internal/publish"
	"github.com/bianoble/bucketpub/internal/source"
	"github.com/spf13/cobra"
)

var cleanDryRun bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete remote objects that have no local counterpart",
	Long: `Lists the bucket under the configured prefix and deletes every object that
neither maps to a file in the source directory nor matches the whitelist.
Nothing is uploaded. Deletions are issued in bounded batches; on a batch
failure the remaining batches are abandoned.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		eng, err := newEngine(cfg, publish.Options{})
		if err != nil {
			return err
		}

		files, err := source.Walk(cmd.Context(), cfg.Source)
		if err != nil {
			return err
		}

		// Local files define the keep set, after the same key rewriting a
		// publish run would do.
		keep := make(map[string]bool, len(files))
		for _, f := range files {
			if err := eng.Gzip.Apply(f); err != nil {
				return err
			}
			keep[cfg.Prefix+f.Key] = true
		}

		deleted, err := eng.Clean(cmd.Context(), keep, cleanDryRun)
		if err != nil {
			return err
		}

		if cleanDryRun {
			info("Dry run — nothing deleted.")
			for _, key := range deleted {
				info("  would delete  %s", key)
			}
		} else {
			for _, key := range deleted {
				info("  delete  %s", key)
			}
		}

		info("")
		info("Clean complete: %d object(s).", len(deleted))
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "show what would be deleted without deleting")
	rootCmd.AddCommand(cleanCmd)
}
