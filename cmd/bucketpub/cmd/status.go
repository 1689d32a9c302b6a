package cmd

import (
	"github.com/bianoble/bucketpub/internal/engine"
	"github.com/bianoble/bucketpub/internal/source"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what a publish run would upload, without network access",
	Long: `Diffs the source directory against the content-hash cache: files the next
publish would upload as new or changed, and cached keys whose local file is
gone (candidates for --sync deletion). The bucket itself is never queried,
so remote drift from outside this tool is not visible here.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		gzipRule, err := newGzipRule(cfg)
		if err != nil {
			return err
		}

		files, err := source.Walk(cmd.Context(), cfg.Source)
		if err != nil {
			return err
		}

		// Run the same pre-pass as publish so keys and fingerprints line up
		// with what the cache records.
		for _, f := range files {
			if err := gzipRule.Apply(f); err != nil {
				return err
			}
		}

		st := engine.Status(files, newCache(cfg), cfg.Prefix)

		for _, key := range st.New {
			info("  new        %s", key)
		}
		for _, key := range st.Changed {
			info("  changed    %s", key)
		}
		for _, key := range st.Unchanged {
			detail("unchanged  %s", key)
		}
		for _, key := range st.Missing {
			info("  missing    %s (deleted by publish --sync)", key)
		}

		info("")
		info("Status: %d new, %d changed, %d unchanged, %d missing locally.",
			len(st.New), len(st.Changed), len(st.Unchanged), len(st.Missing))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
