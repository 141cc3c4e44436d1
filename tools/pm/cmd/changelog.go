package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zostay/go-dicomweb/tools/pm/changes"
)

var (
	changelogCmd = &cobra.Command{
		Use:   "changelog",
		Short: "Commands related to change logs",
	}

	lintChangelogCmd = &cobra.Command{
		Use:   "lint",
		Short: "Check the changelog file for problems",
		Args:  cobra.NoArgs,
		RunE:  LintChangelog,
	}

	extractChangelogCmd = &cobra.Command{
		Use:   "extract <version>",
		Short: "Extract the bullets for the changelog section for the given version",
		Args:  cobra.ExactArgs(1),
		RunE:  ExtractChangelog,
	}

	lintMode string
)

var lintModes = map[string]changes.CheckMode{
	"standard":    changes.CheckStandard,
	"pre-release": changes.CheckPreRelease,
	"release":     changes.CheckRelease,
}

func init() {
	rootCmd.AddCommand(changelogCmd)
	changelogCmd.AddCommand(lintChangelogCmd)
	changelogCmd.AddCommand(extractChangelogCmd)

	lintChangelogCmd.Flags().StringVarP(&lintMode, "mode", "m", "standard", "one of standard, pre-release, or release")
}

func LintChangelog(_ *cobra.Command, _ []string) error {
	mode, ok := lintModes[lintMode]
	if !ok {
		return fmt.Errorf("unknown lint mode %q", lintMode)
	}

	changelog, err := os.Open(changelogFile)
	if err != nil {
		return fmt.Errorf("unable to open change log: %w", err)
	}
	defer func() { _ = changelog.Close() }()

	return changes.NewLinter(changelog, mode).Check()
}

func ExtractChangelog(cmd *cobra.Command, args []string) error {
	r, err := changes.ExtractSectionFile(changelogFile, args[0])
	if err != nil {
		return fmt.Errorf("failed to read changelog section: %w", err)
	}

	_, err = io.Copy(cmd.OutOrStdout(), r)
	return err
}
