package cmd

import "github.com/spf13/cobra"

var (
	rootCmd = &cobra.Command{
		Use:          "pm",
		Short:        "Project management tools for go-dicomweb",
		SilenceUsage: true,
	}

	changelogFile string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&changelogFile, "changelog", "Changes.md", "the change log file")
}

// Execute runs the pm command.
func Execute() error {
	return rootCmd.Execute()
}
