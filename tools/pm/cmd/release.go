package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zostay/go-dicomweb/tools/pm/release"
)

var (
	releaseCmd = &cobra.Command{
		Use:   "release",
		Short: "Commands related to software releases",
	}

	startReleaseCmd = &cobra.Command{
		Use:   "start <version>",
		Short: "Start a release",
		Args:  cobra.ExactArgs(1),
		RunE:  StartRelease,
	}

	finishReleaseCmd = &cobra.Command{
		Use:   "finish",
		Short: "Complete the release process",
		Args:  cobra.NoArgs,
		RunE:  FinishRelease,
	}

	targetBranch string
)

func init() {
	rootCmd.AddCommand(releaseCmd)
	releaseCmd.AddCommand(startReleaseCmd)
	releaseCmd.AddCommand(finishReleaseCmd)

	releaseCmd.PersistentFlags().StringVar(&targetBranch, "target-branch", "master", "the branch to merge into during release")
}

// MakeReleaseConfig applies the command line flags to the release
// configuration.
func MakeReleaseConfig() *release.Config {
	cfg := release.DefaultConfig()
	cfg.TargetBranch = targetBranch
	cfg.Changelog = changelogFile
	return &cfg
}

func StartRelease(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	process, err := release.NewProcess(ctx, args[0], MakeReleaseConfig())
	if err != nil {
		return err
	}

	if err := process.Run(ctx, process.Start()...); err != nil {
		return err
	}

	cmd.Printf("Release branch %s is up for review.\n", process.Branch)
	return nil
}

func FinishRelease(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	process, err := release.NewProcessContinuation(ctx, MakeReleaseConfig())
	if err != nil {
		return err
	}

	if err := process.Run(ctx, process.Finish()...); err != nil {
		return err
	}

	cmd.Printf("Released %s.\n", process.Tag)
	return nil
}
