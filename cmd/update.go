package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/smazurov/tf96ctl/internal/updater"
)

// releaseChecker is satisfied by *updater.Checker.
type releaseChecker interface {
	Check(ctx context.Context) (*updater.UpdateInfo, error)
}

// CreateCheckUpdateCmd creates the check-update command.
func CreateCheckUpdateCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check-update",
		Short: "Check GitHub for a newer release",
		Args:  cobra.NoArgs,
		Run: humacli.WithOptions(func(c *cobra.Command, _ []string, opts *Options) {
			checker, err := updater.NewChecker(updater.Options{
				Repository: opts.UpdateRepository,
				Prerelease: opts.UpdatePrerelease,
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()
			if err := printUpdateCheck(ctx, c.OutOrStdout(), checker); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				cancel()
				os.Exit(1)
			}
		}),
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Give up after this long")
	return cmd
}

func printUpdateCheck(ctx context.Context, w io.Writer, checker releaseChecker) error {
	info, err := checker.Check(ctx)
	if err != nil {
		return err
	}
	if !info.UpdateAvailable {
		fmt.Fprintf(w, "tf96ctl %s is up to date\n", info.CurrentVersion)
		return nil
	}
	fmt.Fprintf(w, "Update available: %s -> %s\n", info.CurrentVersion, info.LatestVersion)
	if info.ReleaseURL != "" {
		fmt.Fprintln(w, info.ReleaseURL)
	}
	return nil
}
