package cmd

import (
	"fmt"

	"promptpack/pkg/version"

	"github.com/spf13/cobra"
)

// versionCmd prints build information. The --short flag prints only the
// version number, for use in scripts.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the version of promptpack",
	RunE: func(cmd *cobra.Command, args []string) error {
		short, err := cmd.Flags().GetBool("short")
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}

		v := version.Get()
		if short {
			fmt.Fprintln(cmd.OutOrStdout(), v.Version)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), v.String())
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print the version number only")
	RootCmd.AddCommand(versionCmd)
}
