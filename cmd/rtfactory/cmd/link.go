package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Resolve download links",
}

var lastModifiedCmd = &cobra.Command{
	Use:   "last-modified <repo> <path>",
	Short: "Print the download URL of the most recently modified artifact under path",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		link, err := newClient().LinkToLastModified(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), link)
		return nil
	},
}

var lastVersionCmd = &cobra.Command{
	Use:   "last-version <repo> <path>",
	Short: "Print the download URL of the artifact with the highest version under path",
	Long:  "Print the download URL of the artifact with the highest version under path. Needs an API key; anonymous queries may miss artifacts.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		link, err := newClient().LinkToLastVersion(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), link)
		return nil
	},
}

func init() {
	linkCmd.AddCommand(lastModifiedCmd, lastVersionCmd)
	rootCmd.AddCommand(linkCmd)
}
