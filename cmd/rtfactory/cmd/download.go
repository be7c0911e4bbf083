package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download <url> <dest>",
	Short: "Download a file, replacing dest if it exists",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := newClient().DownloadFile(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Downloaded %d bytes to %s\n", n, args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}
