package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Upload GPG signing keys",
}

var keyPublicCmd = &cobra.Command{
	Use:   "public <file>",
	Short: "Upload the GPG public key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient().AddPublicKey(cmd.Context(), args[0])
	},
}

var keyPrivateCmd = &cobra.Command{
	Use:   "private <file>",
	Short: "Upload the GPG private key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		phrase := v.GetString("gpg_passphrase")
		if phrase == "" {
			return errors.New("passphrase required (--passphrase or GPG_PASSPHRASE)")
		}
		return newClient().AddPrivateKey(cmd.Context(), args[0], phrase)
	},
}

func init() {
	keyPrivateCmd.Flags().String("passphrase", "", "private key passphrase (env GPG_PASSPHRASE)")
	_ = v.BindPFlag("gpg_passphrase", keyPrivateCmd.Flags().Lookup("passphrase"))
	keyCmd.AddCommand(keyPublicCmd, keyPrivateCmd)
	rootCmd.AddCommand(keyCmd)
}
