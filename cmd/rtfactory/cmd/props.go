package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var propsCmd = &cobra.Command{
	Use:   "props",
	Short: "Manage artifact properties",
}

var propsSetCmd = &cobra.Command{
	Use:   "set <repo> <path> <key=v1,v2>...",
	Short: "Set properties on an artifact or, recursively, a folder",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		props, err := parseProperties(args[2:])
		if err != nil {
			return err
		}
		return newClient().AddProperties(cmd.Context(), args[0], args[1], props)
	},
}

func init() {
	propsCmd.AddCommand(propsSetCmd)
	rootCmd.AddCommand(propsCmd)
}

// parseProperties turns "key=v1,v2" arguments into a property map. Repeated keys accumulate.
func parseProperties(args []string) (map[string][]string, error) {
	props := make(map[string][]string, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid property %q (expected key=value[,value])", arg)
		}
		for _, val := range strings.Split(raw, ",") {
			props[key] = append(props[key], strings.TrimSpace(val))
		}
	}
	return props, nil
}
