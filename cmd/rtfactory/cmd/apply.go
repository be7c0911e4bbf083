package cmd

import (
	"fmt"

	"github.com/rtfactory/rtfactory/internal/app"
	"github.com/rtfactory/rtfactory/internal/plan"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a provisioning plan",
	Long:  "Create repositories, groups, users and permission targets declared in a YAML or JSON plan. Existing repositories are never overwritten.",
	Args:  cobra.NoArgs,
	RunE:  runApply,
}

func init() {
	applyCmd.Flags().String("plan", "", "plan file (env PLAN_FILE, default ./configs/plan.yaml)")
	applyCmd.Flags().Bool("force", false, "re-apply entries the journal reports as fresh")
	_ = v.BindPFlag("plan_file", applyCmd.Flags().Lookup("plan"))
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, _ []string) (err error) {
	force, _ := cmd.Flags().GetBool("force")

	pl, err := plan.Load(cfg.PlanFile)
	if err != nil {
		return err
	}

	rt, err := app.NewRuntime(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	sum, err := rt.Provisioner.Apply(cmd.Context(), pl, app.ApplyOptions{Force: force})
	for _, key := range sum.Applied {
		fmt.Fprintf(cmd.OutOrStdout(), "applied\t%s\n", key)
	}
	for _, key := range sum.Skipped {
		fmt.Fprintf(cmd.OutOrStdout(), "skipped\t%s\n", key)
	}
	return err
}
