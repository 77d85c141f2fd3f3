package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/leadmate/leadmate/internal/store"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List your pending actions",
	RunE:  runActions,
}

func init() {
	actionsCmd.Flags().StringP("workspace", "w", "", "Workspace id")
	actionsCmd.Flags().StringP("actor", "a", "", "Manager auth id")
	actionsCmd.Flags().String("status", store.StatusPending, "Filter by status (pending, executed, empty for all)")
	actionsCmd.Flags().Int("limit", 20, "Maximum number of actions to show")
	rootCmd.AddCommand(actionsCmd)
}

func runActions(cmd *cobra.Command, args []string) error {
	workspace, _ := cmd.Flags().GetString("workspace")
	actor, _ := cmd.Flags().GetString("actor")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")
	if workspace == "" || actor == "" {
		return fmt.Errorf("--workspace and --actor are required")
	}

	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := context.Background()
	actorID, err := rt.backend.ResolveActor(ctx, workspace, actor)
	if err != nil {
		return fmt.Errorf("resolve actor: %w", err)
	}

	actions, err := rt.store.ListPendingActions(ctx, workspace, actorID, status, limit)
	if err != nil {
		return err
	}
	if len(actions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nenhuma ação encontrada.")
		return nil
	}

	for _, a := range actions {
		var statusStr string
		if a.Status == store.StatusPending {
			statusStr = color.YellowString(a.Status)
		} else {
			statusStr = color.GreenString(a.Status)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  [%s]  %s  %s\n",
			a.ID, statusStr, a.ActionType, a.Preview)
	}
	return nil
}
