package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/leadmate/leadmate/internal/audit"
	"github.com/leadmate/leadmate/internal/store"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the audit trail",
	RunE:  runAudit,
}

func init() {
	auditCmd.Flags().StringP("workspace", "w", "", "Filter by workspace id")
	auditCmd.Flags().String("actor-id", "", "Filter by actor user id")
	auditCmd.Flags().String("action", "", "Filter by action (proposed, executed)")
	auditCmd.Flags().Int("limit", 30, "Maximum number of entries to show")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	workspace, _ := cmd.Flags().GetString("workspace")
	actorID, _ := cmd.Flags().GetString("actor-id")
	action, _ := cmd.Flags().GetString("action")
	limit, _ := cmd.Flags().GetInt("limit")

	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	entries, err := rt.audit.List(context.Background(), store.AuditFilter{
		WorkspaceID: workspace,
		ActorUserID: actorID,
		Action:      action,
		Limit:       limit,
	})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nenhum registro de auditoria.")
		return nil
	}

	for _, e := range entries {
		var actionStr string
		if e.Action == audit.ActionExecuted {
			actionStr = color.GreenString(e.Action)
		} else {
			actionStr = color.CyanString(e.Action)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-9s  actor=%s  %s/%s  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), actionStr,
			e.ActorUserID, e.EntityType, e.EntityID, e.Metadata)
	}
	return nil
}
