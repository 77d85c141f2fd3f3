package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/leadmate/leadmate/internal/assistant"
)

var confirmCmd = &cobra.Command{
	Use:   "confirm <action-id>",
	Short: "Confirm and execute a pending action",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfirm,
}

func init() {
	confirmCmd.Flags().StringP("workspace", "w", "", "Workspace id")
	confirmCmd.Flags().StringP("actor", "a", "", "Manager auth id")
	confirmCmd.Flags().StringP("conversation", "c", "cli:default", "Conversation id")
	rootCmd.AddCommand(confirmCmd)
}

func runConfirm(cmd *cobra.Command, args []string) error {
	workspace, _ := cmd.Flags().GetString("workspace")
	actor, _ := cmd.Flags().GetString("actor")
	conversation, _ := cmd.Flags().GetString("conversation")
	if workspace == "" || actor == "" {
		return fmt.Errorf("--workspace and --actor are required")
	}

	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	action, err := rt.assistant.ExecutePendingAction(context.Background(), &assistant.ConfirmRequest{
		ActionID:       args[0],
		WorkspaceID:    workspace,
		ActorAuthID:    actor,
		ConversationID: conversation,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Executado: %s", action.Preview))
	fmt.Fprintf(cmd.OutOrStdout(), "Resultado: %s\n", action.ExecutedResult)
	return nil
}
