package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/leadmate/leadmate/internal/assistant"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Send one message to the assistant",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringP("message", "m", "", "Message to send")
	chatCmd.Flags().StringP("workspace", "w", "", "Workspace id")
	chatCmd.Flags().StringP("actor", "a", "", "Manager auth id")
	chatCmd.Flags().StringP("conversation", "c", "cli:default", "Conversation id")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	message, _ := cmd.Flags().GetString("message")
	workspace, _ := cmd.Flags().GetString("workspace")
	actor, _ := cmd.Flags().GetString("actor")
	conversation, _ := cmd.Flags().GetString("conversation")
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("--message is required")
	}
	if workspace == "" || actor == "" {
		return fmt.Errorf("--workspace and --actor are required")
	}

	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	resp, err := rt.assistant.RunTurn(context.Background(), &assistant.Request{
		WorkspaceID:    workspace,
		ActorAuthID:    actor,
		ConversationID: conversation,
		Message:        message,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
	if resp.Pending != nil {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("Para confirmar: leadmate confirm %s -w %s -a %s -c %s",
			resp.Pending.ID, workspace, actor, conversation))
	}
	return nil
}
