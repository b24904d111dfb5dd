// Package recallcmder provides the recall root command.
package recallcmder

import (
	"github.com/spf13/cobra"

	contextcmder "github.com/aupherehq/recall/cmd/recall/contextcmd"
	seedcmder "github.com/aupherehq/recall/cmd/recall/seedcmd"
	sessionscmder "github.com/aupherehq/recall/cmd/recall/sessionscmd"
	turnscmder "github.com/aupherehq/recall/cmd/recall/turnscmd"
	versioncmder "github.com/aupherehq/recall/cmd/recall/versioncmd"
)

const recallLongDesc string = `Recall is the conversation memory core for the Auphere agent.

Inspect and exercise the memory subsystem:
  recall context    Assemble the context snapshot for a session
  recall turns      List a session's stored turns
  recall sessions   List a user's sessions
  recall seed       Seed demo turns into the configured store`

const recallShortDesc string = "Recall - Conversation Memory"

func NewRecallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recall",
		Short: recallShortDesc,
		Long:  recallLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringP("config-dir", "c", "", "Config directory (default ~/.recall)")
	cmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")

	// Add subcommands
	cmd.AddCommand(contextcmder.NewContextCmd())
	cmd.AddCommand(turnscmder.NewTurnsCmd())
	cmd.AddCommand(sessionscmder.NewSessionsCmd())
	cmd.AddCommand(seedcmder.NewSeedCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
