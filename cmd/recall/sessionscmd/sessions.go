// Package sessionscmder provides the sessions command for listing a user's
// conversation sessions.
package sessionscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aupherehq/recall/cmd/recall/wiring"
)

const sessionsLongDesc string = `List a user's sessions, most recently active first.

Examples:
  recall sessions --user u1
  recall sessions --user u1 --limit 5`

const sessionsShortDesc string = "List a user's sessions"

type sessionsCommander struct {
	userID string
	limit  int
}

func NewSessionsCmd() *cobra.Command {
	cmder := &sessionsCommander{}

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: sessionsShortDesc,
		Long:  sessionsLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.userID, "user", "u", "", "User identifier")
	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 20, "Maximum sessions to list")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func (c *sessionsCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	deps, err := wiring.Build(ctx, cmd)
	if err != nil {
		return err
	}
	defer deps.Close()

	sessions, err := deps.Store.Sessions(ctx, c.userID, c.limit)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("no sessions recorded for this user")
		return nil
	}

	for _, s := range sessions {
		fmt.Printf("%s  %3d turns  last %s\n",
			s.SessionID, s.TurnCount, s.LastTurnAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}
