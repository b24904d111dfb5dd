// Package turnscmder provides the turns command for listing a session's
// stored turns.
package turnscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aupherehq/recall/cmd/recall/wiring"
	"github.com/aupherehq/recall/pkg/utils"
)

const turnsLongDesc string = `List the stored turns of a session, oldest first.

Examples:
  recall turns --session s1
  recall turns --session s1 --limit 20`

const turnsShortDesc string = "List a session's turns"

type turnsCommander struct {
	sessionID string
	limit     int
}

func NewTurnsCmd() *cobra.Command {
	cmder := &turnsCommander{}

	cmd := &cobra.Command{
		Use:   "turns",
		Short: turnsShortDesc,
		Long:  turnsLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.sessionID, "session", "s", "", "Session identifier")
	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 50, "Maximum turns to list")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func (c *turnsCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	deps, err := wiring.Build(ctx, cmd)
	if err != nil {
		return err
	}
	defer deps.Close()

	turns, err := deps.Store.RecentForSession(ctx, c.sessionID, c.limit)
	if err != nil {
		return fmt.Errorf("listing turns: %w", err)
	}

	if len(turns) == 0 {
		fmt.Println("no turns recorded for this session")
		return nil
	}

	for _, turn := range turns {
		fmt.Printf("%s  [%s %.2f]\n", turn.CreatedAt.Format("2006-01-02 15:04:05"), turn.Label, turn.Confidence)
		fmt.Printf("  user: %s\n", utils.Truncate(turn.Query, 120))
		fmt.Printf("  agent: %s\n", utils.Truncate(turn.Response, 120))
		for i, e := range turn.Entities {
			fmt.Printf("    %d. %s\n", i+1, e.Name)
		}
	}

	return nil
}
