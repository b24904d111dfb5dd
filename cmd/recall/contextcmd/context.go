// Package contextcmder provides the context command for assembling and
// printing a session's context snapshot.
package contextcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aupherehq/recall/cmd/recall/wiring"
	"github.com/aupherehq/recall/pkg/memctx"
)

const contextLongDesc string = `Assemble the context snapshot for a session.

Runs the full memory pipeline — cache lookup, history load, windowing,
entity extraction, summarization, budget check — and prints the resulting
prompt-ready context.

Examples:
  recall context --user u1 --session s1 --query "¿y el segundo?"
  recall context --user u1 --session s1 --query "more like this" --lang en`

const contextShortDesc string = "Assemble a session's context snapshot"

type contextCommander struct {
	userID    string
	sessionID string
	query     string
	language  string
}

func NewContextCmd() *cobra.Command {
	cmder := &contextCommander{}

	cmd := &cobra.Command{
		Use:   "context",
		Short: contextShortDesc,
		Long:  contextLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.userID, "user", "u", "", "User identifier")
	cmd.Flags().StringVarP(&cmder.sessionID, "session", "s", "", "Session identifier")
	cmd.Flags().StringVarP(&cmder.query, "query", "q", "", "Current query text")
	cmd.Flags().StringVarP(&cmder.language, "lang", "l", "", "Query language (default es)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("session")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func (c *contextCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	deps, err := wiring.Build(ctx, cmd)
	if err != nil {
		return err
	}
	defer deps.Close()

	assembler, err := memctx.NewAssembler(memctx.Options{
		Store:  deps.Store,
		Cache:  deps.Cache,
		Config: deps.Config.MemctxConfig(),
		Logger: deps.Logger,
	})
	if err != nil {
		return err
	}

	snapshot, err := assembler.Assemble(ctx, c.userID, c.sessionID, c.query, c.language)
	if err != nil {
		return fmt.Errorf("assembling context: %w", err)
	}

	fmt.Println(snapshot.Render())
	fmt.Printf("recent: %d  total: %d  est. tokens: %d  entity refs: %d\n",
		len(snapshot.RecentTurns), snapshot.TotalTurns,
		snapshot.EstimatedTokens, len(snapshot.EntityRefs),
	)

	return nil
}
