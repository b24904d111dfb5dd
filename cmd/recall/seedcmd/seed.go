// Package seedcmder provides the seed command for loading demo turns into
// the configured store.
package seedcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aupherehq/recall/cmd/recall/wiring"
	"github.com/aupherehq/recall/pkg/conversation"
	"github.com/aupherehq/recall/pkg/recorder"
)

const seedLongDesc string = `Seed demo conversation turns into the configured store.

Records turns through the same path the agent uses, so cache invalidation
and turn events fire exactly as they would in production.

Examples:
  recall seed
  recall seed --sessions 3 --turns 12`

const seedShortDesc string = "Seed demo turns"

type seedCommander struct {
	sessions int
	turns    int
}

func NewSeedCmd() *cobra.Command {
	cmder := &seedCommander{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: seedShortDesc,
		Long:  seedLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().IntVar(&cmder.sessions, "sessions", 2, "Number of demo sessions")
	cmd.Flags().IntVar(&cmder.turns, "turns", 12, "Turns per session")

	return cmd
}

var demoExchanges = []struct {
	query    string
	response string
	label    string
	entities []conversation.Entity
}{
	{
		query:    "¿Dónde puedo cenar tapas en Zaragoza?",
		response: "Te recomiendo estos sitios del Tubo.",
		label:    "search",
		entities: []conversation.Entity{
			{Name: "Bodegas Almau"},
			{Name: "Taberna Doña Casta"},
		},
	},
	{
		query:    "¿Cuál tiene mejor terraza?",
		response: "La terraza de Bodegas Almau es la más amplia.",
		label:    "recommend",
		entities: []conversation.Entity{
			{Name: "Bodegas Almau"},
		},
	},
	{
		query:    "Organízame una tarde de bares para cuatro personas",
		response: "Necesito saber cuánto tiempo tenéis y qué ambiente buscáis.",
		label:    "plan",
	},
	{
		query:    "Unas tres horas, algo tranquilo",
		response: "Perfecto, ruta tranquila de tres paradas por el centro.",
		label:    "plan",
		entities: []conversation.Entity{
			{Name: "Café Botánico"},
			{Name: "La Clandestina"},
			{Name: "Vinos El Coso"},
		},
	},
}

func (c *seedCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	deps, err := wiring.Build(ctx, cmd)
	if err != nil {
		return err
	}
	defer deps.Close()

	rec, err := recorder.New(recorder.Options{
		Store:     deps.Store,
		Cache:     deps.Cache,
		Publisher: deps.Publisher,
		Logger:    deps.Logger,
	})
	if err != nil {
		return err
	}

	recorded := 0
	for s := range c.sessions {
		sessionID := fmt.Sprintf("demo-session-%d", s+1)
		for t := range c.turns {
			exchange := demoExchanges[t%len(demoExchanges)]
			turn := &conversation.Turn{
				SessionID:     sessionID,
				UserID:        "demo-user",
				Query:         exchange.query,
				QueryLanguage: "es",
				Response:      exchange.response,
				Entities:      exchange.entities,
				Label:         exchange.label,
				Confidence:    0.9,
			}
			if _, err := rec.Record(ctx, turn); err != nil {
				return fmt.Errorf("seeding turn %d of %s: %w", t+1, sessionID, err)
			}
			recorded++
		}
	}

	fmt.Printf("seeded %d turns across %d sessions for demo-user\n", recorded, c.sessions)

	return nil
}
