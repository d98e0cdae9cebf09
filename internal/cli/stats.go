package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tavernworks/innkeep/internal/persona"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show storage statistics",
	Long: `Show aggregate statistics over all stored personas.

Examples:
  innkeep stats`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	count, err := storeClient.CountPersonas(ctx)
	if err != nil {
		return err
	}

	personas, err := storeClient.ListPersonas(ctx)
	if err != nil {
		return err
	}

	var turns, memories, quests, active int
	for _, p := range personas {
		turns += len(p.History) / 2
		memories += len(p.Memory)
		quests += len(p.Quests)
		for _, q := range p.Quests {
			if q.Status == persona.QuestActive {
				active++
			}
		}
	}

	fmt.Println("Innkeep statistics")
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("Personas:       %d\n", count)
	fmt.Printf("Total turns:    %d\n", turns)
	fmt.Printf("Total memories: %d\n", memories)
	fmt.Printf("Total quests:   %d (%d active)\n", quests, active)

	if verbose && len(personas) > 0 {
		fmt.Println("\nPer persona:")
		for _, p := range personas {
			fmt.Printf("- %s: %d turns, %d memories, %d quests\n",
				p.Name, len(p.History)/2, len(p.Memory), len(p.Quests))
		}
	}

	return nil
}
