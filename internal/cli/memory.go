package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect persona memories",
	Long: `Inspect the long-term memories a persona has accumulated.

Examples:
  innkeep memory list "Barkeep Bernie"`,
}

var memoryListCmd = &cobra.Command{
	Use:   "list <persona>",
	Short: "List a persona's memories by importance",
	Args:  cobra.ExactArgs(1),
	RunE:  runMemoryList,
}

func init() {
	memoryCmd.AddCommand(memoryListCmd)
}

func runMemoryList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p, err := storeClient.GetPersonaByName(ctx, args[0])
	if err != nil {
		return err
	}

	if len(p.Memory) == 0 {
		fmt.Printf("%s has no memories yet.\n", p.Name)
		return nil
	}

	memories := make([]int, len(p.Memory))
	for i := range memories {
		memories[i] = i
	}
	sort.SliceStable(memories, func(a, b int) bool {
		return p.Memory[memories[a]].Importance > p.Memory[memories[b]].Importance
	})

	fmt.Printf("Memories of %s (%d):\n\n", p.Name, len(p.Memory))
	for _, i := range memories {
		m := p.Memory[i]
		fmt.Printf("- [%.1f] %s\n", m.Importance, m.Content)
		if verbose {
			fmt.Printf("  created %s, last accessed %s\n",
				m.CreatedAt.Format(time.DateTime), m.LastAccessed.Format(time.DateTime))
		}
	}

	return nil
}
