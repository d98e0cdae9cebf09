package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tavernworks/innkeep/internal/metrics"
)

var chatContext []string

// Theme holds the color scheme for chat output.
type Theme struct {
	Speaker   lipgloss.Color
	Narration lipgloss.Color
	Quest     lipgloss.Color
	Hint      lipgloss.Color
	Error     lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Speaker:   lipgloss.Color("#5FAFD7"), // light blue
	Narration: lipgloss.Color("#6C6C6C"), // dim gray
	Quest:     lipgloss.Color("#FFD700"), // gold
	Hint:      lipgloss.Color("#6C6C6C"), // dim gray
	Error:     lipgloss.Color("#FF005F"), // red
}

func (t Theme) speakerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Speaker).Bold(true)
}

func (t Theme) narrationStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Narration).Italic(true)
}

func (t Theme) questStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Quest).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

var chatCmd = &cobra.Command{
	Use:   "chat <persona>",
	Short: "Start an interactive conversation with a persona",
	Long: `Start an interactive conversation with a stored persona.

Each turn runs the full pipeline: memory retrieval, model call, memory
extraction, importance decay, and conditional quest generation. The
persona's history, memory, and quests are persisted after every turn.

Type "exit" or "quit" (or press Ctrl-D) to end the session.

Examples:
  innkeep chat "Barkeep Bernie"
  innkeep chat "Adventure Hook NPC" --context partySize=4 --context level=5`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringSliceVarP(&chatContext, "context", "c", nil, "context key=value pairs substituted into the prompt template")
}

func parseContextFlags(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	ctx := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		ctx[k] = v
	}
	return ctx
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	theme := defaultTheme

	p, err := storeClient.GetPersonaByName(ctx, args[0])
	if err != nil {
		return err
	}

	// Clear stale state if the persona predates the current schema
	if p.Migrate() {
		fmt.Println(theme.hintStyle().Render("(conversation history reset after schema upgrade)"))
	}

	eng, err := getEngine()
	if err != nil {
		return err
	}

	turnContext := parseContextFlags(chatContext)
	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	fmt.Printf("Talking to %s. Type \"exit\" to leave.\n\n", theme.speakerStyle().Render(p.Name))

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		resp, err := eng.Chat(ctx, p, input, turnContext)
		if err != nil {
			fmt.Println(theme.errorStyle().Render(fmt.Sprintf("Error: %v", err)))
			continue
		}

		if resp.Narration != "" {
			fmt.Println(theme.narrationStyle().Render(resp.Narration))
		}
		fmt.Printf("%s: %s\n", theme.speakerStyle().Render(p.Name), resp.Message)

		for _, q := range resp.Quests {
			fmt.Println(theme.questStyle().Render(fmt.Sprintf("New quest: %s", q.Title)))
			if q.Description != "" {
				fmt.Printf("  %s\n", q.Description)
			}
			fmt.Printf("  Party size %d, level %d", q.PartySize, q.Level)
			if q.Rewards != "" {
				fmt.Printf(", rewards: %s", q.Rewards)
			}
			fmt.Println()
		}

		// Persist the turn outcome: history append plus the in-place
		// memory mutations the engine already made.
		p.AppendTurn(input, resp.Message, resp.Narration)
		p.Quests = append(p.Quests, resp.Quests...)
		if err := storeClient.SaveTurnState(ctx, p); err != nil {
			fmt.Println(theme.errorStyle().Render(fmt.Sprintf("Warning: failed to save turn: %v", err)))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if verbose {
		printSessionStats(eng.Metrics().Snapshot())
	}
	fmt.Println("\nFarewell.")
	return nil
}

func printSessionStats(snap metrics.Snapshot) {
	fmt.Println("\nSession stats:")
	printOpStats("turns", snap.Turn)
	printOpStats("model calls", snap.ModelCall)
	printOpStats("quest generations", snap.QuestGen)
	printOpStats("memory retrievals", snap.Retrieval)
	printOpStats("memory extractions", snap.Extraction)
}

func printOpStats(label string, op *metrics.OperationSnapshot) {
	if op == nil {
		return
	}
	fmt.Printf("  %s: %d (avg %.0fms, min %dms, max %dms)\n",
		label, op.Count, op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
	if op.TotalPromptChars != nil && op.TotalResponseChars != nil {
		fmt.Printf("    prompt chars: %d, response chars: %d\n",
			*op.TotalPromptChars, *op.TotalResponseChars)
	}
}
