package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tavernworks/innkeep/internal/persona"
)

var (
	createTemplate     string
	createType         string
	createSystemPrompt string
	createUserTemplate string
	deleteForce        bool
)

var personaCmd = &cobra.Command{
	Use:   "persona",
	Short: "Manage stored personas",
	Long: `Manage stored personas.

Subcommands:
  list       List all personas (default)
  create     Create a persona from a template or from scratch
  show       Show a persona's full configuration and state
  delete     Delete a persona
  templates  List the built-in persona templates

Examples:
  innkeep persona list
  innkeep persona create --template "Barkeep Bernie"
  innkeep persona create "Captain Mara" --type town-guard --system-prompt "You are Mara, the harbor watch captain."
  innkeep persona show "Barkeep Bernie"
  innkeep persona delete "Barkeep Bernie" --force`,
	RunE: runPersonaList,
}

var personaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all personas",
	RunE:  runPersonaList,
}

var personaCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a persona from a template or from scratch",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPersonaCreate,
}

var personaShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a persona's full configuration and state",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersonaShow,
}

var personaDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a persona",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersonaDelete,
}

var personaTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the built-in persona templates",
	RunE:  runPersonaTemplates,
}

func init() {
	personaCreateCmd.Flags().StringVar(&createTemplate, "template", "", "built-in template to instantiate")
	personaCreateCmd.Flags().StringVarP(&createType, "type", "t", string(persona.TypeCustom), "persona type tag")
	personaCreateCmd.Flags().StringVar(&createSystemPrompt, "system-prompt", "", "system prompt for a custom persona")
	personaCreateCmd.Flags().StringVar(&createUserTemplate, "user-template", "", "user prompt template with {message} and {context} placeholders")

	personaDeleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "delete without confirmation")

	personaCmd.AddCommand(personaListCmd)
	personaCmd.AddCommand(personaCreateCmd)
	personaCmd.AddCommand(personaShowCmd)
	personaCmd.AddCommand(personaDeleteCmd)
	personaCmd.AddCommand(personaTemplatesCmd)
}

func runPersonaList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	personas, err := storeClient.ListPersonas(ctx)
	if err != nil {
		return fmt.Errorf("list personas: %w", err)
	}

	if len(personas) == 0 {
		fmt.Println("No personas found. Create one with: innkeep persona create --template <name>")
		return nil
	}

	fmt.Printf("Personas (%d):\n\n", len(personas))
	for _, p := range personas {
		fmt.Printf("- %s [%s]\n", p.Name, p.Type)
		if verbose {
			fmt.Printf("  %d turns, %d memories, %d quests\n",
				len(p.History)/2, len(p.Memory), len(p.Quests))
		}
	}

	return nil
}

func runPersonaCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var p *persona.Persona
	switch {
	case createTemplate != "":
		t, err := persona.TemplateByName(createTemplate)
		if err != nil {
			return err
		}
		p = persona.FromTemplate(t)
	case len(args) == 1:
		if createSystemPrompt == "" {
			return fmt.Errorf("custom personas require --system-prompt")
		}
		userTemplate := createUserTemplate
		if userTemplate == "" {
			userTemplate = "Context: {context}\n\nThe visitor says: {message}\n\nRespond naturally, staying in character."
		}
		p = persona.New(args[0], createSystemPrompt, userTemplate)
		p.Type = persona.Type(createType)
	default:
		return fmt.Errorf("provide a name for a custom persona or --template <name>")
	}

	if err := storeClient.UpsertPersona(ctx, p); err != nil {
		return err
	}

	fmt.Printf("Created persona %q (%s)\n", p.Name, p.ID)
	return nil
}

func runPersonaShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p, err := storeClient.GetPersonaByName(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s [%s]\n", p.Name, p.Type)
	fmt.Printf("ID: %s\n", p.ID)
	fmt.Printf("Personality: friendliness %d, formality %d, verbosity %d, humor %d\n",
		p.Personality.Friendliness, p.Personality.Formality, p.Personality.Verbosity, p.Personality.Humor)
	fmt.Printf("Model params: temperature %.2f, top-p %.2f, max tokens %d\n",
		p.ModelParams.Temperature, p.ModelParams.TopP, p.ModelParams.MaxTokens)
	fmt.Printf("Turns: %d, memories: %d, quests: %d\n\n", len(p.History)/2, len(p.Memory), len(p.Quests))

	fmt.Println("System prompt:")
	fmt.Printf("  %s\n", strings.ReplaceAll(p.SystemPrompt, "\n", "\n  "))

	if verbose {
		fmt.Println("\nUser prompt template:")
		fmt.Printf("  %s\n", strings.ReplaceAll(p.UserPromptTemplate, "\n", "\n  "))
	}

	return nil
}

func runPersonaDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p, err := storeClient.GetPersonaByName(ctx, args[0])
	if err != nil {
		return err
	}

	if !deleteForce {
		fmt.Printf("Delete persona %q with %d memories and %d quests? [y/N] ", p.Name, len(p.Memory), len(p.Quests))
		var answer string
		fmt.Scanln(&answer)
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := storeClient.DeletePersona(ctx, p.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted persona %q\n", p.Name)
	return nil
}

func runPersonaTemplates(cmd *cobra.Command, args []string) error {
	fmt.Printf("Built-in templates (%d):\n\n", len(persona.Templates))
	for _, t := range persona.Templates {
		fmt.Printf("- %s [%s]\n", t.Name, t.Type)
	}
	return nil
}
