package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tavernworks/innkeep/internal/persona"
)

var exportPersonaName string

var exportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export personas to a YAML bundle",
	Long: `Export personas with their full state (history, memories, quests) to a
YAML bundle for backup or migration.

Examples:
  innkeep export ./personas.yaml
  innkeep export ./bernie.yaml --persona "Barkeep Bernie"`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportPersonaName, "persona", "", "export only this persona")
}

func runExport(cmd *cobra.Command, args []string) error {
	exportPath := args[0]
	ctx := context.Background()

	var personas []*persona.Persona
	if exportPersonaName != "" {
		p, err := storeClient.GetPersonaByName(ctx, exportPersonaName)
		if err != nil {
			return err
		}
		personas = []*persona.Persona{p}
	} else {
		var err error
		personas, err = storeClient.ListPersonas(ctx)
		if err != nil {
			return err
		}
	}

	if len(personas) == 0 {
		fmt.Println("No personas to export.")
		return nil
	}

	data, err := persona.ExportBundle(personas)
	if err != nil {
		return fmt.Errorf("build bundle: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}

	fmt.Printf("Exported %d persona(s) to %s\n", len(personas), exportPath)
	return nil
}
