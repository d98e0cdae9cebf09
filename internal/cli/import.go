package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tavernworks/innkeep/internal/persona"
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import personas from a YAML bundle",
	Long: `Import personas from a YAML bundle created by export.

Personas are upserted by id: an imported persona with a known id replaces
the stored one, new ids are created fresh.

Examples:
  innkeep import ./personas.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read bundle: %w", err)
	}

	bundle, err := persona.ImportBundle(data)
	if err != nil {
		return fmt.Errorf("parse bundle: %w", err)
	}

	imported := 0
	for _, p := range bundle.Personas {
		if p.Migrate() && verbose {
			fmt.Printf("Reset history of %q after schema upgrade\n", p.Name)
		}
		if err := storeClient.UpsertPersona(ctx, p); err != nil {
			return fmt.Errorf("import %q: %w", p.Name, err)
		}
		imported++
	}

	fmt.Printf("Imported %d persona(s)\n", imported)
	return nil
}
