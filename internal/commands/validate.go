package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"evalgo.org/fibertrack/internal/storage"
	"evalgo.org/fibertrack/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate [kind] [file]",
	Short: "Validate an entity payload offline",
	Long: `Check a JSON payload against the field rules of a collection without
touching the database. Parent existence and link uniqueness are only
checked by the server.

Examples:
  fibertrack validate cables cable.json
  fibertrack validate distribution-points dp.json
  cat splitter.json | fibertrack validate splitters -`,
	Args: cobra.ExactArgs(2),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	kind, ok := storage.LookupKind(args[0])
	if !ok {
		return fmt.Errorf("unknown kind: %s", args[0])
	}

	var (
		data []byte
		err  error
	)
	if args[1] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[1])
	}
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	return validatePayload(cmd.OutOrStdout(), kind, data)
}

func validatePayload(w io.Writer, kind *storage.Kind, data []byte) error {
	rec := kind.New()
	if err := json.Unmarshal(data, rec); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	result := validation.New().ValidateStruct(rec)
	if result.Valid {
		fmt.Fprintf(w, "✓ %s payload is valid\n", kind.Label)
		return nil
	}

	fmt.Fprintln(w, "✗ Validation failed:")
	for _, e := range result.Errors {
		if e.Value != nil {
			fmt.Fprintf(w, "  - %s: %s (value: %v)\n", e.Field, e.Message, e.Value)
		} else {
			fmt.Fprintf(w, "  - %s: %s\n", e.Field, e.Message)
		}
	}

	return fmt.Errorf("validation failed")
}
