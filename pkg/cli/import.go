package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mockwell/mockwell/internal/storage"
	"github.com/mockwell/mockwell/pkg/importer"
	"github.com/spf13/cobra"
)

var (
	importApply  bool
	importOutput string
	importJSON   bool
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Preview or convert an OpenAPI 3.0 document",
	Long: `Parse an OpenAPI 3.0 document and report the mock endpoints it would
produce. By default nothing is written: the command prints the preview.
With --apply the synthesized endpoints are written out as a YAML seed file
ready for 'mockwell serve --config'.`,
	Example: `  # Preview what an import would create
  mockwell import petstore.yaml

  # Convert to a seed file
  mockwell import petstore.yaml --apply -o seed.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(args[0])
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importApply, "apply", false, "Write the synthesized endpoints as a YAML seed")
	importCmd.Flags().StringVarP(&importOutput, "output", "o", "", "Seed output path (default: stdout)")
	importCmd.Flags().BoolVar(&importJSON, "json", false, "Print the preview as JSON")
}

func runImport(file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	doc, err := importer.ParseDocument(context.Background(), data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", file, err)
	}
	preview := importer.BuildPreview(doc)

	if !importApply {
		return printPreview(preview)
	}

	store := storage.NewMemoryStore()
	outcome := importer.Apply(store, preview)
	for _, e := range outcome.Errors {
		fmt.Fprintf(os.Stderr, "skipped %s %s: %s\n", e.Method, e.Path, e.Reason)
	}
	for _, w := range outcome.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if outcome.Created == 0 {
		return fmt.Errorf("no endpoints could be imported from %s", file)
	}

	seed, err := DumpSeed(store)
	if err != nil {
		return err
	}
	if importOutput == "" {
		fmt.Print(string(seed))
		return nil
	}
	if err := os.WriteFile(importOutput, seed, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %d endpoints to %s\n", outcome.Created, importOutput)
	return nil
}

func printPreview(preview *importer.Preview) error {
	if importJSON {
		out := struct {
			Endpoints []importer.EndpointSummary `json:"endpoints"`
			Warnings  []string                   `json:"warnings"`
			Errors    []importer.ItemError       `json:"errors"`
		}{Warnings: preview.Warnings, Errors: preview.Errors}
		for _, item := range preview.Items {
			out.Endpoints = append(out.Endpoints, summarize(item))
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, item := range preview.Items {
		s := summarize(item)
		fmt.Printf("%-6s %-40s %d schema fields, %d templates\n", s.Method, s.Path, s.SchemaFields, s.Templates)
	}
	for _, w := range preview.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	for _, e := range preview.Errors {
		fmt.Printf("error: %s %s: %s\n", e.Method, e.Path, e.Reason)
	}
	fmt.Printf("%d endpoints would be created\n", len(preview.Items))
	return nil
}

func summarize(item importer.Item) importer.EndpointSummary {
	fields := 0
	for _, s := range item.Schemas {
		fields += len(s.Fields)
	}
	return importer.EndpointSummary{
		Method:       item.Endpoint.Method,
		Path:         item.Endpoint.Path,
		Name:         item.Endpoint.Name,
		SchemaFields: fields,
		Templates:    len(item.Templates),
	}
}
