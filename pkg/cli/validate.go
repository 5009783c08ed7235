package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mockwell/mockwell/pkg/endpoint"
	"github.com/mockwell/mockwell/pkg/importer"
	"github.com/mockwell/mockwell/pkg/template"
	"github.com/spf13/cobra"
)

var (
	validateContentType string
	validateJSON        bool
)

var validateTemplateCmd = &cobra.Command{
	Use:   "validate-template FILE",
	Short: "Check a response template body for syntax errors",
	Long: `Parse a template body and report its placeholders. JSON content types
additionally get a structural well-formedness check of the body skeleton.`,
	Example: `  mockwell validate-template response.json.tmpl
  mockwell validate-template response.xml --content-type application/xml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidateTemplate(args[0])
	},
}

var validateSpecCmd = &cobra.Command{
	Use:   "validate-spec FILE",
	Short: "Check an OpenAPI 3.0 document without importing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		doc, err := importer.ParseDocument(context.Background(), data)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		preview := importer.BuildPreview(doc)
		fmt.Printf("%s: valid, %d importable operations", args[0], len(preview.Items))
		if n := len(preview.Errors); n > 0 {
			fmt.Printf(", %d skipped", n)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateTemplateCmd)
	rootCmd.AddCommand(validateSpecCmd)

	validateTemplateCmd.Flags().StringVar(&validateContentType, "content-type", "application/json", "Content type the template will be served with")
	validateTemplateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print the result as JSON")
}

func runValidateTemplate(file string) error {
	body, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	jsonContent := isJSONContentType(validateContentType)
	result, err := template.Check(string(body), jsonContent)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	if validateJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("%s: valid\n", file)
	if len(result.RequestFields) > 0 {
		fmt.Printf("request fields: %v\n", result.RequestFields)
	}
	if len(result.Generators) > 0 {
		fmt.Printf("generators: %v\n", result.Generators)
	}
	return nil
}

func isJSONContentType(ct string) bool {
	t := endpoint.ResponseTemplate{ContentType: ct}
	return t.IsJSON()
}
