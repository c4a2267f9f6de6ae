// Package cli assembles the smqc command-line interface: cobra
// subcommands wrapping internal/compiler, internal/manifest, and
// internal/lint for interactive and scripted (JSON) use.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rkddus222/smqc/internal/compiler"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			errObj := map[string]interface{}{"error": err.Error()}
			errObj["kind"] = classifyErrorKind(err)
			_ = printJSON(os.Stdout, errObj)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// classifyErrorKind names the typed error kind behind err, or "unknown"
// when err is not one of internal/compiler's kinds - it lets a
// scripted caller branch on failure category without string-matching
// the message.
func classifyErrorKind(err error) string {
	var inputErr *compiler.InputValidationError
	if errors.As(err, &inputErr) {
		return "input_validation"
	}
	var manifestErr *compiler.ManifestViolationError
	if errors.As(err, &manifestErr) {
		return "manifest_violation"
	}
	var expErr *compiler.ExpansionLimitError
	if errors.As(err, &expErr) {
		return "expansion_limit"
	}
	var joinErr *compiler.JoinError
	if errors.As(err, &joinErr) {
		return "join_error"
	}
	var dialectErr *compiler.DialectError
	if errors.As(err, &dialectErr) {
		return "dialect_error"
	}
	return "unknown"
}

// NewRootCmd builds the smqc root command with every subcommand
// registered. --manifest-dir, --dialect and --output are shared
// persistent flags every subcommand reads from the root via
// cmd.Root().PersistentFlags().
func NewRootCmd() *cobra.Command {
	var (
		manifestDir string
		dialect     string
		output      string
	)

	rootCmd := &cobra.Command{
		Use:           "smqc",
		Short:         "Semantic model query compiler",
		Long:          "smqc compiles semantic-model queries (SMQ) against a YAML manifest into SQL.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if output != "" && output != "text" && output != "json" {
				return fmt.Errorf("unsupported output format %q: use 'text' or 'json'", output)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&manifestDir, "manifest-dir", ".", "directory containing the semantic-model YAML manifest")
	rootCmd.PersistentFlags().StringVar(&dialect, "dialect", "duckdb", "target SQL dialect")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "text", "output format (text, json)")

	rootCmd.AddCommand(newCompileCmd())
	rootCmd.AddCommand(newLintCmd())
	rootCmd.AddCommand(newAssembleCmd())
	rootCmd.AddCommand(newExplainJoinCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func rootManifestDir(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("manifest-dir")
	return v
}

func rootDialect(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("dialect")
	return v
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]string{"version": version, "commit": commit})
			}
			_, _ = fmt.Fprintf(os.Stdout, "smqc version %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}
