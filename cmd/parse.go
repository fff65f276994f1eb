package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/datatidy-cli/internal/dataio"
	"github.com/KaramelBytes/datatidy-cli/internal/intent"
	"github.com/KaramelBytes/datatidy-cli/internal/pipeline"
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse <instruction...>",
	Short: "Show the cleaning directives recognized in an instruction",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		res := intent.NewResolver(nil, appLog).Resolve(text)
		d := pipeline.Merge(pipeline.Directives{}, res)
		out := cmd.OutOrStdout()

		if parseJSON {
			b, err := dataio.PrettyJSON(struct {
				Instruction string              `json:"instruction"`
				Matched     []string            `json:"matched"`
				Directives  pipeline.Directives `json:"directives"`
			}{text, res.Matched, d})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}

		if res.Empty() {
			fmt.Fprintf(out, "⚠ Warning: no directives recognized in %q\n", text)
			fmt.Fprintln(out, "  Run 'datatidy commands' for supported phrasings.")
			return nil
		}
		fmt.Fprintf(out, "Instruction: %s\n", intent.Normalize(text))
		fmt.Fprintf(out, "Matched: %s\n", strings.Join(res.Matched, ", "))
		b, err := yaml.Marshal(d)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		fmt.Fprint(out, string(b))
		return nil
	},
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the plain-English phrasings the clean command understands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for i, g := range intent.SupportedCommands() {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s:\n", g.Title)
			for _, ex := range g.Examples {
				fmt.Fprintf(out, "  • %s\n", ex)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(commandsCmd)
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print machine-readable JSON")
}
