package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/motoforense/motoscan/internal/registry"
)

// prefixesCmd represents the prefixes command.
var prefixesCmd = &cobra.Command{
	Use:   "prefixes",
	Short: "List the known engine-code prefixes",
	Long: `List the manufacturer engine-code prefixes the normalizer matches
against, including the expected code length and the engraving era.

Examples:
  motoscan prefixes
  motoscan prefixes --format json
  motoscan prefixes --registry extra-prefixes.yaml`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		cfg := GetConfig()
		reg := registry.Default()
		if cfg.RegistryPath != "" {
			loaded, err := registry.LoadFile(cfg.RegistryPath)
			if err != nil {
				return fmt.Errorf("load prefix registry: %w", err)
			}
			reg = loaded
		}

		records := reg.Records()
		if format == outputFormatJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PREFIX\tMODEL\tCC\tLENGTH\tERA")
		for _, rec := range records {
			era := string(rec.Era)
			if era == "" {
				era = "by year"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				rec.Prefix, rec.Model, rec.Displacement, rec.ExpectedLength, era)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(prefixesCmd)

	prefixesCmd.Flags().String("format", outputFormatText, "output format (text, json)")
}
