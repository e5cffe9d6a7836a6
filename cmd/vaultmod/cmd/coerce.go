package cmd

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/psantana5/vaultmod/internal/overrides"
	"github.com/psantana5/vaultmod/internal/report"
)

var coerceType string

// coerceCmd coerces a literal into a wrapper type
var coerceCmd = &cobra.Command{
	Use:   "coerce --type <wrapper> <literal>",
	Short: "Coerce a literal into a field's wrapper type",
	Long: `Resolve the wrapper type's primitive (or enum) and parse the literal into it.
Literals starting with 0x are read as 32-bit hex; enum literals are member
names, or member values written in hex.`,
	Example: `  vaultmod coerce --type UInt16 0x1F
  vaultmod coerce --type 'EnumWrapper<CarClass>' --schema cars.yaml A`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSingle(cmd, overrides.FieldOverride{Field: "literal", Type: coerceType, Value: args[0]})
	},
}

var exampleLike string

// exampleCmd coerces a literal by the type of an existing value
var exampleCmd = &cobra.Command{
	Use:   "example [--like <kind|enum>] <literal>",
	Short: "Coerce a literal by the type of the field's existing value",
	Long: `Parse the literal as the runtime type named by --like. For uint32 and
int32, text that is not a number is hashed into a 32-bit key. Without
--like the literal stays a string.`,
	Example: `  vaultmod example --like uint32 bmw_m3_gtr
  vaultmod example --like CarClass --schema cars.yaml B`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSingle(cmd, overrides.FieldOverride{Field: "literal", Like: exampleLike, Value: args[0]})
	},
}

func init() {
	coerceCmd.Flags().StringVarP(&coerceType, "type", "t", "", "wrapper type of the field (required)")
	coerceCmd.MarkFlagRequired("type")
	exampleCmd.Flags().StringVarP(&exampleLike, "like", "l", "", "primitive kind or enum name of the existing value")

	rootCmd.AddCommand(coerceCmd)
	rootCmd.AddCommand(exampleCmd)
}

func runSingle(cmd *cobra.Command, f overrides.FieldOverride) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()
	out, err := rt.applier.ApplyField(f)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), out, func(w io.Writer) error {
		return outcomeTable(w, []report.Outcome{out})
	})
}

func outcomeTable(w io.Writer, outcomes []report.Outcome) error {
	table := tablewriter.NewWriter(w)
	table.Header("Record", "Field", "Type", "Literal", "Value", "Variant")
	for _, o := range outcomes {
		table.Append([]string{o.Record, o.Field, o.Type, o.Literal, o.Value, o.Variant})
	}
	return table.Render()
}
