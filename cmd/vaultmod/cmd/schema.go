package cmd

import (
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// schemaCmd lists the known wrapper types
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "List wrapper types and the primitive each resolves to",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

// schemaEnumsCmd lists the declared enums
var schemaEnumsCmd = &cobra.Command{
	Use:   "enums",
	Short: "List declared enums and their members",
	Args:  cobra.NoArgs,
	RunE:  runSchemaEnums,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaEnumsCmd)
}

type wrapperRow struct {
	Wrapper string `json:"wrapper" yaml:"wrapper"`
	Target  string `json:"target" yaml:"target"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runSchema(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	var rows []wrapperRow
	for _, t := range rt.registry.WrapperTypes() {
		row := wrapperRow{Wrapper: string(t)}
		if target, err := rt.resolver.Resolve(t); err != nil {
			row.Error = err.Error()
		} else {
			row.Target = target.String()
		}
		rows = append(rows, row)
	}

	return writeOutput(cmd.OutOrStdout(), rows, func(w io.Writer) error {
		table := tablewriter.NewWriter(w)
		table.Header("Wrapper", "Target")
		for _, r := range rows {
			target := r.Target
			if r.Error != "" {
				target = "(" + r.Error + ")"
			}
			table.Append([]string{r.Wrapper, target})
		}
		return table.Render()
	})
}

type enumRow struct {
	Name       string   `json:"name" yaml:"name"`
	Underlying string   `json:"underlying" yaml:"underlying"`
	Members    []string `json:"members" yaml:"members"`
}

func runSchemaEnums(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	var rows []enumRow
	for _, e := range rt.registry.Enums() {
		row := enumRow{Name: e.Name, Underlying: string(e.Underlying)}
		for _, m := range e.Members {
			row.Members = append(row.Members, m.Name+"="+strconv.FormatInt(m.Value, 10))
		}
		rows = append(rows, row)
	}

	return writeOutput(cmd.OutOrStdout(), rows, func(w io.Writer) error {
		table := tablewriter.NewWriter(w)
		table.Header("Enum", "Underlying", "Members")
		for _, r := range rows {
			table.Append([]string{r.Name, r.Underlying, strings.Join(r.Members, ", ")})
		}
		return table.Render()
	})
}
