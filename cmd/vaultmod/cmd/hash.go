package cmd

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/psantana5/vaultmod/internal/coerce"
	"github.com/psantana5/vaultmod/pkg/vlthash"
)

// hashCmd prints the 32-bit key of each argument
var hashCmd = &cobra.Command{
	Use:   "hash <string>...",
	Short: "Print the 32-bit hash keys of strings",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHash,
}

func init() {
	rootCmd.AddCommand(hashCmd)
}

type hashRow struct {
	Literal string `json:"literal" yaml:"literal"`
	Hash    uint32 `json:"hash" yaml:"hash"`
	Hex     string `json:"hex" yaml:"hex"`
	Signed  int32  `json:"signed" yaml:"signed"`
}

func runHash(cmd *cobra.Command, args []string) error {
	rows := make([]hashRow, 0, len(args))
	for _, s := range args {
		h := vlthash.Hash32(s)
		rows = append(rows, hashRow{Literal: s, Hash: h, Hex: coerce.FormatHex(h), Signed: vlthash.Hash32Signed(s)})
	}

	return writeOutput(cmd.OutOrStdout(), rows, func(w io.Writer) error {
		table := tablewriter.NewWriter(w)
		table.Header("Literal", "Hash", "Hex", "Signed")
		for _, r := range rows {
			table.Append([]string{
				r.Literal,
				strconv.FormatUint(uint64(r.Hash), 10),
				r.Hex,
				strconv.FormatInt(int64(r.Signed), 10),
			})
		}
		return table.Render()
	})
}
