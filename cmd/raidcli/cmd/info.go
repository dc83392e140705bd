package cmd

import (
	"fmt"
	"strconv"

	"code.cloudfoundry.org/bytefmt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command.
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the state of the array",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArray()
		if err != nil {
			return err
		}
		defer a.Close()

		stat, err := a.Stat()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "datadir: %v\n", cfg.DataDir)
		fmt.Fprintf(out, "geometry: %d members, %v chunks, %v per stripe\n",
			cfg.Members, bytefmt.ByteSize(uint64(cfg.ChunkSize)), bytefmt.ByteSize(cfg.StripeDataSize()))
		if m := stat.Metadata; m != nil {
			fmt.Fprintf(out, "payload: %v in %d stripes\n", bytefmt.ByteSize(m.PayloadSize), m.NumStripes)
		} else {
			fmt.Fprintln(out, "payload: none")
		}
		fmt.Fprintf(out, "on disk: %v\n", bytefmt.ByteSize(stat.NumBytesWritten))

		parity := cfg.Members - 1
		data := make([][]string, 0, len(stat.Drives))
		for _, drive := range stat.Drives {
			role := "data"
			if drive.Index == parity {
				role = "parity"
			}
			data = append(data, []string{
				strconv.Itoa(drive.Index),
				role,
				drive.Name,
				bytefmt.ByteSize(drive.Size),
				strconv.FormatUint(drive.NumChunks, 10),
			})
		}

		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"member", "role", "file", "size", "chunks"})
		table.SetBorder(true)
		table.AppendBulk(data)
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
