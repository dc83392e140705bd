package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ErrInconsistent = errors.New("array is inconsistent")

// verifyCmd represents the verify command.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that the parity of every stripe matches its data",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArray()
		if err != nil {
			return err
		}
		defer a.Close()

		inconsistent, err := a.Verify(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(inconsistent) == 0 {
			fmt.Fprintf(out, "all %d stripes are consistent\n", a.SessionNumStripes())
			return nil
		}

		fmt.Fprintf(out, "%d of %d stripes are inconsistent:\n", len(inconsistent), a.SessionNumStripes())
		for _, k := range inconsistent {
			fmt.Fprintf(out, "  stripe %d\n", k)
		}
		return ErrInconsistent
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
