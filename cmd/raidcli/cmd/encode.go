package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var inputFile string

// encodeCmd represents the encode command.
var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Store a file on the array",
	Long: `encode splits the input file into stripes, computes the parity of every stripe
and writes all members to the drive files in the datadir. A payload previously
stored on the array is replaced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(inputFile)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return err
		}

		a, err := openArray()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Encode(cmd.Context(), bufio.NewReader(f), uint64(info.Size())); err != nil {
			return err
		}

		logger.Info("cli: encode completed", zap.String("input", inputFile), zap.Uint64("stripes", a.SessionNumStripes()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().StringVar(&inputFile, "in", "", "path of the file to store")
	encodeCmd.MarkFlagRequired("in")
}
