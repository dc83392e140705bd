package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/raid/persistence"
)

var (
	outputFile    string
	missingMember int
)

// decodeCmd represents the decode command.
var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Read the stored file back from the array",
	Long: `decode reads every stripe from the drive files and writes the stored payload
to the output file. With --missing the given drive is not read at all; its content
is reconstructed from the other drives and the parity.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArray()
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()

		w := bufio.NewWriter(f)
		if missingMember == persistence.NoMissingDrive {
			err = a.Decode(cmd.Context(), w)
		} else {
			err = a.DecodeDegraded(cmd.Context(), w, missingMember)
		}
		if err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close output: %w", err)
		}

		logger.Info("cli: decode completed", zap.String("output", outputFile), zap.Int("missing", missingMember))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().StringVar(&outputFile, "out", "", "path of the file to write the payload to")
	decodeCmd.Flags().IntVar(&missingMember, "missing", persistence.NoMissingDrive, "index of a lost drive to reconstruct instead of reading")
	decodeCmd.MarkFlagRequired("out")
}
