package cmd

import (
	"github.com/spf13/cobra"
)

// resetCmd represents the reset command.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the drive files and metadata from the datadir",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArray()
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Reset()
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
