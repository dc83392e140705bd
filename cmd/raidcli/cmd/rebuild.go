package cmd

import (
	"github.com/spf13/cobra"
)

var rebuildMember int

// rebuildCmd represents the rebuild command.
var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Regenerate a lost drive from the others",
	Long: `rebuild recreates the file of the given drive from the remaining drives. The
current content of the file, if any, is ignored and replaced once the new file
is complete.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArray()
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Rebuild(cmd.Context(), rebuildMember)
	},
}

func init() {
	rootCmd.AddCommand(rebuildCmd)

	rebuildCmd.Flags().IntVar(&rebuildMember, "member", 0, "index of the drive to rebuild")
	rebuildCmd.MarkFlagRequired("member")
}
