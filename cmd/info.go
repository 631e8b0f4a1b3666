package cmd

import (
	"github.com/spf13/cobra"
)

// InfoCmd represents the info command
var InfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print mesh statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		msh, vp, err := readInputs(cmd)
		if err != nil {
			return err
		}
		vp.Print()
		msh.PrintStatistics()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(InfoCmd)
}
