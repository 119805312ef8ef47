package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var parseJSON bool

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "Print locations as JSON instead of a table.")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <list-url>",
	Short: "Extracts the locations of a shared list and prints them.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}

		locations, err := e.newParser().Parse(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if parseJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(locations)
		}
		renderLocations(cmd.OutOrStdout(), locations)
		return nil
	},
}
