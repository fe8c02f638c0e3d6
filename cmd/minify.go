package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-portfolio/internal/store"
)

var minifyCmd = &cobra.Command{
	Use:   "minify",
	Short: "Compacts the JSON data file for deployment",
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)

		cfg, err := loadConfig(cmd)
		if err != nil {
			logger.Error("Failed to load configuration", "err", err)
			os.Exit(1)
		}
		input, output := cfg.Output, cfg.MinifiedOutput
		if cmd.Flags().Changed("input") {
			input, _ = cmd.Flags().GetString("input")
		}
		if cmd.Flags().Changed("output") {
			output, _ = cmd.Flags().GetString("output")
		}

		if err := store.Minify(input, output); err != nil {
			logger.Error("Failed to minify JSON", "err", err)
			os.Exit(1)
		}
		logger.Info("Minified", "input", input, "output", output)
	},
}

func init() {
	rootCmd.AddCommand(minifyCmd)
	minifyCmd.Flags().StringP("input", "i", "", "JSON file to compact (defaults to the fetch output)")
	minifyCmd.Flags().StringP("output", "o", "", "Where to write the compacted file")
}
