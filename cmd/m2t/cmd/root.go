package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"media2text/cmd/m2t/cmd/run"
	"media2text/cmd/m2t/cmd/serve"
	"media2text/cmd/m2t/cmd/version"
	"media2text/internal/config"
)

var configFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "m2t",
	Short: "Turn a YouTube video or a local media file into a zip of transcripts",
	Long: `Turn a YouTube video or a local media file into a zip of transcripts.
- serve starts the HTTP API exposing POST /transcribe
- run transcribes a single source and writes the archive to disk`,
	TraverseChildren: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			return os.Setenv(config.ConfigPathEnv, configFile)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(run.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (overrides $"+config.ConfigPathEnv+")")
}
