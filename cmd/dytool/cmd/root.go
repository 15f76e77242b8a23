package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/shaobohan917/douyin-toolbox/cmd/dytool/cmd/download"
	"github.com/shaobohan917/douyin-toolbox/cmd/dytool/cmd/parse"
	"github.com/shaobohan917/douyin-toolbox/cmd/dytool/cmd/serve"
	"github.com/shaobohan917/douyin-toolbox/cmd/dytool/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dytool",
	Short: "A toolbox for Douyin share links",
	Long: `A toolbox for Douyin share links.
- Resolve a share link or share blurb into watermark-free media URLs
- Download the media locally with a progress bar
- Run the HTTP API that backs the web frontend`,
	TraverseChildren: true,
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
	rootCmd.AddCommand(parse.Cmd)
	rootCmd.AddCommand(download.Cmd)
	rootCmd.AddCommand(version.Cmd)
}
