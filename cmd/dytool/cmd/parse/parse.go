package parse

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaobohan917/douyin-toolbox/internal/app/douyin"
)

// Cmd represents the parse command
var Cmd = &cobra.Command{
	Use:   "parse <share-link-or-text>",
	Short: "Resolve a Douyin share link into watermark-free video metadata",
	Long: `Resolve a Douyin share link into watermark-free video metadata.
Accepts a bare link or the full share blurb copied from the app; the link
is extracted, short links are resolved, and the metadata is printed as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := douyin.NewClient()

		video, err := client.Parse(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(video, "", "  ")
		if err != nil {
			return err
		}

		fmt.Println(string(out))
		return nil
	},
}
