package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaobohan917/douyin-toolbox/internal/api/server"
)

// Cmd represents the version command
var Cmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dytool",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(server.Version)
		return nil
	},
}
