package download

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/shaobohan917/douyin-toolbox/internal/app/douyin"
	appdownload "github.com/shaobohan917/douyin-toolbox/internal/app/download"
)

var (
	outputDir string
	fileName  string
)

// Cmd represents the download command
var Cmd = &cobra.Command{
	Use:   "download <share-link-or-text>",
	Short: "Download a Douyin video without its watermark",
	Long: `Download a Douyin video without its watermark.
The share link is resolved first, then the clean media stream is saved to
the output directory with a progress bar.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := douyin.NewClient()

		video, err := client.Parse(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		name := fileName
		if name == "" && video.Title != "" {
			name = video.Title + ".mp4"
		}

		downloader := appdownload.NewDownloader(outputDir)
		progress := mpb.New(mpb.WithWidth(60))

		result, err := downloader.SaveWithProgress(cmd.Context(), video.DownloadURL, name,
			func(total int64, body io.ReadCloser) io.ReadCloser {
				bar := progress.AddBar(total,
					mpb.PrependDecorators(
						decor.Name("downloading ", decor.WC{C: decor.DindentRight}),
						decor.CountersKibiByte("% .2f / % .2f"),
					),
					mpb.AppendDecorators(
						decor.NewPercentage("%d", decor.WCSyncSpace),
						decor.AverageSpeed(decor.SizeB1024(0), "% .2f", decor.WCSyncSpace),
					),
				)
				return bar.ProxyReader(body)
			})
		if err != nil {
			return err
		}
		progress.Wait()

		fmt.Printf("Saved %s (%d bytes)\n", result.Path, result.Size)
		return nil
	},
}

func init() {
	Cmd.Flags().StringVarP(&outputDir, "output", "o", "downloads", "directory to save the video into")
	Cmd.Flags().StringVarP(&fileName, "name", "n", "", "file name to save as (defaults to the video title)")
}
