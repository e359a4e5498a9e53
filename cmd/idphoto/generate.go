package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"idphoto/internal/domain"
	"idphoto/internal/export"
)

func readAsset(path string) (domain.UploadedAsset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.UploadedAsset{}, err
	}
	return domain.UploadedAsset{Filename: filepath.Base(path), Size: int64(len(data)), Data: data}, nil
}

func newGenerateCmd(c *cli) *cobra.Command {
	var out, format string
	cmd := &cobra.Command{
		Use:   "generate <photo>",
		Short: "Compose one ID photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := c.request()
			if err != nil {
				return err
			}
			asset, err := readAsset(args[0])
			if err != nil {
				return err
			}
			photo, err := c.services.Pipeline.Generate(cmd.Context(), &asset, req)
			if err != nil {
				return err
			}

			var data []byte
			ext := "jpg"
			switch strings.ToLower(format) {
			case "jpeg", "jpg":
				data, err = export.JPEG(photo.Image)
			case "png":
				ext = "png"
				data, err = export.PNG(photo.Image)
			default:
				return fmt.Errorf("unknown format %q, use jpeg or png", format)
			}
			if err != nil {
				return err
			}
			if out == "" {
				out = export.PhotoFilename(photo.Gender(), ext, photo.CreatedAt)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%dx%d, %s)\n",
				photo.SourceFilename, out, photo.Width, photo.Height, formatSeconds(photo.Duration.Seconds()))
			return nil
		},
	}
	addStyleFlags(cmd, &c.style)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default id_photo_pro_<gender>_<time>.<ext>)")
	cmd.Flags().StringVarP(&format, "format", "f", "jpeg", "jpeg or png")
	return cmd
}
