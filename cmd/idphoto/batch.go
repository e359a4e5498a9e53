package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"idphoto/internal/domain"
	"idphoto/internal/export"
)

func newBatchCmd(c *cli) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "batch <photo>...",
		Short: "Compose many ID photos and archive them as ZIP",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			req, err := c.request()
			if err != nil {
				return err
			}
			if limit := c.services.Pipeline.MaxBatch(); len(args) > limit {
				fmt.Fprintf(w, "warning: only the first %d of %d files are processed\n", limit, len(args))
				args = args[:limit]
			}

			assets := make([]domain.UploadedAsset, 0, len(args))
			for _, path := range args {
				a, err := readAsset(path)
				if err != nil {
					fmt.Fprintf(w, "✗ %s: %v\n", path, err)
					continue
				}
				assets = append(assets, a)
			}
			partition := c.services.Pipeline.Validator().ValidateMany(assets)
			for _, rej := range partition.Invalid {
				fmt.Fprintf(w, "✗ %v\n", rej.Err)
			}
			if len(partition.Valid) == 0 {
				return fmt.Errorf("no valid files to process")
			}

			res, err := c.services.Pipeline.ProcessBatch(cmd.Context(), partition.ValidAssets(), req,
				func(index, total int, status string) {
					fmt.Fprintf(w, "[%d/%d] %s\n", index+1, total, status)
				})
			if err != nil {
				return err
			}

			for _, o := range res.Outcomes {
				switch {
				case o.OK():
					fmt.Fprintf(w, "✓ %s (%s)\n", o.Filename, formatSeconds(o.Photo.Duration.Seconds()))
				default:
					fmt.Fprintf(w, "✗ %s: %v\n", o.Filename, o.Err)
				}
				if o.StorageErr != nil {
					fmt.Fprintf(w, "  warning: %v\n", o.StorageErr)
				}
			}
			fmt.Fprintf(w, "succeeded %d, failed %d, total %s, average %s, %.2f photos/s\n",
				len(res.Succeeded()), len(res.Failed()),
				formatSeconds(res.TotalProcessing().Seconds()),
				formatSeconds(res.AverageProcessing().Seconds()),
				res.Throughput())

			if len(res.Succeeded()) == 0 {
				return fmt.Errorf("batch produced no photos")
			}
			archive, err := export.BatchZip(res)
			if err != nil {
				return err
			}
			if out == "" {
				out = export.BatchZipFilename(res.Succeeded()[0].Photo.CreatedAt)
			}
			if err := os.WriteFile(out, archive, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(w, "archive: %s\n", out)
			return nil
		},
	}
	addStyleFlags(cmd, &c.style)
	cmd.Flags().StringVarP(&out, "out", "o", "", "ZIP file (default batch_id_photos_<time>.zip)")
	return cmd
}
