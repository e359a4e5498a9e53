package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"idphoto/internal/domain"
	"idphoto/internal/export"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var (
		limit          int
		gender, query  string
		from, to       string
		format, output string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or export the generation history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := domain.HistoryFilter{Limit: limit, FilenameContains: query}
			if gender != "" && gender != "all" {
				g, err := domain.ParseGender(gender)
				if err != nil {
					return err
				}
				filter.Gender = g
			}
			var err error
			if filter.From, err = domain.ParseDate(from, false); err != nil {
				return err
			}
			if filter.To, err = domain.ParseDate(to, true); err != nil {
				return err
			}
			records, err := c.services.History.Query(cmd.Context(), filter)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			var data []byte
			switch strings.ToLower(format) {
			case "table":
				return writeHistoryTable(w, records, c.effectiveLocale())
			case "csv":
				data, err = export.HistoryCSV(records, c.effectiveLocale())
			case "json":
				data, err = export.HistoryJSON(records)
			case "backup":
				data, err = export.HistoryBackup(records, time.Now())
			default:
				return fmt.Errorf("unknown format %q, use table, csv, json or backup", format)
			}
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		},
	}
	f := cmd.Flags()
	f.IntVarP(&limit, "limit", "n", 50, "maximum number of records")
	f.StringVarP(&gender, "gender", "g", "all", "all, male or female")
	f.StringVarP(&query, "query", "q", "", "filter by original filename substring")
	f.StringVar(&from, "from", "", "earliest date (YYYY-MM-DD)")
	f.StringVar(&to, "to", "", "latest date, inclusive (YYYY-MM-DD)")
	f.StringVarP(&format, "format", "f", "table", "table, csv, json or backup")
	f.StringVarP(&output, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func writeHistoryTable(w io.Writer, records []domain.HistoryRecord, locale string) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "no history")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tFILE\tGENDER\tTIME\tSIZE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f KB\n",
			r.CreatedAt.Local().Format("02/01/2006 15:04"),
			r.OriginalFilename,
			r.Gender.Label(locale),
			formatSeconds(r.ProcessingTime),
			float64(r.FileSize)/1024)
	}
	return tw.Flush()
}

func newStatsCmd(c *cli) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show usage statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := c.services.History.Aggregate(cmd.Context())
			if err != nil {
				return err
			}
			daily, err := c.services.History.Daily(cmd.Context(), days)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "total: %d\nmale: %d\nfemale: %d\ntoday: %d\naverage: %s\n",
				stats.Total,
				stats.Count(domain.GenderMale),
				stats.Count(domain.GenderFemale),
				stats.Today,
				formatSeconds(stats.AverageProcessingTime))
			if len(daily) == 0 {
				return nil
			}
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "\nDAY\tTOTAL\tMALE\tFEMALE\tAVERAGE")
			for _, d := range daily {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n",
					d.Day.Format(time.DateOnly), d.Total, d.Male, d.Female, formatSeconds(d.AverageProcessingTime))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "days of daily usage to show")
	return cmd
}

func newClearHistoryCmd(c *cli) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear-history",
		Short: "Delete every history record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear history without --yes")
			}
			if err := c.services.History.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
