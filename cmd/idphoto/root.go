package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"idphoto/internal/bootstrap"
	"idphoto/internal/domain"
	"idphoto/internal/infra"
	"idphoto/internal/pipeline"
)

type cli struct {
	cfg      *infra.Config
	logger   infra.Logger
	services *bootstrap.Services
	build    func(ctx context.Context) (*bootstrap.Services, error)

	verbose bool
	locale  string
	style   styleFlags
}

type styleFlags struct {
	gender     string
	size       string
	suitStyle  string
	suitColor  string
	tieStyle   string
	outfit     string
	color      string
	background string

	brightness int
	contrast   int
	sharpness  int
	saturation int
	noDenoise  bool
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "idphoto",
		Short:         "Compose ID photos and manage the generation history",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.logger = c.logger.Level(zerolog.DebugLevel)
			}
			if c.services != nil {
				return nil
			}
			s, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			c.services = s
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log debug output to stderr")
	root.PersistentFlags().StringVar(&c.locale, "locale", "", "caption and export locale (vi or en)")

	root.AddCommand(
		newGenerateCmd(c),
		newBatchCmd(c),
		newHistoryCmd(c),
		newStatsCmd(c),
		newClearHistoryCmd(c),
	)
	return root
}

func (c *cli) close() {
	c.services.Close()
}

// effectiveLocale resolves --locale against the configured default.
func (c *cli) effectiveLocale() string {
	locale := strings.ToLower(strings.TrimSpace(c.locale))
	if locale == "" && c.services != nil && c.services.Config != nil {
		locale = c.services.Config.DefaultLocale
	}
	if strings.HasPrefix(locale, "vi") {
		return "vi"
	}
	return "en"
}

func addStyleFlags(cmd *cobra.Command, s *styleFlags) {
	f := cmd.Flags()
	f.StringVarP(&s.gender, "gender", "g", "male", "male or female")
	f.StringVarP(&s.size, "size", "s", string(domain.DefaultSize), "photo size class")
	f.StringVar(&s.suitStyle, "suit-style", "", "classic, modern, slim_fit or sport")
	f.StringVar(&s.suitColor, "suit-color", "", "navy, black, gray, charcoal or brown")
	f.StringVar(&s.tieStyle, "tie-style", "", "solid, striped, polka_dot or patterned")
	f.StringVar(&s.outfit, "outfit", "", "blazer, shirt, office_dress, sweater or light_jacket")
	f.StringVar(&s.color, "color", "", "white, black, navy, pink, blue or beige")
	f.StringVar(&s.background, "background", "", "white, blue, gray or gradient")

	d := domain.DefaultEnhancement
	f.IntVar(&s.brightness, "brightness", d.Brightness, "brightness offset in percent")
	f.IntVar(&s.contrast, "contrast", d.Contrast, "contrast offset in percent")
	f.IntVar(&s.sharpness, "sharpness", d.Sharpness, "sharpness offset in percent")
	f.IntVar(&s.saturation, "saturation", d.Saturation, "saturation offset in percent")
	f.BoolVar(&s.noDenoise, "no-denoise", !d.NoiseReduction, "skip noise reduction")
}

func (c *cli) request() (pipeline.Request, error) {
	s := c.style
	gender, err := domain.ParseGender(s.gender)
	if err != nil {
		return pipeline.Request{}, err
	}
	style, err := domain.ParseStyleOptions(gender, map[string]string{
		"photo_size":    s.size,
		"suit_style":    s.suitStyle,
		"suit_color":    s.suitColor,
		"tie_style":     s.tieStyle,
		"female_outfit": s.outfit,
		"female_color":  s.color,
		"background":    s.background,
	})
	if err != nil {
		return pipeline.Request{}, err
	}
	enh := domain.EnhancementOptions{
		Brightness:     s.brightness,
		Contrast:       s.contrast,
		Sharpness:      s.sharpness,
		Saturation:     s.saturation,
		NoiseReduction: !s.noDenoise,
	}
	return pipeline.Request{Style: style, Enhancement: enh.Clamped(), Locale: c.effectiveLocale()}, nil
}

func formatSeconds(v float64) string {
	return fmt.Sprintf("%.2fs", v)
}
