package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anthozoa/anthozoa/internal/field"
	"github.com/anthozoa/anthozoa/internal/preview"
	"github.com/anthozoa/anthozoa/internal/preview/window"
	"github.com/anthozoa/anthozoa/internal/watch"
)

var (
	previewWidth      int
	previewHeight     int
	previewFullscreen bool
	previewNoWatch    bool

	previewCmd = &cobra.Command{
		Use:   "preview",
		Short: "Open a live window of the flow field",
		Long: paragraph(fmt.Sprintf("\n%s the flow field in a window. Edits to the field section of the config file apply while the window is open.\n\nKeys: space freeze, c dynamic color, up/down grid spacing, left/right hue, f fullscreen, q quit.",
			keyword("Animate"))),
		Example: paragraph("anthozoa preview\nanthozoa preview --fullscreen"),
		Args:    cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			settings := field.NewSettings(cfg.Field.Parameters())
			ctrl := preview.NewController(settings)
			if previewFullscreen {
				ctrl.Do(preview.ToggleFullscreen)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if path := viper.ConfigFileUsed(); path != "" && !previewNoWatch {
				w, err := watch.New(path, settings, watch.WithLogger(log.Default().WithPrefix("watch")))
				if err != nil {
					log.Warn("not watching config file", "path", path, "err", err)
				} else {
					go func() {
						if err := w.Run(ctx); err != nil {
							log.Error("config watcher stopped", "err", err)
						}
					}()
				}
			}

			renderer := field.NewRenderer(field.NewSimplexNoise(cfg.Field.Seed))
			game := window.New(ctrl, renderer, log.Default().WithPrefix("preview"))
			return window.Run(game, "Anthozoa", previewWidth, previewHeight)
		},
	}
)

func init() {
	previewCmd.Flags().IntVar(&previewWidth, "width", 960, "initial window width")
	previewCmd.Flags().IntVar(&previewHeight, "height", 720, "initial window height")
	previewCmd.Flags().BoolVar(&previewFullscreen, "fullscreen", false, "start in fullscreen")
	previewCmd.Flags().BoolVar(&previewNoWatch, "no-watch", false, "do not reload the config file")
}
