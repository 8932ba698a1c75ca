package main

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/anthozoa/anthozoa/internal/canvas"
	"github.com/anthozoa/anthozoa/internal/field"
)

const (
	formatPNG  = "png"
	formatSVG  = "svg"
	formatAPNG = "apng"
)

type renderOptions struct {
	output string
	format string
	width  int
	height int
	at     time.Duration
	frames int
	fps    int
	seed   int64
	dryRun bool
}

var (
	renderOpts renderOptions

	renderCmd = &cobra.Command{
		Use:   "render",
		Short: "Render the flow field to PNG, SVG or APNG",
		Long: paragraph(fmt.Sprintf("\n%s one frame of the flow field, or an animated PNG of several frames, using the field settings from the config file.",
			keyword("Render"))),
		Example: paragraph("anthozoa render -o field.png\nanthozoa render -o field.svg --at 2s\nanthozoa render -o loop.apng --frames 60 --fps 30"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			opts := renderOpts
			if !cmd.Flags().Changed("seed") {
				opts.seed = cfg.Field.Seed
			}
			return runRender(cmd.OutOrStdout(), opts, cfg.Field.Parameters())
		},
	}
)

// inferFormat picks the output format from the flag or the file extension.
func inferFormat(format, output string) (string, error) {
	if format != "" {
		switch f := strings.ToLower(format); f {
		case formatPNG, formatSVG, formatAPNG:
			return f, nil
		default:
			return "", fmt.Errorf("unknown format %q: use png, svg or apng", format)
		}
	}
	switch strings.ToLower(filepath.Ext(output)) {
	case ".svg":
		return formatSVG, nil
	case ".apng":
		return formatAPNG, nil
	default:
		return formatPNG, nil
	}
}

func runRender(stdout io.Writer, opts renderOptions, params field.Parameters) error {
	if opts.width <= 0 || opts.height <= 0 {
		return fmt.Errorf("invalid size %dx%d", opts.width, opts.height)
	}
	format, err := inferFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	renderer := field.NewRenderer(field.NewSimplexNoise(opts.seed))
	w, h := float64(opts.width), float64(opts.height)

	if opts.dryRun {
		var rec canvas.Recorder
		renderer.RenderFrame(&rec, params, w, h, opts.at)
		_, err := fmt.Fprintf(stdout, "%s strokes on a %dx%d canvas at t=%.4f\n",
			humanize.Comma(int64(len(rec.Lines))), opts.width, opts.height, renderer.TimeCoord())
		return err
	}

	if format == formatAPNG {
		return renderAPNG(renderer, opts, params)
	}

	out, closeOut, err := openOutput(stdout, opts.output, format)
	if err != nil {
		return err
	}
	defer closeOut()

	switch format {
	case formatSVG:
		doc := canvas.NewSVG(out, opts.width, opts.height)
		renderer.RenderFrame(doc, params, w, h, opts.at)
		doc.End()
	default:
		r := canvas.NewRaster(opts.width, opts.height)
		defer r.Close()
		renderer.RenderFrame(r, params, w, h, opts.at)
		if err := r.Err(); err != nil {
			return fmt.Errorf("unable to draw frame: %w", err)
		}
		if err := r.EncodePNG(out); err != nil {
			return fmt.Errorf("unable to encode png: %w", err)
		}
	}
	log.Info("rendered frame", "format", format, "output", opts.output, "width", opts.width, "height", opts.height)
	return nil
}

func renderAPNG(renderer *field.Renderer, opts renderOptions, params field.Parameters) error {
	if opts.output == "" || opts.output == "-" {
		return errors.New("apng output needs a file path")
	}
	if opts.frames <= 0 || opts.fps <= 0 {
		return fmt.Errorf("invalid animation: %d frames at %d fps", opts.frames, opts.fps)
	}

	frameTime := time.Second / time.Duration(opts.fps)
	frames := make([]image.Image, 0, opts.frames)
	r := canvas.NewRaster(opts.width, opts.height)
	defer r.Close()
	for i := range opts.frames {
		renderer.RenderFrame(r, params, float64(opts.width), float64(opts.height), opts.at+time.Duration(i)*frameTime)
		if err := r.Err(); err != nil {
			return fmt.Errorf("unable to draw frame %d: %w", i, err)
		}
		frames = append(frames, r.Snapshot())
	}
	if err := canvas.SaveAPNG(opts.output, frames, opts.fps); err != nil {
		return err
	}
	log.Info("rendered animation", "output", opts.output, "frames", opts.frames, "fps", opts.fps)
	return nil
}

// openOutput returns the destination for a rendered file. Binary data is
// never written to a terminal.
func openOutput(stdout io.Writer, output, format string) (io.Writer, func(), error) {
	if output == "" || output == "-" {
		if f, ok := stdout.(*os.File); ok && format != formatSVG && term.IsTerminal(int(f.Fd())) { //nolint:gosec
			return nil, nil, errors.New("refusing to write binary data to a terminal; use --output")
		}
		return stdout, func() {}, nil
	}
	f, err := os.Create(output)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func init() {
	renderCmd.Flags().StringVarP(&renderOpts.output, "output", "o", "", "output file, - for stdout")
	renderCmd.Flags().StringVar(&renderOpts.format, "format", "", "png, svg or apng (default from the output extension)")
	renderCmd.Flags().IntVar(&renderOpts.width, "width", 800, "canvas width in pixels")
	renderCmd.Flags().IntVar(&renderOpts.height, "height", 600, "canvas height in pixels")
	renderCmd.Flags().DurationVar(&renderOpts.at, "at", 0, "elapsed time of the first frame")
	renderCmd.Flags().IntVar(&renderOpts.frames, "frames", 30, "number of apng frames")
	renderCmd.Flags().IntVar(&renderOpts.fps, "fps", 30, "apng frame rate")
	renderCmd.Flags().Int64Var(&renderOpts.seed, "seed", 0, "noise seed (default from config)")
	renderCmd.Flags().BoolVar(&renderOpts.dryRun, "dry-run", false, "count strokes without drawing")
}
