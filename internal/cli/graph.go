package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vrtour/pkg/errors"
	"github.com/matzehuels/vrtour/pkg/render"
	"github.com/matzehuels/vrtour/pkg/render/roomgraph"
)

// defaultGraphName is the output base name when the manifest is remote.
const defaultGraphName = "house"

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output  string   // output file (single format) or base path
	formats []string // "svg", "pdf", "png" or "dot"
	scale   float64  // PNG scale factor
	noCache bool
	refresh bool
	graph   roomgraph.Options
}

// graphCommand creates the graph command rendering room connectivity.
func (c *CLI) graphCommand() *cobra.Command {
	var formatsStr string
	opts := graphOpts{scale: 2}

	cmd := &cobra.Command{
		Use:   "graph [manifest]",
		Short: "Draw the room graph of a house",
		Long: `Draw which rooms link to which through their hotspots.

Rooms linked both ways share one double-headed edge. Hotspots pointing at
rooms the manifest does not define end at a dashed "missing" node. With
--layout plan, rooms are pinned at their floor plan coordinates.

Formats: svg (default), pdf, png and dot. PDF and PNG need rsvg-convert.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			switch opts.graph.Layout {
			case "", roomgraph.LayoutDot, roomgraph.LayoutPlan:
			default:
				return errors.New(errors.ErrCodeInvalidInput, "invalid layout: %s (must be 'dot' or 'plan')", opts.graph.Layout)
			}
			return c.runGraph(cmd.Context(), firstArg(args), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), pdf, png, dot (comma-separated)")
	cmd.Flags().StringVar(&opts.graph.Layout, "layout", roomgraph.LayoutDot, "layout: dot (ranked) or plan (floor plan positions)")
	cmd.Flags().BoolVar(&opts.graph.Detailed, "detailed", false, "label rooms with id, facing and hotspot count")
	cmd.Flags().BoolVar(&opts.graph.ShowMap, "map", false, "title the graph with the floor plan picture")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the manifest cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "refetch a remote manifest even when cached")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, location string, opts *graphOpts) error {
	logger := loggerFromContext(ctx)

	h, err := c.loadHouse(ctx, location, opts.noCache, opts.refresh)
	if err != nil {
		return err
	}
	if dangling := h.Dangling(); len(dangling) > 0 {
		printWarning("%d hotspot(s) point at unknown rooms", len(dangling))
	}

	dot := roomgraph.ToDOT(h, opts.graph)
	logger.Debug("built DOT", "rooms", len(h.Rooms), "bytes", len(dot))

	spin := newSpinner(ctx, "Rendering room graph...")
	spin.Start()
	outputs, err := renderGraph(ctx, dot, opts, c.graphBase(location, opts))
	if err != nil {
		spin.StopWithError("Rendering failed")
		return err
	}
	spin.StopWithSuccess(fmt.Sprintf("Rendered %d room(s)", len(h.Rooms)))
	for _, path := range outputs {
		printFile(path)
	}
	return nil
}

// renderGraph writes one file per format under base and returns the paths.
// SVG is rendered once and converted for the other raster formats.
func renderGraph(ctx context.Context, dot string, opts *graphOpts, base string) ([]string, error) {
	var svg []byte
	paths := make([]string, 0, len(opts.formats))
	for _, format := range opts.formats {
		var data []byte
		if format == formatDOT {
			data = []byte(dot)
		} else {
			if svg == nil {
				var err error
				if svg, err = roomgraph.RenderSVG(ctx, dot, opts.graph); err != nil {
					return paths, fmt.Errorf("render room graph: %w", err)
				}
			}
			var err error
			if data, err = render.Convert(svg, format, opts.scale); err != nil {
				return paths, err
			}
		}

		path := outputPath(opts.output, base, format, len(opts.formats) > 1)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// graphBase derives the output base path from -o or the manifest name.
func (c *CLI) graphBase(location string, opts *graphOpts) string {
	if opts.output != "" {
		return basePath(opts.output)
	}
	if location == "" {
		location = c.Config.Manifest.Source
	}
	if location == "" || errors.IsURL(location) {
		return defaultGraphName
	}
	return basePath(filepath.Base(location))
}

// =============================================================================
// Formats
// =============================================================================

const formatDOT = "dot"

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{
	render.FormatSVG: true,
	render.FormatPDF: true,
	render.FormatPNG: true,
	formatDOT:        true,
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(parts[i]))
	}
	return parts
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return errors.New(errors.ErrCodeInvalidInput, "invalid format: %s (must be 'svg', 'pdf', 'png' or 'dot')", f)
		}
	}
	return nil
}

// basePath strips a known format extension (or a .json manifest extension)
// from path.
func basePath(path string) string {
	ext := filepath.Ext(path)
	if e := strings.TrimPrefix(ext, "."); validFormats[e] || e == "json" {
		return strings.TrimSuffix(path, ext)
	}
	return path
}

// outputPath picks the file for one format. A single format written to an
// explicit -o path uses it verbatim.
func outputPath(output, base, format string, multiple bool) string {
	if output != "" && !multiple {
		return output
	}
	return base + "." + format
}
