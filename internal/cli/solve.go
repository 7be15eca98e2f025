package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	gerrors "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/grid"
	"github.com/matzehuels/gridpath/pkg/pipeline"
)

// solveOpts holds the command-line flags for the solve command.
type solveOpts struct {
	formats []string // output formats: text, json, graph, dot, svg
	output  string   // output file, or base path for several formats
	color   bool     // highlight the route when writing text to a terminal
	costs   bool     // label edges with step costs (dot, svg)
	noCache bool
	refresh bool // bypass cache reads
	stats   bool // print size, cost and cache status
}

// fileExt maps each format to the extension used for derived output paths.
// Text uses ".solved.txt" so a derived path never overwrites a .txt input.
var fileExt = map[string]string{
	pipeline.FormatText:  ".solved.txt",
	pipeline.FormatJSON:  ".json",
	pipeline.FormatGraph: ".graph.json",
	pipeline.FormatDOT:   ".dot",
	pipeline.FormatSVG:   ".svg",
}

// knownExts lists the extensions stripped from --output, longest first so
// ".graph.json" wins over ".json".
var knownExts = []string{".graph.json", ".solved.txt", ".json", ".dot", ".svg", ".txt"}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var formatsStr string
	opts := solveOpts{}

	cmd := &cobra.Command{
		Use:   "solve [file]",
		Short: "Mark the cheapest route from S to X on a map",
		Long: `Mark the cheapest route from S to X on a map.

The map is read from the given file, or from stdin when the file is "-" or
omitted. The start and every cell of the route are overwritten with '*'; all
other characters are kept. If X cannot be reached only S is marked.

Examples:
  gridpath solve maze.txt
  cat maze.txt | gridpath solve
  gridpath solve maze.txt -f json
  gridpath solve maze.txt -f text,svg -o out/maze`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = pipeline.ParseFormats(formatsStr)
			if len(opts.formats) == 0 {
				opts.formats = []string{pipeline.DefaultFormat}
			}
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runSolve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), input, opts)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): text (default), json, graph, dot, svg (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&opts.color, "color", true, "highlight the route in terminal output")
	cmd.Flags().BoolVar(&opts.costs, "costs", false, "label edges with step costs (dot, svg)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print map size, route cost and cache status")

	return cmd
}

// runSolve reads the map, runs the pipeline and writes the artifacts.
func (c *CLI) runSolve(ctx context.Context, stdin io.Reader, stdout io.Writer, input string, opts solveOpts) error {
	text, err := readMap(stdin, input)
	if err != nil {
		return err
	}
	if err := gerrors.ValidateMapText(text, 0); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	var spinner *Spinner
	if opts.output != "" && slices.Contains(opts.formats, pipeline.FormatSVG) {
		spinner = newSpinner(ctx, "Rendering svg...")
		spinner.Start()
	}

	result, err := runner.Execute(ctx, text, pipeline.Options{
		Formats: opts.formats,
		Costs:   opts.costs,
		Refresh: opts.refresh,
		Logger:  c.Logger,
	})
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Solve failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return err
	}

	if !result.Summary.Reachable {
		printWarning("X is not reachable from S; only the start is marked")
	}
	if opts.stats {
		printStats(solveStats{
			cells:     result.Stats.Cells,
			walls:     result.Stats.Walls,
			edges:     result.Stats.Edges,
			cost:      result.Summary.Cost,
			reachable: result.Summary.Reachable,
			cached:    result.CacheInfo.SolveHit,
		})
	}

	if opts.output == "" && len(opts.formats) == 1 {
		return writeStdout(stdout, result, opts)
	}

	paths, err := outputPaths(opts.output, input, opts.formats)
	if err != nil {
		return err
	}
	for _, format := range opts.formats {
		if err := writeFile(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
	}

	prog.done(fmt.Sprintf("Solved %s", displayName(input)))
	for _, format := range opts.formats {
		printFile(paths[format])
	}
	return nil
}

// readMap reads the map from input, or from stdin when input is "" or "-".
func readMap(stdin io.Reader, input string) (string, error) {
	var data []byte
	var err error
	if input == "" || input == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return "", fmt.Errorf("read map %s: %w", displayName(input), err)
	}
	return string(data), nil
}

// writeStdout writes the single requested artifact to stdout. Text output is
// terminated with a newline so the shell prompt starts on its own line.
func writeStdout(w io.Writer, result *pipeline.Result, opts solveOpts) error {
	format := opts.formats[0]
	data := result.Artifacts[format]
	if format != pipeline.FormatText {
		_, err := w.Write(data)
		return err
	}

	out := string(data)
	if opts.color && isTerminal(w) {
		marks := append([]grid.Position{result.Grid.Start().Pos}, result.Summary.Path...)
		out = highlightMap(out, marks)
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, err := io.WriteString(w, out)
	return err
}

// outputPaths decides where each format is written. A single format goes to
// output as given; several formats share the base path of output (or of the
// input file) with a per-format extension.
func outputPaths(output, input string, formats []string) (map[string]string, error) {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		if err := gerrors.ValidateOutputPath(output); err != nil {
			return nil, err
		}
		paths[formats[0]] = output
		return paths, nil
	}

	base := basePath(output, input)
	if base == "" {
		return nil, gerrors.New(gerrors.ErrCodeInvalidInput, "--output is required for multiple formats when reading stdin")
	}
	for _, format := range formats {
		path := base + fileExt[format]
		if err := gerrors.ValidateOutputPath(path); err != nil {
			return nil, err
		}
		paths[format] = path
	}
	return paths, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a known format extension, it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		if input == "" || input == "-" {
			return ""
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	for _, ext := range knownExts {
		if strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// isTerminal reports whether w is a character device such as a TTY.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func displayName(input string) string {
	if input == "" || input == "-" {
		return "stdin"
	}
	return input
}
