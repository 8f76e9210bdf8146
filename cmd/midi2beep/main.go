// Package main is the entry point for midi2beep CLI
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/james-see/midi2beep/pkg/api"
	"github.com/james-see/midi2beep/pkg/converter"
	"github.com/james-see/midi2beep/pkg/converter/renderers"
	"github.com/james-see/midi2beep/pkg/preview"
	"github.com/james-see/midi2beep/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile string
	exportName string
	speed      float64
	channel    int
	mergeAll   bool
	reverse    bool
	oldLogic   bool
	noCopy     bool
	noPrint    bool
	quiet      bool
	serverPort int
	pxPerSec   float64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "midi2beep",
	Short: "Convert MIDI melodies into beep commands and buzzer sketches",
	Long: `midi2beep extracts a monophonic melody from a standard MIDI file and
renders it for the Linux beep utility or an Arduino piezo buzzer.

Examples:
  midi2beep convert song.mid
  midi2beep convert song.mid --no-copy
  midi2beep convert song.mid -o song.sh --speed 1.5
  midi2beep convert song.mid -e arduino -o song.ino --merge
  midi2beep mono song.mid -o melody.mid
  midi2beep preview song.mid -o song.png
  midi2beep tui
  midi2beep serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var convertCmd = &cobra.Command{
	Use:   "convert <input.mid>",
	Short: "Convert a MIDI file to beep commands",
	Long: `Extracts the melody of one channel (or all channels with --merge) and renders it.
The export format is taken from --export, then from the output file extension.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List available export formats",
	Args:  cobra.NoArgs,
	RunE:  runFormats,
}

var monoCmd = &cobra.Command{
	Use:   "mono <input.mid>",
	Short: "Write the extracted melody as a monophonic MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runMono,
}

var previewCmd = &cobra.Command{
	Use:   "preview <input.mid>",
	Short: "Draw the extracted melody as a PNG piano roll",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Extraction flags shared by convert, mono and preview
	for _, c := range []*cobra.Command{convertCmd, monoCmd, previewCmd} {
		c.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path")
		c.Flags().IntVarP(&channel, "channel", "c", 0, "MIDI channel to extract (0-15)")
		c.Flags().BoolVarP(&mergeAll, "merge", "m", false, "Merge all channels")
		c.Flags().BoolVarP(&reverse, "reverse", "r", false, "Prefer higher channels when notes start together")
		c.Flags().BoolVar(&oldLogic, "old-logic", false, "Order simultaneous events by tick only")
	}

	// convert command
	convertCmd.Flags().StringVarP(&exportName, "export", "e", "", "Export format ("+strings.Join(renderers.Names(), ", ")+")")
	convertCmd.Flags().Float64VarP(&speed, "speed", "s", 1.0, "Duration multiplier")
	convertCmd.Flags().BoolVar(&noCopy, "no-copy", false, "Do not copy the result to the clipboard")
	convertCmd.Flags().BoolVar(&noPrint, "no-print", false, "Do not print the result to stdout")
	convertCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress status messages")

	// preview command
	previewCmd.Flags().Float64Var(&pxPerSec, "px-per-sec", preview.DefaultOptions().PixelsPerSecond, "Horizontal scale")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(monoCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func buildOptions() (converter.Options, error) {
	if channel < 0 || channel > 15 {
		return converter.Options{}, fmt.Errorf("channel must be between 0 and 15, got %d", channel)
	}
	return converter.Options{
		Channel:  uint8(channel),
		Merge:    mergeAll,
		Ordering: converter.PolicyFor(reverse, oldLogic),
	}, nil
}

// pickRenderer resolves the export format from the flag, then the output
// extension, then the default
func pickRenderer(export, output string) (converter.Renderer, error) {
	if export != "" {
		return renderers.Lookup(export)
	}
	if r, ok := renderers.ForOutput(output); ok {
		return r, nil
	}
	return renderers.Lookup(renderers.DefaultFormat)
}

// shouldCopy reports whether the result goes to the clipboard. Results
// written to a file are not copied.
func shouldCopy(output string, noCopy bool) bool {
	return output == "" && !noCopy
}

func extract(input string, opts converter.Options) (*converter.Timeline, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return converter.New(nil).Extract(data, opts)
}

func status(w io.Writer, format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(w, format, args...)
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	r, err := pickRenderer(exportName, outputFile)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	stderr := cmd.ErrOrStderr()
	status(stderr, "Processing MIDI file: %s\n", input)

	text, tl, err := converter.New(r).Convert(data, opts, speed)
	if err != nil {
		return err
	}
	status(stderr, "Extracted %d notes/events\n", tl.Len())
	if tl.Pitched() == 0 {
		status(stderr, "Warning: no notes found on channel %d; try --merge or --channel\n", opts.Channel)
	}

	if !noPrint {
		fmt.Fprintln(cmd.OutOrStdout(), text)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		status(stderr, "Saved to %s\n", outputFile)
	}

	if shouldCopy(outputFile, noCopy) {
		if err := clipboard.WriteAll(text); err != nil {
			status(stderr, "Warning: could not copy to clipboard: %v\n", err)
		} else {
			status(stderr, "Copied to clipboard\n")
		}
	}

	status(stderr, "%d notes, %d rests, %.2fs\n", tl.Pitched(), tl.Rests(), tl.Duration()*speed)
	if strings.HasPrefix(r.Name(), "arduino") {
		status(stderr, "Connect the buzzer to pin 8\n")
	}
	return nil
}

func runFormats(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, r := range renderers.All() {
		fmt.Fprintf(out, "%-16s %-6s %s\n", r.Name(), r.Extension(), r.Description())
	}
	return nil
}

func runMono(cmd *cobra.Command, args []string) error {
	input := args[0]
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	tl, err := extract(input, opts)
	if err != nil {
		return err
	}

	output := outputFile
	if output == "" {
		output = converter.OutputPath(input, ".mid")
	}
	if err := converter.NewMIDIConverter().WriteMIDIFile(tl, output); err != nil {
		return fmt.Errorf("failed to write MIDI file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Converted %s -> %s (%d notes)\n", input, output, tl.Pitched())
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	input := args[0]
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	tl, err := extract(input, opts)
	if err != nil {
		return err
	}

	output := outputFile
	if output == "" {
		output = converter.OutputPath(input, ".png")
	}
	popts := preview.DefaultOptions()
	popts.PixelsPerSecond = pxPerSec
	if err := preview.SavePNG(tl, output, popts); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Converted %s -> %s\n", input, output)
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run()
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort)
}
