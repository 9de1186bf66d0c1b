package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"graft/internal/diag"
	"graft/internal/diagfmt"
	"graft/internal/driver"
	"graft/internal/ui"
)

var expandCmd = &cobra.Command{
	Use:   "expand [flags] <unit.toml>...",
	Short: "Expand attached macros in compilation units",
	Long:  `Expand runs every unit through the macro engine under one manifest and prints the expanded source; diagnostics go to stderr`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExpand,
}

func init() {
	expandCmd.Flags().String("manifest", "graft.toml", "macro manifest path")
	expandCmd.Flags().String("format", "pretty", "diagnostics format (pretty|json)")
	expandCmd.Flags().Bool("check", false, "report diagnostics only, do not print expanded units")
	expandCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	expandCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	expandCmd.Flags().Bool("stats", false, "print per-unit expansion statistics")
	expandCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	expandCmd.Flags().Int("max-rounds", 0, "feedback round limit per unit (0=default)")
	expandCmd.Flags().Bool("disk-cache", false, "enable persistent disk cache for clean expansions")
	expandCmd.Flags().Bool("progress", false, "render interactive progress (requires a terminal)")
}

func runExpand(cmd *cobra.Command, args []string) error {
	manifestPath, err := cmd.Flags().GetString("manifest")
	if err != nil {
		return fmt.Errorf("failed to get manifest flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return fmt.Errorf("failed to get check flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	showStats, err := cmd.Flags().GetBool("stats")
	if err != nil {
		return fmt.Errorf("failed to get stats flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	maxRounds, err := cmd.Flags().GetInt("max-rounds")
	if err != nil {
		return fmt.Errorf("failed to get max-rounds flag: %w", err)
	}
	enableDiskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}
	progress, err := cmd.Flags().GetBool("progress")
	if err != nil {
		return fmt.Errorf("failed to get progress flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	colorMode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	opts := driver.Options{
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
		MaxRounds:      maxRounds,
	}
	if enableDiskCache {
		cache, err := driver.OpenDiskCache("graft")
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
		opts.Cache = cache
	}

	var prog *tea.Program
	progressDone := make(chan error, 1)
	if progress && isTerminal(os.Stdout) {
		observer, events := ui.ChannelObserver(len(args) * 2)
		opts.Observer = observer
		prog = tea.NewProgram(ui.NewProgressModel("graft expand", args, events))
		go func() {
			_, err := prog.Run()
			progressDone <- err
		}()
		defer close(events)
	}

	run, err := driver.ExpandUnits(cmd.Context(), manifestPath, args, opts)
	if prog != nil {
		prog.Quit()
		<-progressDone
	}
	if err != nil {
		return err
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	// Диагностики проекта и единиц — одним отсортированным набором на stderr.
	all := diag.NewBag(maxDiagnostics)
	all.Merge(run.Bag)
	for i := range run.Units {
		if run.Units[i].Bag != nil {
			all.Merge(run.Units[i].Bag)
		}
	}
	all.Sort()
	all.Dedup()

	if all.Len() > 0 {
		switch format {
		case "json":
			if err := diagfmt.JSON(os.Stderr, all, run.FileSet, diagfmt.JSONOpts{
				IncludePositions: true,
				PathMode:         pathMode,
				IncludeNotes:     withNotes,
			}); err != nil {
				return err
			}
		default:
			diagfmt.Pretty(os.Stderr, all, run.FileSet, diagfmt.PrettyOpts{
				Color:     useColor(colorMode, os.Stderr),
				PathMode:  pathMode,
				ShowNotes: withNotes,
			})
		}
	}

	if !check {
		for i := range run.Units {
			res := &run.Units[i]
			if len(run.Units) > 1 && !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "// %s\n", res.Path)
			}
			fmt.Fprint(cmd.OutOrStdout(), res.Rendered)
			if i+1 < len(run.Units) {
				fmt.Fprintln(cmd.OutOrStdout())
			}
		}
	}

	if showStats && !quiet {
		for i := range run.Units {
			res := &run.Units[i]
			fmt.Fprintf(os.Stderr, "%s: rounds=%d invocations=%d merged=%d discarded=%d cached=%t\n",
				res.Path, res.Stats.Rounds, res.Stats.Invocations,
				res.Stats.FragmentsMerged, res.Stats.FragmentsDiscarded, res.FromCache)
		}
	}

	if run.HasErrors() {
		cmd.SilenceUsage = true
		return fmt.Errorf("expansion reported errors")
	}
	return nil
}
