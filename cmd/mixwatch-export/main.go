// Command mixwatch-export turns a saved dashboard snapshot into
// shareable artifacts without launching the UI.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mixwatch/mixwatch/backend"
	"github.com/mixwatch/mixwatch/export"
)

var (
	snapshotPath string
	seed         int64
	weeks        int
)

func main() {
	root := &cobra.Command{
		Use:   "mixwatch-export",
		Short: "Render dashboard snapshots as SVG charts or xlsx workbooks",
		Long: `mixwatch-export reads a snapshot saved from the dashboard and renders
it into standalone artifacts. Without --snapshot it renders a synthetic
dataset, which is handy for checking styling changes.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&snapshotPath, "snapshot", "", "snapshot JSON file saved from the dashboard")
	root.PersistentFlags().Int64Var(&seed, "seed", 1, "synthetic dataset seed when no snapshot is given")
	root.PersistentFlags().IntVar(&weeks, "weeks", 104, "synthetic dataset length when no snapshot is given")

	root.AddCommand(svgCmd(), xlsxCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadSnapshot() (backend.Snapshot, error) {
	if snapshotPath == "" {
		return backend.NewSyntheticDataset(seed, weeks).Snapshot(), nil
	}
	file, err := os.Open(snapshotPath)
	if err != nil {
		return backend.Snapshot{}, fmt.Errorf("failed opening snapshot: %w", err)
	}
	defer file.Close()
	var snap backend.Snapshot
	if err := json.NewDecoder(file).Decode(&snap); err != nil {
		return backend.Snapshot{}, fmt.Errorf("failed decoding snapshot: %w", err)
	}
	return snap, nil
}

func svgCmd() *cobra.Command {
	var (
		outDir string
		width  int
	)
	cmd := &cobra.Command{
		Use:   "svg",
		Short: "Write series, channel, and response-curve charts as SVG files",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed creating output dir: %w", err)
			}
			charts := []struct {
				name   string
				render func() (string, error)
			}{
				{"series.svg", func() (string, error) { return export.SeriesSVG(snap.National, width, 0) }},
				{"channels.svg", func() (string, error) { return export.BarsSVG(snap.Channels, width, 0) }},
				{"curves.svg", func() (string, error) { return export.CurvesSVG(snap.Curves, width, 0) }},
			}
			for _, chart := range charts {
				svg, err := chart.render()
				if err == export.ErrNoData {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: no data\n", chart.name)
					continue
				} else if err != nil {
					return fmt.Errorf("failed rendering %s: %w", chart.name, err)
				}
				path := filepath.Join(outDir, chart.name)
				if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
					return fmt.Errorf("failed writing %s: %w", chart.name, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write SVG files into")
	cmd.Flags().IntVar(&width, "width", 800, "chart width in pixels")
	return cmd
}

func xlsxCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "xlsx",
		Short: "Write the full snapshot as an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot()
			if err != nil {
				return err
			}
			f, err := export.Workbook(snap)
			if err != nil {
				return err
			}
			if err := f.SaveAs(outPath); err != nil {
				return fmt.Errorf("failed writing workbook: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "mixwatch.xlsx", "workbook path to write")
	return cmd
}
