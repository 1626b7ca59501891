package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/huntgraph/internal/backend"
	"github.com/gyaneshwarpardhi/huntgraph/internal/graph"
	"github.com/gyaneshwarpardhi/huntgraph/internal/render"
	"github.com/gyaneshwarpardhi/huntgraph/internal/viewstate"
)

type snapshotOptions struct {
	file    string
	filters []string
	focus   string
	asJSON  bool
	svgPath string
	scale   float64
}

func snapshotCmd() *cobra.Command {
	var opts snapshotOptions

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch the graph once and print the filtered view",
		Example: "  huntgraph snapshot --filter Strike --filter Monitor\n" +
			"  huntgraph snapshot --file graph.json --focus c1 --svg view.svg",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runSnapshot(ctx, cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.file, "file", "", "Read the graph payload from a file instead of the backend")
	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "Active classification (repeatable; default from config)")
	cmd.Flags().StringVar(&opts.focus, "focus", "", "Company id to focus")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the view as JSON")
	cmd.Flags().StringVar(&opts.svgPath, "svg", "", "Also write an SVG contact sheet of the visible nodes")
	cmd.Flags().Float64Var(&opts.scale, "scale", 2, "Zoom scale used for the SVG sheet")
	return cmd
}

func runSnapshot(ctx context.Context, out io.Writer, opts snapshotOptions) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	snap, source, err := readSnapshot(ctx, opts.file, cfg.Backend.BackendOptions())
	if err != nil {
		return err
	}

	state, err := cfg.Filters.InitialState()
	if err != nil {
		return err
	}
	if len(opts.filters) > 0 {
		active, err := graph.ParseClassificationSet(opts.filters)
		if err != nil {
			return err
		}
		state = viewstate.WithActive(active)
	}
	if opts.focus != "" {
		n, ok := graph.IndexNodes(snap.Nodes)[graph.NodeID(opts.focus)]
		if !ok {
			return fmt.Errorf("focus node %q not found", opts.focus)
		}
		if n.Type() != graph.NodeTypeCompany {
			slog.Warn("focus ignored: not a company", "id", opts.focus, "type", n.Type())
		}
		state = viewstate.Reduce(state, viewstate.ClickNode{ID: n.ID(), Type: n.Type()})
	}

	view := graph.Materialize(snap, state.Filter())

	if opts.svgPath != "" {
		if err := writeSVG(opts.svgPath, view, render.NewDispatcher(cfg.Render.Style(), state.Focus), opts.scale); err != nil {
			return err
		}
		slog.Info("svg sheet written", "path", opts.svgPath, "nodes", len(view.Nodes))
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	printView(out, source, snap, view)
	return nil
}

func readSnapshot(ctx context.Context, file string, opts backend.Options) (*graph.Snapshot, string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, "", fmt.Errorf("read graph file: %w", err)
		}
		snap, err := graph.DecodeSnapshot(data)
		if err != nil {
			return nil, "", fmt.Errorf("decode %s: %w", file, err)
		}
		snap.FetchedAt = time.Now()
		return snap, file, nil
	}
	opts.Logger = slog.Default()
	client, err := backend.New(opts)
	if err != nil {
		return nil, "", err
	}
	snap, err := client.FetchGraph(ctx)
	if err != nil {
		return nil, "", err
	}
	return snap, client.URL(), nil
}

func writeSVG(path string, view *graph.View, d *render.Dispatcher, scale float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create svg: %w", err)
	}
	if err := render.WriteSheet(f, view.Nodes, d, scale, render.DefaultSheetOptions()); err != nil {
		f.Close()
		return fmt.Errorf("write svg: %w", err)
	}
	return f.Close()
}

func printView(w io.Writer, source string, snap *graph.Snapshot, view *graph.View) {
	fmt.Fprintf(w, "%s %s\n\n", brand.Sprint("huntgraph"), subtle.Sprint(source))
	fmt.Fprintf(w, "  %s  %d of %d nodes, %d of %d links\n", brand.Sprintf("%-10s", "Visible"),
		len(view.Nodes), view.TotalNodes, len(view.Edges), view.TotalEdges)
	fmt.Fprintf(w, "  %s  %s\n", brand.Sprintf("%-10s", "Filters"), view.Active.String())
	if view.LatestStrategy != "" {
		fmt.Fprintf(w, "  %s  %s\n", brand.Sprintf("%-10s", "Strategy"), view.LatestStrategy)
	}
	if view.Focus != "" {
		fmt.Fprintf(w, "  %s  %s\n", brand.Sprintf("%-10s", "Focus"), view.Focus)
	}
	fmt.Fprintln(w)

	if len(view.Nodes) == 0 {
		info.Fprintln(w, "  Nothing visible. Try enabling more filters.")
	}
	revealed := make(map[graph.NodeID]bool, len(view.Revealed))
	for _, id := range view.Revealed {
		revealed[id] = true
	}
	var rows, plain [][]string
	for _, n := range view.Nodes {
		class := "-"
		colored := subtle.Sprint(class)
		if n.Type() == graph.NodeTypeCompany {
			c := graph.Classify(n)
			class = string(c)
			colored = classColor(c).Sprint(class)
		}
		label := render.TruncateLabel(n.Label(), 40)
		mark := ""
		if revealed[n.ID()] {
			mark = "revealed"
		}
		plain = append(plain, []string{string(n.ID()), string(n.Type()), class, label, mark})
		rows = append(rows, []string{string(n.ID()), string(n.Type()), colored, label, info.Sprint(mark)})
	}
	table(w, []string{"ID", "TYPE", "CLASS", "LABEL", ""}, rows, plain)

	if len(snap.Rejected) > 0 {
		fmt.Fprintln(w)
		warn.Fprintf(w, "  %d item(s) rejected\n", len(snap.Rejected))
		for _, r := range snap.Rejected {
			id := ""
			if r.ID != "" {
				id = " " + string(r.ID)
			}
			fmt.Fprintf(w, "    %s %s #%d%s: %s\n", warn.Sprint("!"), r.Kind, r.Index, id, strings.TrimSpace(r.Reason))
		}
	}
}
