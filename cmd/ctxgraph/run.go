package main

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/centraunit/ctxgraph"
	"github.com/centraunit/ctxgraph/internal/config"
)

type runFlags struct {
	metrics bool
}

func newRunCmd(root *rootFlags) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <graph.yaml>",
		Short: "Wrap a node graph and run its service steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := root.logger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			g, err := config.Load(args[0])
			if err != nil {
				return err
			}
			return runGraph(cmd.OutOrStdout(), g, logger, flags.metrics)
		},
	}

	cmd.Flags().BoolVar(&flags.metrics, "metrics", false, "Print context metrics after the run")

	return cmd
}

func runGraph(w io.Writer, g *config.Graph, logger *zap.Logger, withMetrics bool) error {
	tr := &trace{w: w}
	reg := prometheus.NewRegistry()

	opts := []ctxgraph.Option{ctxgraph.WithName(g.Name), ctxgraph.WithLogger(logger)}
	if withMetrics {
		opts = append(opts, ctxgraph.WithMetrics(reg))
	}
	c := ctxgraph.New(opts...)

	roots := buildNodes(g.Nodes, tr)
	for _, n := range roots {
		c.Wrap(n)
	}

	services := make(map[string]config.ServiceSpec, len(g.Services))
	for _, spec := range g.Services {
		services[spec.Tag] = spec
	}

	for i, step := range g.Steps {
		tag := scriptTag(step.Tag)
		switch step.Op {
		case config.OpStore:
			tr.add("step %d: store %s=%s", i, step.Tag, step.Component)
			ctxgraph.Store(c, tag, newScriptService(services[step.Tag], step.Component, tr))
		case config.OpRemove:
			tr.add("step %d: remove %s", i, step.Tag)
			ctxgraph.Remove(c, tag)
		case config.OpAwait:
			tr.add("step %d: await %s", i, step.Tag)
			future := ctxgraph.Awaitable(c, tag)
			if !future.Resolved() {
				tr.add("pending   %s", step.Tag)
			}
			name := step.Tag
			future.Then(func(svc *scriptService) {
				tr.add("resolved  %s=%s", name, svc.Component())
			})
		default:
			return fmt.Errorf("step %d: unknown op %q", i, step.Op)
		}
	}

	printSummary(w, c)
	if withMetrics {
		if err := printMetrics(w, reg); err != nil {
			return fmt.Errorf("gather metrics: %w", err)
		}
	}

	// Tokens are weak; roots must outlive the summary.
	runtime.KeepAlive(roots)
	return nil
}

func printSummary(w io.Writer, c *ctxgraph.Context) {
	fmt.Fprintf(w, "live tokens: %d\n", c.TokenCount())

	ids := c.Services()
	sort.Strings(ids)
	for _, id := range ids {
		component, _ := c.ComponentByID(id)
		fmt.Fprintf(w, "service %s: %v\n", id, component)
	}
	fmt.Fprintf(w, "pending: %d\n", c.PendingCount())
}

func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			}
			fmt.Fprintf(w, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), value)
		}
	}
	return nil
}
