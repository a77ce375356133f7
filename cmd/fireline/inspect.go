package main

import (
	"context"
	"fmt"

	"github.com/dusk-indust/fireline/internal/ctxlog"
	"github.com/dusk-indust/fireline/internal/export"
	"github.com/dusk-indust/fireline/internal/graph"
)

func runValidate(flags cliFlags) error {
	tpl, err := loadTemplate(flags)
	if err != nil {
		return err
	}

	mode := graph.Strict
	if flags.Lenient {
		mode = graph.Lenient
	}

	ctx := ctxlog.WithLogger(context.Background(), newLogger(flags.Verbose))
	g, err := graph.Build(ctx, tpl.Sections, mode)
	if err != nil {
		return err
	}
	order, err := graph.TopoOrder(g)
	if err != nil {
		return err
	}

	for _, w := range g.Warnings() {
		fmt.Printf("warning: %s\n", w)
	}

	stats := g.Stats()
	fmt.Printf("%s: %d sections, %d with dependencies, %d leaves, %d isolated\n",
		tpl.Name, stats.Total, stats.WithDependencies, stats.Leaves, stats.Isolated)
	fmt.Printf("processing order: %v\n", order)
	return nil
}

func runDiagram(flags cliFlags) error {
	tpl, err := loadTemplate(flags)
	if err != nil {
		return err
	}
	fmt.Print(export.Mermaid(tpl.Sections))
	return nil
}
