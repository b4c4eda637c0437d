package main

import (
	"fmt"

	"github.com/fwojciec/wpmirror"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	stats, err := deps.Contents.Stats(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wpmirror.ErrorMessage(err))
		return err
	}

	total := 0
	for _, kind := range wpmirror.Kinds() {
		fmt.Fprintf(deps.Stdout, "%-12s %d\n", kind, stats[kind])
		total += stats[kind]
	}
	fmt.Fprintf(deps.Stdout, "%-12s %d\n", "total", total)

	return nil
}
