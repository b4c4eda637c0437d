package main

import (
	"fmt"

	"github.com/fwojciec/wpmirror"
	"github.com/fwojciec/wpmirror/archive"
)

// Run executes the archive command.
func (c *ArchiveCmd) Run(deps *Dependencies) error {
	opts := archive.Options{Limit: c.Limit}

	for _, raw := range c.Types {
		kind, err := wpmirror.ParseKind(raw)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", wpmirror.ErrorMessage(err))
			return err
		}
		opts.Kinds = append(opts.Kinds, kind)
	}

	if c.AfterDate != "" {
		after, err := wpmirror.ParseAfterDate(c.AfterDate)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", wpmirror.ErrorMessage(err))
			return err
		}
		opts.After = after
	}

	fmt.Fprintf(deps.Stdout, "Archiving %s\n", c.Domain)

	stats, err := deps.Archiver.Run(deps.Ctx, c.Domain, opts)
	if err != nil && wpmirror.ErrorCode(err) != wpmirror.ECANCELED {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wpmirror.ErrorMessage(err))
		return err
	}

	if stats != nil {
		fmt.Fprintf(deps.Stdout, "  Processed %d items: %d new, %d updated, %d unchanged\n",
			stats.Processed, stats.New, stats.Updated, stats.Processed-stats.New-stats.Updated-stats.Errors)
		if stats.Errors > 0 {
			fmt.Fprintf(deps.Stdout, "  %d errors\n", stats.Errors)
			for _, line := range stats.ErrorLog {
				fmt.Fprintf(deps.Stderr, "  error: %s\n", line)
			}
		}
	}

	if err != nil {
		fmt.Fprintln(deps.Stdout, "Interrupted - progress saved")
		return err
	}
	return nil
}
