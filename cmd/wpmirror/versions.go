package main

import (
	"fmt"

	"github.com/fwojciec/wpmirror"
)

// Run executes the versions command.
func (c *VersionsCmd) Run(deps *Dependencies) error {
	kind, err := wpmirror.ParseKind(c.Type)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wpmirror.ErrorMessage(err))
		return err
	}

	versions, err := deps.Contents.ContentVersions(deps.Ctx, kind, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wpmirror.ErrorMessage(err))
		return err
	}

	if len(versions) == 0 {
		fmt.Fprintf(deps.Stdout, "No versions stored for %s %d\n", kind, c.ID)
		return nil
	}

	for _, v := range versions {
		fmt.Fprintf(deps.Stdout, "v%-3d %s  %s  %s\n",
			v.Version, v.StoredAt.Format("2006-01-02 15:04:05"), v.Fingerprint[:12], v.Label())
	}

	return nil
}
