package main

import (
	"fmt"

	wphttp "github.com/fwojciec/wpmirror/http"
)

// Run executes the serve command.
func (c *ServeCmd) Run(deps *Dependencies) error {
	server := wphttp.NewServer(deps.Contents, deps.Sessions, deps.Logger)
	server.Addr = c.Addr

	fmt.Fprintf(deps.Stdout, "Serving browse API on %s\n", c.Addr)

	return server.ListenAndServe(deps.Ctx)
}
