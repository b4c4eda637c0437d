package main

import (
	"fmt"

	"github.com/fwojciec/wpmirror"
)

// Run executes the sessions command.
func (c *SessionsCmd) Run(deps *Dependencies) error {
	sessions, err := deps.Sessions.FindSessions(deps.Ctx, wpmirror.SessionFilter{Limit: c.Limit})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wpmirror.ErrorMessage(err))
		return err
	}

	if len(sessions) == 0 {
		fmt.Fprintln(deps.Stdout, "No archive sessions recorded. Use 'wpmirror archive' to create one.")
		return nil
	}

	for _, s := range sessions {
		fmt.Fprintf(deps.Stdout, "%s  %s  processed=%d new=%d updated=%d errors=%d  %s\n",
			s.ID, s.CreatedAt.Format("2006-01-02 15:04:05"),
			s.Processed, s.New, s.Updated, s.Errors, s.Description)
	}

	return nil
}
