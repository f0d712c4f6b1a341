package cmd

import (
	"fmt"

	"github.com/Iron-Ham/posthub/internal/roster"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <user...>",
		Short: "Create mailboxes and add their owners to the roster",
		Long: `Create <root>/<user>/Maildir/{tmp,new,cur} for each user and append the
users that are not yet listed to the roster. Existing mailboxes and
roster entries are left untouched.

Delivery never creates mailboxes, so a user must be initialized before
they can receive messages.`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: runInit,
	}
	cmd.Flags().Bool("no-roster", false, "create the mailboxes without touching the roster")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	out := cmd.OutOrStdout()
	for _, user := range args {
		mb, err := a.store.Provision(user)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Created mailbox %s\n", mb.Dir())
	}

	if skip, _ := cmd.Flags().GetBool("no-roster"); skip {
		return nil
	}

	added, err := roster.Add(a.store.Fs(), a.cfg.RosterPath(), args...)
	if err != nil {
		return err
	}
	for _, user := range added {
		fmt.Fprintf(out, "Added %s to roster %s\n", user, a.cfg.RosterPath())
	}
	return nil
}
