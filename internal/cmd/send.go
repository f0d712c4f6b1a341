package cmd

import (
	"fmt"

	"github.com/Iron-Ham/posthub/internal/dispatch"
	"github.com/Iron-Ham/posthub/internal/roster"
	"github.com/spf13/cobra"
)

// broadcastTarget is the recipient that addresses every roster user.
const broadcastTarget = "all"

func newSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <user|all> <message...>",
		Short: "Deliver a message to a user or to everyone in the roster",
		Long: `Deliver a message into a user's mailbox, or into the mailbox of every
user listed in the roster when the recipient is "all".

The message is the first argument after the recipient. If any argument
contains a double quote, the message instead runs from the first to the
last such argument, joined by spaces, with the quotes removed:

  posthub send alice hello
  posthub send all '"lunch' is 'ready"'

A broadcast succeeds when at least one user received the message;
recipients whose mailbox is missing are reported and skipped.`,
		Args: usageArgs(cobra.MinimumNArgs(2)),
		RunE: runSend,
	}
}

func runSend(cmd *cobra.Command, args []string) error {
	msg, err := assembleMessage(args[1:])
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if args[0] == broadcastTarget {
		return sendToAll(cmd, a, []byte(msg))
	}

	user := args[0]
	id, err := a.store.Deliver(user, []byte(msg))
	if err != nil {
		return err
	}
	a.logger.Info("message sent", "user", user, "message", id)
	fmt.Fprintf(cmd.ErrOrStderr(), "(%s) delivered: %s\n", user, id)
	return nil
}

func sendToAll(cmd *cobra.Command, a *app, payload []byte) error {
	users, err := roster.Load(a.store.Fs(), a.cfg.RosterPath())
	if err != nil {
		return err
	}

	d := dispatch.New(a.store, dispatch.WithLogger(a.logger), dispatch.WithBus(a.bus))
	res, err := d.DeliverToAll(users, payload)

	stderr := cmd.ErrOrStderr()
	for _, f := range res.Failures {
		fmt.Fprintf(stderr, "(%s) not delivered: %v\n", f.User, f.Err)
	}
	fmt.Fprintf(stderr, "[send all] delivered=%d attempted=%d\n", res.Delivered, res.Attempted)
	if err != nil {
		// Operational even when every roster name was invalid.
		return WrapExitError(ExitFailure, "broadcast failed", err)
	}
	return nil
}
