package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/Iron-Ham/posthub/internal/errors"
	"github.com/Iron-Ham/posthub/internal/event"
	"github.com/spf13/cobra"
)

func newRecvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recv <user>",
		Short: "Print and archive a user's unread messages",
		Long: `Print every unread message of a user to stdout, one per line, and move
each printed message to the read set. The number of messages received is
reported on stderr.

With --watch, recv keeps running and prints new messages as they arrive
until interrupted.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: runRecv,
	}
	cmd.Flags().BoolP("watch", "w", false, "keep receiving messages as they arrive")
	return cmd
}

func runRecv(cmd *cobra.Command, args []string) error {
	user := args[0]

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	mb, err := a.store.Mailbox(user)
	if err != nil {
		return err
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	a.bus.Subscribe(event.TypeMessageDeferred, func(e event.Event) {
		if ev, ok := e.(event.MessageDeferredEvent); ok {
			fmt.Fprintf(stderr, "(%s) kept unread: %s\n", ev.User, ev.MessageID)
		}
	})
	report := func(n int) {
		fmt.Fprintf(stderr, "(%s) received: %d\n", user, n)
	}

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return receiveErr(stderr, user, mb.Watch(ctx, stdout, report))
	}

	n, err := mb.ConsumeAll(stdout)
	if err != nil {
		return receiveErr(stderr, user, err)
	}
	report(n)
	return nil
}

// receiveErr reports an unreadable unread directory as a diagnostic with
// nothing received; every other error fails the command.
func receiveErr(stderr io.Writer, user string, err error) error {
	var ce *errors.ConsumptionError
	if errors.As(err, &ce) {
		fmt.Fprintf(stderr, "(%s) cannot open %s\n", user, ce.Dir)
		fmt.Fprintf(stderr, "(%s) received: 0\n", user)
		return nil
	}
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
