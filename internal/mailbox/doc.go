// Package mailbox implements posthub's per-user message drop on top of the
// three-directory mailbox convention.
//
// Every user owns a directory triple under the mailbox root:
//
//	ROOT/<user>/Maildir/tmp   staging: messages being written
//	ROOT/<user>/Maildir/new   unread: published, not yet consumed
//	ROOT/<user>/Maildir/cur   read: consumed and archived
//
// A message's state is its directory. Rename is the only state transition:
// the delivery engine writes into tmp, flushes to stable storage, then renames
// into new; the consumption engine prints a message and renames it from new
// into cur. Readers therefore never see a partially written message, and
// nothing is ever deleted.
//
// # Main Types
//
//   - [Generator]: allocates collision-free message names
//   - [Store]: the mailbox root, its filesystem and shared collaborators
//   - [Mailbox]: one user's directory triple; delivers, consumes and lists
//   - [Message]: metadata about a message file in one state
//
// # Basic Usage
//
//	store := mailbox.NewStore("/var/posthub",
//	    mailbox.WithLogger(logger),
//	    mailbox.WithBus(bus),
//	)
//
//	id, err := store.Deliver("alice", []byte("ping"))
//
//	n, err := store.Consume("alice", os.Stdout)
//
// # Thread Safety
//
// Store, Mailbox and Generator are safe for concurrent use. Coordination with
// other processes relies only on exclusive file creation and atomic rename.
package mailbox
