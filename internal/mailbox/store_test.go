package mailbox

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Iron-Ham/posthub/internal/errors"
	"github.com/Iron-Ham/posthub/internal/testutil"
	"github.com/spf13/afero"
)

// newTestStore creates a store over a temporary root with provisioned users.
func newTestStore(t *testing.T, opts []Option, users ...string) (*Store, string) {
	t.Helper()
	root := testutil.SetupTestRoot(t, users...)
	return NewStore(root, opts...), root
}

func fixedGenerator() *Generator {
	return NewGenerator(WithClock(fixedClock), WithDifferentiator(0xA))
}

func TestValidateUser(t *testing.T) {
	tests := []struct {
		user  string
		valid bool
	}{
		{"alice", true},
		{"bob.smith", true},
		{"user-01", true},
		{"", false},
		{".", false},
		{"..", false},
		{"a/b", false},
		{`a\b`, false},
		{"nul\x00byte", false},
		{" alice", false},
		{"alice\r", false},
	}

	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			err := ValidateUser(tt.user)
			if tt.valid {
				if err != nil {
					t.Errorf("ValidateUser(%q) error = %v", tt.user, err)
				}
				return
			}
			if !errors.Is(err, errors.ErrInvalidUser) {
				t.Errorf("ValidateUser(%q) error = %v, want ErrInvalidUser", tt.user, err)
			}
			if !errors.IsUsageError(err) {
				t.Errorf("ValidateUser(%q) should be a usage error", tt.user)
			}
		})
	}
}

func TestStore_Mailbox(t *testing.T) {
	store := NewStore("/srv/posthub")

	mb, err := store.Mailbox("alice")
	if err != nil {
		t.Fatalf("Mailbox() error = %v", err)
	}
	if mb.User() != "alice" {
		t.Errorf("User() = %q, want alice", mb.User())
	}
	want := filepath.Join("/srv/posthub", "alice", "Maildir")
	if mb.Dir() != want {
		t.Errorf("Dir() = %q, want %q", mb.Dir(), want)
	}
	if mb.Path(StateUnread) != filepath.Join(want, "new") {
		t.Errorf("Path(StateUnread) = %q", mb.Path(StateUnread))
	}

	if _, err := store.Mailbox("../etc"); err == nil {
		t.Error("Mailbox() should reject path traversal")
	}
}

func TestStore_Provision(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore("/root", WithFs(fs))

	mb, err := store.Provision("carol")
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if err := mb.Check(); err != nil {
		t.Errorf("Check() after Provision error = %v", err)
	}

	// Provisioning twice is harmless.
	if _, err := store.Provision("carol"); err != nil {
		t.Errorf("second Provision() error = %v", err)
	}
	if _, err := store.Provision("a/b"); err == nil {
		t.Error("Provision() should reject invalid user names")
	}
}

func TestMailbox_Check(t *testing.T) {
	t.Run("complete", func(t *testing.T) {
		store, _ := newTestStore(t, nil, "alice")
		mb, _ := store.Mailbox("alice")
		if err := mb.Check(); err != nil {
			t.Errorf("Check() error = %v", err)
		}
	})

	t.Run("missing subdirectory", func(t *testing.T) {
		store, root := newTestStore(t, nil)
		testutil.CreateMaildir(t, root, "bob", "cur")
		mb, _ := store.Mailbox("bob")

		err := mb.Check()
		if !errors.Is(err, errors.ErrMailboxNotFound) {
			t.Fatalf("Check() error = %v, want ErrMailboxNotFound", err)
		}
	})

	t.Run("file in place of directory", func(t *testing.T) {
		store, root := newTestStore(t, nil)
		testutil.CreateMaildir(t, root, "dave", "new")
		if err := os.WriteFile(testutil.MaildirPath(root, "dave", "new"), nil, 0o644); err != nil {
			t.Fatal(err)
		}
		mb, _ := store.Mailbox("dave")

		if err := mb.Check(); !errors.Is(err, errors.ErrMailboxNotFound) {
			t.Errorf("Check() error = %v, want ErrMailboxNotFound", err)
		}
	})
}

func TestNewStore_Defaults(t *testing.T) {
	store := NewStore("root")
	if store.Root() != "root" {
		t.Errorf("Root() = %q", store.Root())
	}
	if store.Fs() == nil || store.gen == nil || store.logger == nil {
		t.Fatal("NewStore should populate defaults")
	}
	if store.fileMode != 0o644 {
		t.Errorf("fileMode = %o, want 644", store.fileMode)
	}

	custom := NewStore("root", WithFileMode(0o600), WithPollInterval(time.Second), WithPollInterval(-1))
	if custom.fileMode != 0o600 {
		t.Errorf("fileMode = %o, want 600", custom.fileMode)
	}
	if custom.pollInterval != time.Second {
		t.Errorf("pollInterval = %v, want 1s", custom.pollInterval)
	}
}
