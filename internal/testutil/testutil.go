// Package testutil provides testing utilities for posthub tests.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// MaildirSubdirs are the state directories of every mailbox.
var MaildirSubdirs = []string{"tmp", "new", "cur"}

// SetupTestRoot creates a temporary mailbox root with a complete Maildir for
// each user and a roster listing them. Returns the root path. The directory
// is automatically cleaned up when the test completes.
func SetupTestRoot(t *testing.T, users ...string) string {
	t.Helper()

	root := t.TempDir()
	for _, user := range users {
		CreateMaildir(t, root, user)
	}
	WriteRoster(t, root, users...)
	return root
}

// CreateMaildir creates user's Maildir triple under root, optionally leaving
// out some state directories.
func CreateMaildir(t *testing.T, root, user string, omit ...string) {
	t.Helper()

	for _, sub := range MaildirSubdirs {
		if contains(omit, sub) {
			continue
		}
		if err := os.MkdirAll(MaildirPath(root, user, sub), 0o755); err != nil {
			t.Fatalf("failed to create %s/%s: %v", user, sub, err)
		}
	}
}

// WriteRoster writes users, one per line, to root/users.txt.
func WriteRoster(t *testing.T, root string, users ...string) string {
	t.Helper()

	path := filepath.Join(root, "users.txt")
	content := strings.Join(users, "\n")
	if len(users) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write roster: %v", err)
	}
	return path
}

// MaildirPath returns root/<user>/Maildir/<sub>.
func MaildirPath(root, user, sub string) string {
	return filepath.Join(root, user, "Maildir", sub)
}

// WriteMessage places a message file directly into a state directory,
// bypassing delivery.
func WriteMessage(t *testing.T, root, user, sub, name, content string) string {
	t.Helper()

	path := filepath.Join(MaildirPath(root, user, sub), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write message %s: %v", name, err)
	}
	return path
}

// ListNames returns the sorted file names in root/<user>/Maildir/<sub>.
// A missing directory yields nil.
func ListNames(t *testing.T, root, user, sub string) []string {
	t.Helper()

	entries, err := os.ReadDir(MaildirPath(root, user, sub))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("failed to read %s/%s: %v", user, sub, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// ReadMessage returns the content of a message file.
func ReadMessage(t *testing.T, root, user, sub, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(MaildirPath(root, user, sub), name))
	if err != nil {
		t.Fatalf("failed to read message %s: %v", name, err)
	}
	return string(data)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
