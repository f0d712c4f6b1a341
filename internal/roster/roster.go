// Package roster reads and maintains the list of users a broadcast is sent
// to. The roster is a text file with one user name per line.
package roster

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/Iron-Ham/posthub/internal/errors"
	"github.com/spf13/afero"
)

// Parse reads user names from r in order. Line endings (LF or CRLF) and
// surrounding whitespace are stripped; blank lines are skipped. Duplicates
// are kept.
func Parse(r io.Reader) ([]string, error) {
	var users []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		user := strings.TrimSpace(scanner.Text())
		if user == "" {
			continue
		}
		users = append(users, user)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Load reads the roster at path. A roster that cannot be opened or read is a
// *errors.ConfigurationError matching errors.ErrRosterUnreadable. An empty
// roster is not an error here; the broadcast decides what that means.
func Load(fs afero.Fs, path string) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, unreadable(path, err)
	}
	defer func() { _ = f.Close() }()

	users, err := Parse(f)
	if err != nil {
		return nil, unreadable(path, err)
	}
	return users, nil
}

func unreadable(path string, err error) error {
	return errors.NewConfigurationError("cannot read roster",
		errors.Join(errors.ErrRosterUnreadable, err)).WithPath(path)
}

// Add appends every user not already listed to the roster at path, creating
// the file if needed, and returns the names that were added. The existing
// content is preserved byte for byte.
func Add(fs afero.Fs, path string, users ...string) ([]string, error) {
	existing, err := afero.ReadFile(fs, path)
	if err != nil && !os.IsNotExist(err) {
		return nil, unreadable(path, err)
	}

	current, err := Parse(bytes.NewReader(existing))
	if err != nil {
		return nil, unreadable(path, err)
	}
	listed := make(map[string]bool, len(current))
	for _, u := range current {
		listed[u] = true
	}

	var added []string
	for _, u := range users {
		u = strings.TrimSpace(u)
		if u == "" || listed[u] {
			continue
		}
		listed[u] = true
		added = append(added, u)
	}
	if len(added) == 0 {
		return nil, nil
	}

	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.NewConfigurationError("cannot update roster", err).WithPath(path)
	}

	var buf bytes.Buffer
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		buf.WriteByte('\n')
	}
	for _, u := range added {
		buf.WriteString(u)
		buf.WriteByte('\n')
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return nil, errors.NewConfigurationError("cannot update roster", err).WithPath(path)
	}
	if err := f.Close(); err != nil {
		return nil, errors.NewConfigurationError("cannot update roster", err).WithPath(path)
	}
	return added, nil
}
