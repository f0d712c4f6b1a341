package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Iron-Ham/posthub/internal/errors"
	"github.com/Iron-Ham/posthub/internal/testutil"
	"github.com/sebdah/goldie/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cmdResult struct {
	stdout string
	stderr string
	err    error
}

// executeCommand runs posthub with args on a fresh viper state and returns
// the captured streams. The error carries the exit code like Execute's.
func executeCommand(t *testing.T, args ...string) cmdResult {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := classify(root.Execute())
	return cmdResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// isolateConfig keeps the user's own config file out of the test.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("POSTHUB_ROOT", "")
}

// setupRoot creates a mailbox root with complete mailboxes for users.
func setupRoot(t *testing.T, users ...string) string {
	t.Helper()
	isolateConfig(t)
	return testutil.SetupTestRoot(t, users...)
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()
	assert.Equal(t, "posthub", root.Use)

	cmdMap := make(map[string]bool)
	for _, c := range root.Commands() {
		cmdMap[c.Name()] = true
	}
	for _, name := range []string{"send", "recv", "status", "init", "config"} {
		assert.True(t, cmdMap[name], "missing subcommand %q", name)
	}
}

func TestSendRecvEndToEnd(t *testing.T) {
	root := setupRoot(t, "alice")

	res := executeCommand(t, "--root", root, "send", "alice", "ping")
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "(alice) delivered: ")

	unread := testutil.ListNames(t, root, "alice", "new")
	require.Len(t, unread, 1)
	assert.Equal(t, "ping", testutil.ReadMessage(t, root, "alice", "new", unread[0]))
	assert.Empty(t, testutil.ListNames(t, root, "alice", "tmp"))

	res = executeCommand(t, "--root", root, "recv", "alice")
	require.NoError(t, res.err)
	assert.Equal(t, "ping\n", res.stdout)
	assert.Equal(t, "(alice) received: 1\n", res.stderr)

	assert.Empty(t, testutil.ListNames(t, root, "alice", "new"))
	assert.Equal(t, unread, testutil.ListNames(t, root, "alice", "cur"))

	// Nothing left to read.
	res = executeCommand(t, "--root", root, "recv", "alice")
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
	assert.Equal(t, "(alice) received: 0\n", res.stderr)
}

func TestSendQuotedMessage(t *testing.T) {
	root := setupRoot(t, "alice")

	res := executeCommand(t, "--root", root, "send", "alice", "ignored", `"lunch`, "is", `ready"`, "trailing")
	require.NoError(t, res.err)

	unread := testutil.ListNames(t, root, "alice", "new")
	require.Len(t, unread, 1)
	assert.Equal(t, "lunch is ready", testutil.ReadMessage(t, root, "alice", "new", unread[0]))
}

func TestSendAllPartialSuccess(t *testing.T) {
	root := setupRoot(t, "alice", "carol")
	testutil.CreateMaildir(t, root, "bob", "new", "cur")
	testutil.WriteRoster(t, root, "alice", "bob", "carol")

	res := executeCommand(t, "--root", root, "send", "all", "hi")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "(bob) not delivered: ")
	assert.Contains(t, res.stderr, "[send all] delivered=2 attempted=3")

	assert.Len(t, testutil.ListNames(t, root, "alice", "new"), 1)
	assert.Len(t, testutil.ListNames(t, root, "carol", "new"), 1)
	assert.Empty(t, testutil.ListNames(t, root, "bob", "tmp"))
}

func TestSendAllFailures(t *testing.T) {
	t.Run("nobody reachable", func(t *testing.T) {
		root := setupRoot(t)
		testutil.CreateMaildir(t, root, "bob", "new", "cur")
		testutil.WriteRoster(t, root, "bob")

		res := executeCommand(t, "--root", root, "send", "all", "hi")
		require.Error(t, res.err)
		assert.Equal(t, ExitFailure, GetExitCode(res.err))
		assert.ErrorIs(t, res.err, errors.ErrNoDeliveries)
		assert.ErrorIs(t, res.err, errors.ErrMailboxNotFound)
		assert.Contains(t, res.stderr, "[send all] delivered=0 attempted=1")
	})

	t.Run("only invalid names", func(t *testing.T) {
		root := setupRoot(t)
		testutil.WriteRoster(t, root, "../escape")

		res := executeCommand(t, "--root", root, "send", "all", "hi")
		assert.Equal(t, ExitFailure, GetExitCode(res.err))
		assert.ErrorIs(t, res.err, errors.ErrInvalidUser)
	})

	t.Run("empty roster", func(t *testing.T) {
		root := setupRoot(t)

		res := executeCommand(t, "--root", root, "send", "all", "hi")
		assert.Equal(t, ExitFailure, GetExitCode(res.err))
		assert.ErrorIs(t, res.err, errors.ErrRosterEmpty)
	})

	t.Run("missing roster", func(t *testing.T) {
		isolateConfig(t)
		root := t.TempDir()

		res := executeCommand(t, "--root", root, "send", "all", "hi")
		assert.Equal(t, ExitFailure, GetExitCode(res.err))
		assert.ErrorIs(t, res.err, errors.ErrRosterUnreadable)
	})
}

func TestSendMissingMailbox(t *testing.T) {
	root := setupRoot(t)

	res := executeCommand(t, "--root", root, "send", "nobody", "hi")
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
	assert.ErrorIs(t, res.err, errors.ErrMailboxNotFound)
	_, err := os.Stat(filepath.Join(root, "nobody"))
	assert.True(t, os.IsNotExist(err), "delivery must not create mailboxes")
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"fetch", "alice"}},
		{"send without message", []string{"send", "alice"}},
		{"send empty message", []string{"send", "alice", `""`}},
		{"send invalid user", []string{"send", "../etc", "hi"}},
		{"recv without user", []string{"recv"}},
		{"recv two users", []string{"recv", "alice", "bob"}},
		{"recv invalid user", []string{"recv", "a/b"}},
		{"unknown flag", []string{"recv", "--nope", "alice"}},
		{"init without users", []string{"init"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := setupRoot(t, "alice")
			res := executeCommand(t, append([]string{"--root", root}, tt.args...)...)
			require.Error(t, res.err)
			assert.Equal(t, ExitUsage, GetExitCode(res.err), "err = %v", res.err)
		})
	}
}

func TestRecvUnreadableMailbox(t *testing.T) {
	root := setupRoot(t)
	testutil.CreateMaildir(t, root, "dave", "new")

	res := executeCommand(t, "--root", root, "recv", "dave")
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "(dave) cannot open ")
	assert.Contains(t, res.stderr, "(dave) received: 0")
}

func TestRecvGolden(t *testing.T) {
	root := setupRoot(t, "alice")
	testutil.WriteMessage(t, root, "alice", "new", "00000001.MSG", "first")
	testutil.WriteMessage(t, root, "alice", "new", "00000002.MSG", "second\n")
	testutil.WriteMessage(t, root, "alice", "new", "notes.txt", "not a message")

	res := executeCommand(t, "--root", root, "recv", "alice")
	require.NoError(t, res.err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "recv", []byte(res.stdout))
	assert.Equal(t, "(alice) received: 2\n", res.stderr)
	assert.Equal(t, []string{"notes.txt"}, testutil.ListNames(t, root, "alice", "new"))
}

func TestStatusGolden(t *testing.T) {
	root := setupRoot(t, "alice", "carol")
	testutil.CreateMaildir(t, root, "bob", "new", "cur")
	testutil.WriteRoster(t, root, "alice", "bob", "carol")
	testutil.WriteMessage(t, root, "alice", "new", "00000001.MSG", "a")
	testutil.WriteMessage(t, root, "alice", "new", "00000002.MSG", "b")
	testutil.WriteMessage(t, root, "alice", "cur", "00000003.MSG", "c")
	testutil.WriteMessage(t, root, "carol", "tmp", "00000004.MSG", "d")

	res := executeCommand(t, "--root", root, "status")
	require.NoError(t, res.err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "status", []byte(res.stdout))
}

func TestStatusNamedUsers(t *testing.T) {
	root := setupRoot(t, "alice")

	res := executeCommand(t, "--root", root, "status", "alice", "zed")
	require.NoError(t, res.err)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "alice"))
	assert.Equal(t, "zed    missing", lines[2])
}

func TestInitCommand(t *testing.T) {
	isolateConfig(t)
	root := filepath.Join(t.TempDir(), "POSTHUB")

	res := executeCommand(t, "--root", root, "init", "alice", "bob")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Added alice to roster")

	for _, user := range []string{"alice", "bob"} {
		for _, sub := range testutil.MaildirSubdirs {
			info, err := os.Stat(testutil.MaildirPath(root, user, sub))
			require.NoError(t, err)
			assert.True(t, info.IsDir())
		}
	}

	res = executeCommand(t, "--root", root, "init", "bob", "carol")
	require.NoError(t, res.err)
	assert.NotContains(t, res.stdout, "Added bob")

	data, err := os.ReadFile(filepath.Join(root, "users.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alice\nbob\ncarol\n", string(data))

	// The provisioned mailboxes accept a broadcast.
	res = executeCommand(t, "--root", root, "send", "all", "welcome")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "delivered=3 attempted=3")
}

func TestRootFromEnvironment(t *testing.T) {
	root := setupRoot(t, "alice")
	t.Setenv("POSTHUB_ROOT", root)

	res := executeCommand(t, "send", "alice", "hello")
	require.NoError(t, res.err)
	assert.Len(t, testutil.ListNames(t, root, "alice", "new"), 1)
}

func TestConfigFile(t *testing.T) {
	root := setupRoot(t, "alice")
	require.NoError(t, os.WriteFile(filepath.Join(root, "team.txt"), []byte("alice\n"), 0o644))

	cfgPath := filepath.Join(t.TempDir(), "posthub.yaml")
	cfg := "root: " + root + "\nroster: team.txt\ndelivery:\n  file_mode: \"0600\"\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	res := executeCommand(t, "--config", cfgPath, "send", "all", "hi")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "delivered=1 attempted=1")

	unread := testutil.ListNames(t, root, "alice", "new")
	require.Len(t, unread, 1)
	info, err := os.Stat(filepath.Join(testutil.MaildirPath(root, "alice", "new"), unread[0]))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestInvalidConfig(t *testing.T) {
	root := setupRoot(t, "alice")

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("delivery:\n  max_id_attempts: 0\n"), 0o644))

	res := executeCommand(t, "--config", cfgPath, "--root", root, "send", "alice", "hi")
	assert.Equal(t, ExitUsage, GetExitCode(res.err))
	assert.Contains(t, res.err.Error(), "delivery.max_id_attempts")

	res = executeCommand(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--root", root, "recv", "alice")
	assert.Equal(t, ExitUsage, GetExitCode(res.err))
	assert.ErrorIs(t, res.err, &errors.ConfigurationError{})
}

func TestVerboseLogging(t *testing.T) {
	root := setupRoot(t, "alice")

	res := executeCommand(t, "--verbose", "--root", root, "send", "alice", "hi")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, `"msg":"message sent"`)
	assert.Contains(t, res.stderr, `"operation":"send"`)
	assert.Contains(t, res.stderr, `"type":"message.delivered"`)
}

func TestLogFile(t *testing.T) {
	root := setupRoot(t, "alice")
	logPath := filepath.Join(t.TempDir(), "posthub.log")

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := "logging:\n  enabled: true\n  level: debug\n  file: " + logPath + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	res := executeCommand(t, "--config", cfgPath, "--root", root, "send", "alice", "hi")
	require.NoError(t, res.err)
	assert.NotContains(t, res.stderr, `"msg"`)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"message sent"`)
	assert.Contains(t, string(data), `"op_id":`)
}

func TestConfigCommands(t *testing.T) {
	isolateConfig(t)
	cfgPath := filepath.Join(t.TempDir(), "posthub", "config.yaml")

	res := executeCommand(t, "--config", cfgPath, "config", "init")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Created config file at "+cfgPath)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_id_attempts: 256")
	assert.Contains(t, string(data), "root: ./POSTHUB")

	res = executeCommand(t, "--config", cfgPath, "config", "init")
	assert.Equal(t, ExitFailure, GetExitCode(res.err))

	res = executeCommand(t, "--config", cfgPath, "config", "path")
	require.NoError(t, res.err)
	assert.Equal(t, cfgPath+"\n", res.stdout)

	res = executeCommand(t, "--config", cfgPath, "--root", "/srv/mail", "config", "show")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "# Config file: "+cfgPath)
	assert.Contains(t, res.stdout, "root: /srv/mail")
	assert.Contains(t, res.stdout, "roster: users.txt")
}
