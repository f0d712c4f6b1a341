package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Iron-Ham/posthub/internal/errors"
	"github.com/Iron-Ham/posthub/internal/mailbox"
	"github.com/Iron-Ham/posthub/internal/roster"
	"github.com/Iron-Ham/posthub/internal/util"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [user...]",
		Short: "Show message counts per mailbox",
		Long: `Show how many messages each mailbox holds in staging (tmp), unread (new)
and read (cur). Without arguments every roster user is shown.

Staged messages are normally leftovers of interrupted deliveries.`,
		RunE: runStatus,
	}
}

// statusRow is one line of the status table.
type statusRow struct {
	user    string
	counts  mailbox.Counts
	problem string // non-empty when the mailbox could not be inspected
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	users := args
	if len(users) == 0 {
		users, err = roster.Load(a.store.Fs(), a.cfg.RosterPath())
		if err != nil {
			return err
		}
	}

	rows := make([]statusRow, 0, len(users))
	for _, user := range users {
		rows = append(rows, inspect(a.store, user))
	}

	out := cmd.OutOrStdout()
	renderStatus(out, rows, useColor(a.cfg.Display.Color, out))
	return nil
}

func inspect(store *mailbox.Store, user string) statusRow {
	row := statusRow{user: user}
	mb, err := store.Mailbox(user)
	if err != nil {
		row.problem = "invalid name"
		return row
	}
	if err := mb.Check(); err != nil {
		if errors.Is(err, errors.ErrMailboxNotFound) {
			row.problem = "missing"
		} else {
			row.problem = "unreadable"
		}
		return row
	}
	counts, err := mb.Counts()
	if err != nil {
		row.problem = "unreadable"
		return row
	}
	row.counts = counts
	return row
}

// useColor decides whether output to w is styled for mode "auto", "always"
// or "never".
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A78BFA"))
	userStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9FAFB"))
	unreadStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	stagingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	problemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
)

var statusHeader = []string{"USER", "STAGING", "UNREAD", "READ"}

// maxUserWidth caps the user column; longer names are cut.
const maxUserWidth = 24

func renderStatus(w io.Writer, rows []statusRow, color bool) {
	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, statusHeader)
	for _, r := range rows {
		user := util.FitWidth(r.user, maxUserWidth)
		if r.problem != "" {
			cells = append(cells, []string{user, r.problem, "", ""})
			continue
		}
		cells = append(cells, []string{
			user,
			strconv.Itoa(r.counts.Staging),
			strconv.Itoa(r.counts.Unread),
			strconv.Itoa(r.counts.Read),
		})
	}

	widths := make([]int, len(statusHeader))
	for _, line := range cells {
		for i, c := range line {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}

	for li, line := range cells {
		var b strings.Builder
		for i, c := range line {
			padded := util.PadRight(c, widths[i])
			if color {
				padded = cellStyle(li, i, rows).Render(padded)
			}
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(padded)
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

func cellStyle(line, col int, rows []statusRow) lipgloss.Style {
	if line == 0 {
		return headerStyle
	}
	r := rows[line-1]
	switch {
	case col == 0:
		return userStyle
	case r.problem != "":
		return problemStyle
	case col == 1 && r.counts.Staging > 0:
		return stagingStyle
	case col == 2 && r.counts.Unread > 0:
		return unreadStyle
	default:
		return mutedStyle
	}
}
