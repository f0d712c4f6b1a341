package mailbox

import "testing"

func TestState(t *testing.T) {
	tests := []struct {
		state State
		dir   string
		name  string
	}{
		{StateStaging, "tmp", "staging"},
		{StateUnread, "new", "unread"},
		{StateRead, "cur", "read"},
		{State(9), "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Dir(); got != tt.dir {
				t.Errorf("Dir() = %q, want %q", got, tt.dir)
			}
			if got := tt.state.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
		})
	}
}

func TestIsMessageName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"6712AB01.MSG", true},
		{"6712ab01.msg", true},
		{"X.Msg", true},
		{".MSG", false},
		{"6712AB01.MSGX", false},
		{"6712AB01.txt", false},
		{"MSG", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMessageName(tt.name); got != tt.want {
				t.Errorf("IsMessageName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestCounts_Total(t *testing.T) {
	c := Counts{Staging: 1, Unread: 2, Read: 3}
	if c.Total() != 6 {
		t.Errorf("Total() = %d, want 6", c.Total())
	}
}
