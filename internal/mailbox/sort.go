package mailbox

import (
	"cmp"
	"slices"
)

// sortMessages orders messages by name. Names begin with the delivery time,
// so this approximates delivery order within one mailbox.
func sortMessages(msgs []Message) {
	slices.SortStableFunc(msgs, func(a, b Message) int {
		return cmp.Compare(a.Name, b.Name)
	})
}
