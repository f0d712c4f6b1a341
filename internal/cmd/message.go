package cmd

import (
	"strings"

	"github.com/Iron-Ham/posthub/internal/errors"
)

// assembleMessage builds the message text from the tokens after the
// recipient. When any token contains a double quote, the message spans from
// the first to the last such token, joined with single spaces and with every
// quote removed; tokens outside that span are ignored. Without quotes the
// first token is the whole message.
func assembleMessage(tokens []string) (string, error) {
	first, last := -1, -1
	for i, tok := range tokens {
		if strings.Contains(tok, `"`) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}

	var msg string
	switch {
	case first >= 0:
		msg = strings.ReplaceAll(strings.Join(tokens[first:last+1], " "), `"`, "")
	case len(tokens) > 0:
		msg = tokens[0]
	}

	if msg == "" {
		return "", errors.NewValidationError("message is empty").WithField("message")
	}
	return msg, nil
}
