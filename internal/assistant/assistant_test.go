package assistant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespondMatchesKeywords(t *testing.T) {
	responder := NewResponder()

	cases := []struct {
		message string
		want    string
	}{
		{"How are matches scored?", "scored 0-100"},
		{"why is this schedule missing a truck", "approved matches only"},
		{"will rain delay tomorrow's haul?", "delay probability"},
		{"what does this conflict alert mean", "planner decision"},
		{"can contaminated soil be reused", "treated"},
		{"show me the cost savings", "disposal facility"},
		{"where is the pdf manifest", "printable PDF manifest"},
	}

	for _, tc := range cases {
		reply := responder.Respond(tc.message)
		assert.Contains(t, reply, tc.want, "message %q", tc.message)
	}
}

func TestRespondFallsBack(t *testing.T) {
	responder := NewResponder()

	reply := responder.Respond("what's for lunch")
	assert.True(t, strings.HasPrefix(reply, "I can help with"), reply)
}

func TestRespondIsCaseInsensitive(t *testing.T) {
	responder := NewResponder()

	assert.Equal(t, responder.Respond("WEATHER risk?"), responder.Respond("weather risk?"))
}
