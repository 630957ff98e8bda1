package spades_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/iov-one/spades"
	"github.com/iov-one/spades/errors"
	"github.com/stretchr/testify/assert"
)

type counted struct {
	Name  string `json:"-"`
	Count int    `json:"count"`
}

func (c counted) EventName() string { return c.Name }

func TestCreateErrorResult(t *testing.T) {
	cases := map[string]struct {
		err      error
		debug    bool
		wantCode uint32
		wantLog  string
	}{
		"registered error": {
			err:      errors.Wrap(errors.ErrUnauthorized, "nonce"),
			wantCode: errors.ErrUnauthorized.ABCICode(),
			wantLog:  "nonce: unauthorized",
		},
		"unregistered error is redacted": {
			err:      fmt.Errorf("secret"),
			wantCode: 1,
			wantLog:  "internal error",
		},
		"unregistered error in debug mode": {
			err:      fmt.Errorf("secret"),
			debug:    true,
			wantCode: 1,
			wantLog:  "secret",
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			dres := spades.DeliverTxError(tc.err, tc.debug)
			assert.Equal(t, tc.wantCode, dres.Code)
			assert.True(t, strings.HasPrefix(dres.Log, "cannot deliver tx: "+tc.wantLog), dres.Log)

			cres := spades.CheckTxError(tc.err, tc.debug)
			assert.Equal(t, tc.wantCode, cres.Code)
			assert.True(t, strings.HasPrefix(cres.Log, "cannot check tx: "+tc.wantLog), cres.Log)
		})
	}
}

func TestCreateResults(t *testing.T) {
	d, msg := []byte{1, 3, 4}, "got it"
	dres := spades.DeliverResult{Data: d, Log: msg}
	ad := dres.ToABCI()
	assert.EqualValues(t, d, ad.Data)
	assert.Equal(t, msg, ad.Log)
	assert.Empty(t, ad.Tags)

	cres := spades.CheckResult{Log: "aok"}
	ac := cres.ToABCI()
	assert.Equal(t, "aok", ac.Log)
	assert.Empty(t, ac.Data)
}

func TestEventTags(t *testing.T) {
	res := spades.DeliverResult{
		Events: []spades.Event{
			counted{Name: "first", Count: 1},
			counted{Name: "second", Count: 2},
		},
	}
	tags := res.ToABCI().Tags
	assert.Equal(t, 2, len(tags))
	assert.Equal(t, "first", string(tags[0].Key))
	assert.JSONEq(t, `{"count": 1}`, string(tags[0].Value))
	assert.Equal(t, "second", string(tags[1].Key))

	parsed, err := spades.ParseDeliverOrError(res.ToABCI())
	assert.NoError(t, err)
	assert.Equal(t, tags, parsed.Tags)

	_, err = spades.ParseDeliverOrError(spades.DeliverTxError(errors.ErrNotFound, false))
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestEventsOf(t *testing.T) {
	events := []spades.Event{
		counted{Name: "a", Count: 1},
		counted{Name: "b", Count: 2},
		counted{Name: "a", Count: 3},
	}
	got := spades.EventsOf(events, "a")
	assert.Equal(t, []spades.Event{events[0], events[2]}, got)
	assert.Empty(t, spades.EventsOf(events, "c"))
}
