package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-engine/pkg"
)

// fakeChat is a scripted llm.Chat.
type fakeChat struct {
	reply string
	err   error
	calls int
}

func (f *fakeChat) Generate(_ context.Context, _ string, _ []*schema.Message, _ string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func TestPatternTierShortCircuits(t *testing.T) {
	local := &fakeChat{reply: "complex"}
	hosted := &fakeChat{reply: "complex"}
	c := New(local, hosted, 0)

	v := c.Classify(context.Background(), "it's too expensive for me")
	assert.Equal(t, pkg.IntentObjection, v.Intent)
	assert.Equal(t, 0.85, v.Confidence)
	assert.Zero(t, local.calls, "model tiers must not run on a pattern match")
	assert.Zero(t, hosted.calls)

	v = c.Classify(context.Background(), "what's the mileage?")
	assert.Equal(t, pkg.IntentSimpleQuestion, v.Intent)
	assert.Equal(t, 0.85, v.Confidence)
}

func TestAllTiersFailReturnsComplexDefault(t *testing.T) {
	local := &fakeChat{err: errors.New("connection refused")}
	hosted := &fakeChat{err: errors.New("503")}
	c := New(local, hosted, 0)

	v := c.Classify(context.Background(), "I was wondering about something")
	assert.Equal(t, pkg.IntentComplex, v.Intent)
	assert.Equal(t, 0.5, v.Confidence)
	assert.Contains(t, v.Reason, "failed")
	assert.Equal(t, 1, local.calls)
	assert.Equal(t, 1, hosted.calls)
}

func TestLocalFailureFallsThroughToHosted(t *testing.T) {
	local := &fakeChat{err: errors.New("unreachable")}
	hosted := &fakeChat{reply: "objection"}
	c := New(local, hosted, 0)

	v := c.Classify(context.Background(), "hmm, some unmatched text about trucks")
	assert.Equal(t, pkg.IntentObjection, v.Intent)
	assert.Equal(t, 0.9, v.Confidence)
}

// With the default threshold the local tier's 0.7 can never terminate the
// cascade; the hosted tier is always consulted after it.
func TestLocalVerdictBelowThresholdConsultsHosted(t *testing.T) {
	local := &fakeChat{reply: "objection"}
	hosted := &fakeChat{reply: "simple_question"}
	c := New(local, hosted, 0)

	v := c.Classify(context.Background(), "no pattern here at all")
	assert.Equal(t, pkg.IntentSimpleQuestion, v.Intent)
	assert.Equal(t, 1, local.calls)
	assert.Equal(t, 1, hosted.calls)
}

func TestLoweredThresholdLetsLocalTierDecide(t *testing.T) {
	local := &fakeChat{reply: "objection"}
	hosted := &fakeChat{reply: "complex"}
	c := New(local, hosted, 0.6)

	v := c.Classify(context.Background(), "no pattern here at all")
	assert.Equal(t, pkg.IntentObjection, v.Intent)
	assert.Equal(t, 0.7, v.Confidence)
	assert.Zero(t, hosted.calls)
}

func TestNilModelsStillClassify(t *testing.T) {
	c := New(nil, nil, 0)
	v := c.Classify(context.Background(), "totally free-form message")
	require.Equal(t, pkg.IntentComplex, v.Intent)
	assert.Equal(t, 0.5, v.Confidence)
}

func TestParseIntent(t *testing.T) {
	cases := []struct {
		reply string
		want  pkg.Intent
	}{
		{"objection", pkg.IntentObjection},
		{"Objection.", pkg.IntentObjection},
		{"This looks like an OBJECTION to price", pkg.IntentObjection},
		{"simple_question", pkg.IntentSimpleQuestion},
		{"Simple question about colour", pkg.IntentSimpleQuestion},
		{"complex", pkg.IntentComplex},
		{"I am not sure", pkg.IntentComplex},
		{"", pkg.IntentComplex},
		// Objection wins when a reply rambles over several keywords.
		{"could be an objection or a simple_question", pkg.IntentObjection},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseIntent(tc.reply), "reply: %q", tc.reply)
	}
}
