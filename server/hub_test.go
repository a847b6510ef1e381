package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailcam/pipeline"
)

func TestHubPublishAndReceive(t *testing.T) {
	h := newDecisionHub()
	ch := h.Subscribe("a")
	require.Equal(t, 1, h.Subscribers())

	h.Publish(pipeline.Decision{Mode: pipeline.ModeActive})
	dec := <-ch
	assert.Equal(t, pipeline.ModeActive, dec.Mode)

	h.Unsubscribe("a")
	assert.Equal(t, 0, h.Subscribers())
	_, open := <-ch
	assert.False(t, open)
}

func TestHubSlowSubscriberGetsLatest(t *testing.T) {
	h := newDecisionHub()
	ch := h.Subscribe("slow")

	// Nobody reading: older decisions are replaced, never blocking.
	h.Publish(pipeline.Decision{Mode: pipeline.ModePrivacy})
	h.Publish(pipeline.Decision{Mode: pipeline.ModeNoSignal})
	h.Publish(pipeline.Decision{Mode: pipeline.ModeActive})

	dec := <-ch
	assert.Equal(t, pipeline.ModeActive, dec.Mode)
	h.Unsubscribe("slow")
}

func TestHubUnsubscribeUnknownIsNoop(t *testing.T) {
	h := newDecisionHub()
	h.Unsubscribe("ghost")
	assert.Equal(t, 0, h.Subscribers())
}
