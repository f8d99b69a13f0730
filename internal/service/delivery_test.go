package service

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	appErr "github.com/samims/notifier/internal/errors"
	"github.com/samims/notifier/internal/model"
)

func TestSimulatedSender_Send(t *testing.T) {
	n := model.Notification{ID: "n1", Channel: model.ChannelPush, Recipient: "device-token"}

	ok := NewSimulatedSender(0, FailureFunc(func(model.Notification) bool { return false }), discardLogger())
	assert.NoError(t, ok.Send(context.Background(), n))

	failing := NewSimulatedSender(0, FailureFunc(func(model.Notification) bool { return true }), discardLogger())
	err := failing.Send(context.Background(), n)
	assert.True(t, appErr.IsSendFailed(err))
	assert.Contains(t, err.Error(), "PUSH")

	noPolicy := NewSimulatedSender(0, nil, discardLogger())
	assert.NoError(t, noPolicy.Send(context.Background(), n))
}

func TestRandomFailure_Rate(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		min  int
		max  int
	}{
		{name: "never", rate: 0, min: 0, max: 0},
		{name: "always", rate: 1, min: 1000, max: 1000},
		{name: "twenty percent", rate: 0.2, min: 120, max: 280},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewRandomFailure(tt.rate, rand.New(rand.NewSource(42)))
			failures := 0
			for i := 0; i < 1000; i++ {
				if f.ShouldFail(model.Notification{}) {
					failures++
				}
			}
			assert.GreaterOrEqual(t, failures, tt.min)
			assert.LessOrEqual(t, failures, tt.max)
		})
	}
}
