package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appErr "github.com/samims/notifier/internal/errors"
	"github.com/samims/notifier/internal/model"
	"github.com/samims/notifier/internal/store"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, evt model.NotificationRequested) error {
	return m.Called(ctx, evt).Error(0)
}

func newTestNotificationService(s store.NotificationStorage, pub Publisher) *notificationService {
	svc := NewNotificationService(s, pub, discardLogger()).(*notificationService)
	svc.newID = func() string { return "fixed-id" }
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc
}

func Test_notificationService_Create(t *testing.T) {
	valid := model.CreateRequest{
		Recipient: "user@example.com",
		Subject:   "Welcome",
		Body:      "Hello",
		Channel:   model.ChannelEmail,
	}
	wantEvent := model.NotificationRequested{
		NotificationID: "fixed-id",
		Recipient:      "user@example.com",
		Subject:        "Welcome",
		Body:           "Hello",
		Channel:        model.ChannelEmail,
		Timestamp:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	isPending := mock.MatchedBy(func(n *model.Notification) bool {
		return n.ID == "fixed-id" && n.Status == model.StatusPending && n.RetryCount == 0
	})

	tests := []struct {
		name    string
		req     model.CreateRequest
		setup   func(s *store.MockNotificationStorage, p *mockPublisher)
		want    *model.CreateResponse
		wantErr func(error) bool
	}{
		{
			name: "persisted then published",
			req:  valid,
			setup: func(s *store.MockNotificationStorage, p *mockPublisher) {
				s.On("Create", mock.Anything, isPending).Return("fixed-id", nil).Once()
				p.On("Publish", mock.Anything, wantEvent).Return(nil).Once()
			},
			want: &model.CreateResponse{ID: "fixed-id", Status: model.StatusPending, Message: "Notification created successfully"},
		},
		{
			name: "publish failure does not fail the request",
			req:  valid,
			setup: func(s *store.MockNotificationStorage, p *mockPublisher) {
				s.On("Create", mock.Anything, isPending).Return("fixed-id", nil).Once()
				p.On("Publish", mock.Anything, wantEvent).Return(errors.New("broker down")).Once()
			},
			want: &model.CreateResponse{ID: "fixed-id", Status: model.StatusPending, Message: "Notification created successfully"},
		},
		{
			name: "store failure publishes nothing",
			req:  valid,
			setup: func(s *store.MockNotificationStorage, p *mockPublisher) {
				s.On("Create", mock.Anything, isPending).Return("", errors.New("disk full")).Once()
			},
			wantErr: appErr.IsInternal,
		},
		{
			name:    "missing recipient",
			req:     model.CreateRequest{Subject: "s", Body: "b", Channel: model.ChannelSMS},
			setup:   func(*store.MockNotificationStorage, *mockPublisher) {},
			wantErr: appErr.IsValidation,
		},
		{
			name:    "blank body",
			req:     model.CreateRequest{Recipient: "r", Subject: "s", Body: "  ", Channel: model.ChannelPush},
			setup:   func(*store.MockNotificationStorage, *mockPublisher) {},
			wantErr: appErr.IsValidation,
		},
		{
			name:    "unknown channel",
			req:     model.CreateRequest{Recipient: "r", Subject: "s", Body: "b", Channel: "FAX"},
			setup:   func(*store.MockNotificationStorage, *mockPublisher) {},
			wantErr: appErr.IsValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.NewMockNotificationStorage(t)
			p := &mockPublisher{}
			p.Test(t)
			tt.setup(s, p)

			got, err := newTestNotificationService(s, p).Create(context.Background(), tt.req)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err), "unexpected error kind: %v", err)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			p.AssertExpectations(t)
		})
	}
}

func Test_notificationService_Get(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStorage()
	svc := NewNotificationService(s, &mockPublisher{}, discardLogger())

	_, err := svc.Get(ctx, "nope")
	assert.True(t, appErr.IsNotFound(err))

	n := &model.Notification{ID: "abc", Recipient: "r", Subject: "s", Body: "b", Channel: model.ChannelSMS, Status: model.StatusPending}
	_, err = s.Create(ctx, n)
	require.NoError(t, err)

	got, err := svc.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)
}
