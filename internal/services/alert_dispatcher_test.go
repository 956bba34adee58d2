package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"auction_backend/internal/email"
	"auction_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch_ParallelKeepsFailureOrder(t *testing.T) {
	provider := &fakeProvider{fail: map[string]error{
		"c@x.test": errors.New("c failed"),
		"a@x.test": errors.New("a failed"),
	}}
	d := NewAlertDispatcher(provider, email.NewTemplateManager(), DispatcherConfig{MaxParallel: 4, SendTimeout: time.Second})

	res := d.Dispatch(context.Background(), &models.Property{BaseModel: models.BaseModel{ID: "p"}},
		"s", "m", []string{"a@x.test", "b@x.test", "c@x.test", "d@x.test", "B@x.test"})

	assert.Equal(t, 2, res.Sent)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, "a@x.test", res.Failed[0].Email)
	assert.Equal(t, "c@x.test", res.Failed[1].Email)
	assert.ElementsMatch(t, []string{"b@x.test", "d@x.test"}, provider.sent)
}

func TestDispatch_SlowRecipientTimesOut(t *testing.T) {
	provider := &fakeProvider{block: true}
	d := NewAlertDispatcher(provider, email.NewTemplateManager(), DispatcherConfig{SendTimeout: 20 * time.Millisecond})

	start := time.Now()
	res := d.Dispatch(context.Background(), &models.Property{BaseModel: models.BaseModel{ID: "p"}}, "s", "m", []string{"slow@x.test", "slow2@x.test"})

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Zero(t, res.Sent)
	require.Len(t, res.Failed, 2)
	assert.Contains(t, res.Failed[0].Error, context.DeadlineExceeded.Error())
}

func TestDispatch_NoAddresses(t *testing.T) {
	d := NewAlertDispatcher(&fakeProvider{}, email.NewTemplateManager(), DispatcherConfig{})
	res := d.Dispatch(context.Background(), &models.Property{}, "s", "m", nil)
	assert.Zero(t, res.Sent)
	assert.NotNil(t, res.Failed)
	assert.Empty(t, res.Failed)
}

func TestPropertyURL(t *testing.T) {
	assert.Equal(t, "https://auctions.test/properties/p1", PropertyURL("https://auctions.test", "p1"))
	assert.Equal(t, "/properties/p1", PropertyPath("p1"))
}
