package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Subject string `json:"subject" validate:"required,not-blank"`
	Status  string `json:"status" validate:"omitempty,is-link-status"`
	State   string `json:"state" validate:"is-property-status"`
	Role    string `json:"role" validate:"is-user-role"`
}

func TestValidate(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&sample{Subject: "Reminder", Status: "bidding", State: "sold", Role: "county"}))

	err := v.Validate(&sample{Subject: "   ", Status: "lost", State: "open", Role: "admin"})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "This field is required", vErr.Errors["subject"])
	assert.Contains(t, vErr.Errors["status"], "invited")
	assert.Contains(t, vErr.Errors["state"], "withdrawn")
	assert.Contains(t, vErr.Errors["role"], "bidder")
}
