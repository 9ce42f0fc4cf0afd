package client

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		detail string
		public bool
		kind   Kind
		msg    string
	}{
		{401, "", false, KindUnauthorized, msgUnauthorized},
		{401, "ignored", false, KindUnauthorized, msgUnauthorized},
		{401, "", true, KindInvalidCredentials, msgInvalidCredentials},
		{401, "Bad password", true, KindInvalidCredentials, "Bad password"},
		{400, "", false, KindInvalidInput, msgInvalidInput},
		{403, "nope", false, KindForbidden, msgForbidden},
		{404, "", false, KindNotFound, msgNotFound},
		{409, "", true, KindConflict, msgConflict},
		{500, "trace", false, KindServerError, msgServerError},
		{503, "", false, KindUnknownStatus, "Request failed with status 503"},
		{422, "value error", false, KindUnknownStatus, "value error"},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d/%v", tc.status, tc.public), func(t *testing.T) {
			e := classifyStatus(tc.status, tc.detail, tc.public)
			assert.Equal(t, tc.kind, e.Kind)
			assert.Equal(t, tc.msg, e.Message)
			assert.Equal(t, tc.status, e.Status)
		})
	}
}

func TestError_IsMatchesOnlyItsSentinel(t *testing.T) {
	cause := errors.New("dial tcp: no such host")
	err := fmt.Errorf("load dashboard: %w", unreachable(cause))

	assert.ErrorIs(t, err, ErrUnreachable)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrServerError)
	assert.Equal(t, KindUnreachable, KindOf(err))
	assert.Equal(t, msgUnreachable, Message(err))
}

func TestMessageAndKindOf_PlainErrors(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, Kind(0), KindOf(errors.New("boom")))
}

func TestClientError_CarriesCauseMessage(t *testing.T) {
	e := clientError(errors.New("content is required"))
	assert.Equal(t, KindClientError, e.Kind)
	assert.Equal(t, "content is required", e.Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "unreachable", KindUnreachable.String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}
