package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "eventgate/pkg/domain-errors"
)

func TestErrorMapsToUnauthorized(t *testing.T) {
	for _, reason := range []Reason{ReasonNotFound, ReasonInactive, ReasonBadCredential, ReasonInvalidToken} {
		err := NewError(reason, nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized), reason)
		assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
		assert.Equal(t, reason, ReasonOf(err))
	}
}

func TestCredentialReasonsShareOneMessage(t *testing.T) {
	assert.Equal(t,
		dErrors.MessageOf(NewError(ReasonNotFound, nil)),
		dErrors.MessageOf(NewError(ReasonBadCredential, nil)),
	)
	assert.Equal(t,
		dErrors.MessageOf(NewError(ReasonNotFound, nil)),
		dErrors.MessageOf(NewError(ReasonInactive, nil)),
	)
}

func TestErrorKeepsCause(t *testing.T) {
	cause := errors.New("signature is invalid")
	err := NewError(ReasonInvalidToken, cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, Reason(""), ReasonOf(cause))
}
