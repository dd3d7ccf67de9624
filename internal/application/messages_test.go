package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/medilens/internal/domain/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want model.ErrorKind
	}{
		{name: "validation", err: &model.ValidationError{Field: "symptoms", Message: "short"}, want: model.ErrorKindValidation},
		{name: "transport", err: &model.RequestError{Message: "network error: refused"}, want: model.ErrorKindTransport},
		{name: "wrapped transport", err: fmt.Errorf("analyzing text: %w", &model.RequestError{Message: "x"}), want: model.ErrorKindTransport},
		{name: "401", err: &model.RequestError{Message: "bad token", HTTPStatus: 401}, want: model.ErrorKindAuthentication},
		{name: "403", err: &model.RequestError{Message: "forbidden", HTTPStatus: 403}, want: model.ErrorKindAuthentication},
		{name: "credential text", err: &model.RequestError{Message: "Incorrect email or password", HTTPStatus: 400}, want: model.ErrorKindAuthentication},
		{name: "login rejected", err: &model.RequestError{Message: "nope", Err: ErrLoginRejected}, want: model.ErrorKindAuthentication},
		{name: "server", err: &model.RequestError{Message: "boom", HTTPStatus: 500}, want: model.ErrorKindServer},
		{name: "plain", err: errors.New("other"), want: model.ErrorKindServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "validation", err: &model.ValidationError{Message: MsgSymptomsTooShort}, want: MsgSymptomsTooShort},
		{name: "transport", err: &model.RequestError{Message: "network error: dial tcp"}, want: MsgNetworkError},
		{name: "server text", err: fmt.Errorf("analyzing: %w", &model.RequestError{Message: "quota exceeded", HTTPStatus: 429}), want: "quota exceeded"},
		{name: "signup rejected", err: &model.RequestError{Message: `{"ok":false}`, Err: ErrSignupRejected}, want: `{"ok":false}`},
		{name: "stale token", err: &model.RequestError{Message: "Something went wrong", HTTPStatus: 401}, want: MsgSessionInvalid},
		{name: "forbidden without body", err: &model.RequestError{Message: "HTTP 403 Forbidden", HTTPStatus: 403}, want: MsgSessionInvalid},
		{name: "same text as server error", err: &model.RequestError{Message: "Something went wrong", HTTPStatus: 500}, want: "Something went wrong"},
		{name: "bad credentials", err: &model.RequestError{Message: "Incorrect email or password", HTTPStatus: 401}, want: MsgBadCredentials},
		{name: "login rejected", err: &model.RequestError{Message: "Login failed", Err: ErrLoginRejected}, want: MsgLoginFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestUserMessage_AuthDistinctFromServer(t *testing.T) {
	auth := UserMessage(&model.RequestError{Message: "Unauthorized", HTTPStatus: 401})
	server := UserMessage(&model.RequestError{Message: "Unauthorized", HTTPStatus: 502})
	assert.NotEqual(t, auth, server)
}

func TestLoginMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: MsgLoginFailed},
		{name: "bad credentials", err: &model.RequestError{Message: "Incorrect email or password", HTTPStatus: 401}, want: MsgBadCredentials},
		{name: "404 status", err: &model.RequestError{Message: "HTTP 404 Not Found", HTTPStatus: 404}, want: MsgUserNotFound},
		{name: "not found text", err: &model.RequestError{Message: "user not found", HTTPStatus: 400}, want: MsgUserNotFound},
		{name: "transport", err: &model.RequestError{Message: "network error: timeout"}, want: MsgNetworkError},
		{name: "rejected without token", err: &model.RequestError{Message: "Incorrect email or password", Err: ErrLoginRejected}, want: MsgBadCredentials},
		{name: "rejected generic", err: &model.RequestError{Message: "Login failed", Err: ErrLoginRejected}, want: MsgLoginFailed},
		{name: "server", err: &model.RequestError{Message: "internal", HTTPStatus: 500}, want: MsgLoginFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LoginMessage(tt.err))
		})
	}
}
