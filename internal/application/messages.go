package application

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ericfisherdev/medilens/internal/domain/model"
)

// User-facing failure texts.
const (
	MsgNetworkError     = "Network error. Please check your connection and try again."
	MsgBadCredentials   = "Incorrect email or password. Please try again."
	MsgUserNotFound     = "User not found. Please check your email and try again."
	MsgLoginFailed      = "Login failed. Please try again."
	MsgSignupFailed     = "Signup failed"
	MsgSignupSucceeded  = "Account created. Please log in."
	MsgLoginSucceeded   = "Logged in successfully!"
	MsgSymptomsTooShort = "Please describe symptoms in a few words."
	MsgImageRequired    = "Choose an image file first"
	MsgSessionInvalid   = "Your session is no longer valid. Please log in again."
)

const credentialFailureText = "Incorrect email or password"

// rejected reports whether err is a well-formed response the session refused.
// Such errors carry no status but are not transport failures.
func rejected(err error) bool {
	return errors.Is(err, ErrLoginRejected) || errors.Is(err, ErrSignupRejected)
}

// Classify assigns an error to one of the user-facing categories.
func Classify(err error) model.ErrorKind {
	var vErr *model.ValidationError
	if errors.As(err, &vErr) {
		return model.ErrorKindValidation
	}

	if errors.Is(err, ErrLoginRejected) {
		return model.ErrorKindAuthentication
	}
	if errors.Is(err, ErrSignupRejected) {
		return model.ErrorKindServer
	}

	var reqErr *model.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.IsTransport():
			return model.ErrorKindTransport
		case reqErr.HTTPStatus == http.StatusUnauthorized, reqErr.HTTPStatus == http.StatusForbidden:
			return model.ErrorKindAuthentication
		case strings.Contains(reqErr.Message, credentialFailureText):
			return model.ErrorKindAuthentication
		}
	}

	return model.ErrorKindServer
}

// UserMessage renders an error for display. An authentication failure outside
// of login reads as an invalid session; the credential itself is kept.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var vErr *model.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}

	var reqErr *model.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.IsTransport() && !rejected(err) {
			return MsgNetworkError
		}
		if Classify(err) == model.ErrorKindAuthentication {
			if errors.Is(err, ErrLoginRejected) || strings.Contains(reqErr.Message, credentialFailureText) {
				return LoginMessage(err)
			}
			return MsgSessionInvalid
		}
		return reqErr.Message
	}

	return err.Error()
}

// LoginMessage renders a login failure. Unrecognized failures get a generic
// text so that server internals are not shown on the login screen.
func LoginMessage(err error) string {
	if err == nil {
		return MsgLoginFailed
	}

	text := err.Error()
	var reqErr *model.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.IsTransport() && !rejected(err) {
			return MsgNetworkError
		}
		text = reqErr.Message
		if reqErr.HTTPStatus == http.StatusNotFound {
			return MsgUserNotFound
		}
	}

	switch {
	case strings.Contains(text, credentialFailureText):
		return MsgBadCredentials
	case strings.Contains(text, "not found"), strings.Contains(text, "404"):
		return MsgUserNotFound
	case strings.Contains(strings.ToLower(text), "network"):
		return MsgNetworkError
	default:
		return MsgLoginFailed
	}
}
