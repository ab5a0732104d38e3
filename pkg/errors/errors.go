// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeStoreSessionNotFound    Code = "store.session.get.not_found"
	CodeStoreWriteFailure       Code = "store.session.write.failure"
	CodeStoreReadFailure        Code = "store.session.read.failure"
	CodeStoreConnectFailure     Code = "store.connect.failure"
	CodeStoreBackendUnsupported Code = "store.backend.unsupported"
	CodeStoreInvalidInput       Code = "store.invalid_input"

	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"

	CodeInterviewSessionExpired   Code = "interview.session.expired"
	CodeInterviewAlreadyCompleted Code = "interview.session.terminal"
	CodeInterviewAnswerInvalid    Code = "interview.answer.invalid_input"
	CodeInterviewStartInvalid     Code = "interview.start.invalid_input"

	CodeGeneratorRequestInvalid  Code = "generator.request.invalid"
	CodeGeneratorResponseInvalid Code = "generator.response.invalid"
	CodeGeneratorUpstreamFailure Code = "generator.upstream.failure"
	CodeGeneratorNotConfigured   Code = "generator.not_configured"

	CodeVoiceNotConfigured   Code = "voice.not_configured"
	CodeVoiceRequestInvalid  Code = "voice.request.invalid"
	CodeVoiceUpstreamFailure Code = "voice.upstream.failure"

	CodeSecretNotFound       Code = "secret.get.not_found"
	CodeSecretInvalidInput   Code = "secret.invalid_input"
	CodeSecretStoreFailure   Code = "secret.store.failure"
	CodeSecretDeleteFailure  Code = "secret.delete.failure"
	CodeSecretResolveFailure Code = "secret.resolve.failure"

	CodeServerRequestInvalid  Code = "server.request.invalid"
	CodeServerInternalFailure Code = "server.internal.failure"
	CodeServerStartFailure    Code = "server.start.failure"
	CodeServerShutdownFailure Code = "server.shutdown.failure"
	CodeServerUnavailable     Code = "server.dependency.unavailable"

	CodeCLIGatewayNotRunning Code = "cli.gateway.not_running"
	CodeCLIRequestFailure    Code = "cli.request.failure"
	CodeCLISetupFailure      Code = "cli.setup.failure"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldSessionID(value string) Attr {
	return Field("session_id", value)
}

func FieldBackend(value string) Attr {
	return Field("backend", value)
}

func FieldProvider(value string) Attr {
	return Field("provider", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

// With adds structured fields to an existing error chain.
func With(err error, fields ...Attr) error {
	if err == nil {
		return nil
	}

	code := CodeOf(err)
	if code == "" {
		code = CodeServerInternalFailure
	}

	return oops.Code(code).With(flatten(fields)...).Wrap(err)
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}

	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}

	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

func IsNotFound(err error) bool {
	return reason(CodeOf(err)) == "not_found"
}

// IsExpired reports whether err marks a session evicted by TTL. Expiry is the
// designed soft-delete outcome and must never be conflated with an
// infrastructure failure.
func IsExpired(err error) bool {
	return reason(CodeOf(err)) == "expired"
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid" || r == "invalid_input" || r == "invalid_value" || r == "invalid_format"
}

func IsNotConfigured(err error) bool {
	return reason(CodeOf(err)) == "not_configured"
}

func IsAlreadyCompleted(err error) bool {
	return HasCode(err, CodeInterviewAlreadyCompleted)
}

func IsUnavailable(err error) bool {
	return reason(CodeOf(err)) == "unavailable"
}

func IsTimeout(err error) bool {
	return reason(CodeOf(err)) == "timeout"
}

func IsUpstreamFailure(err error) bool {
	code := CodeOf(err)
	return strings.Contains(string(code), "upstream") && reason(code) == "failure"
}

// HTTPStatus maps an error to the status the HTTP layer should return.
// A terminal session maps to 400 rather than 409: clients built against the
// original API treat 410 as "start over" and any other 4xx as a rejected turn.
func HTTPStatus(err error) int {
	switch {
	case IsExpired(err):
		return http.StatusGone
	case IsAlreadyCompleted(err):
		return http.StatusBadRequest
	case IsNotConfigured(err):
		return http.StatusNotImplemented
	case IsNotFound(err):
		return http.StatusNotFound
	case IsInvalidInput(err):
		return http.StatusBadRequest
	case IsUnavailable(err):
		return http.StatusServiceUnavailable
	case IsTimeout(err):
		return http.StatusGatewayTimeout
	case IsUpstreamFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Join(errs ...error) error {
	return oops.Code(CodeServerInternalFailure).Wrap(stderrors.Join(errs...))
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}
