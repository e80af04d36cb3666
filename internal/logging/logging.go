// Package logging builds the injected structured logger and holds the
// sanitize-before-log helpers. Components receive a *zap.SugaredLogger
// explicitly; there is no process-wide logging singleton.
package logging

import (
	"strings"

	"go.uber.org/zap"
)

// New constructs a sugared zap logger. Development mode enables debug level
// and human-readable output.
func New(development bool) (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if development {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// RedactToken fully masks a credential. Tokens must never reach the logs,
// not even partially.
func RedactToken(token string) string {
	if token == "" {
		return ""
	}
	return "[REDACTED]"
}

// MaskLogin partially masks a user login so log lines stay correlatable
// without exposing the full identity.
func MaskLogin(login string) string {
	if login == "" {
		return ""
	}
	if len(login) <= 2 {
		return string(login[0]) + "***"
	}
	return login[:2] + "***"
}

// MaskEmail masks the local part of an address, keeping the domain.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return MaskLogin(email)
	}
	return MaskLogin(email[:at]) + "@" + email[at+1:]
}
