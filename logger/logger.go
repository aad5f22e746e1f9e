// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package logger builds the slog.Logger shared by every service decorator.
package logger

import (
	"io"
	"log/slog"
)

// New returns a JSON slog.Logger writing to out at the given level
// ("debug", "info", "warn" or "error").
func New(out io.Writer, levelText string) (*slog.Logger, error) {
	level, err := levelFromString(levelText)
	if err != nil {
		return nil, err
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler), nil
}
