// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"fmt"
	"log/slog"
)

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func levelFromString(text string) (slog.Level, error) {
	lvl, ok := levels[text]
	if !ok {
		return 0, fmt.Errorf("unknown log level: %q", text)
	}
	return lvl, nil
}
