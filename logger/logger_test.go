// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/absmach/opcua-adapter/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logMsg struct {
	Level string `json:"level"`
	Msg   string `json:"msg"`
}

func TestNewLevels(t *testing.T) {
	cases := map[string]struct {
		level string
		err   bool
	}{
		"debug level":   {"debug", false},
		"info level":    {"info", false},
		"warn level":    {"warn", false},
		"error level":   {"error", false},
		"unknown level": {"trace", true},
	}

	for desc, tc := range cases {
		_, err := logger.New(&bytes.Buffer{}, tc.level)
		if tc.err {
			assert.Error(t, err, desc)
			continue
		}
		assert.NoError(t, err, desc)
	}
}

func TestInfoWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.New(&buf, "info")
	require.NoError(t, err)

	l.Info("hello")

	var out logMsg
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "INFO", out.Level)
	assert.Equal(t, "hello", out.Msg)
}

func TestDebugSuppressedAtInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.New(&buf, "info")
	require.NoError(t, err)

	l.Debug("should not appear")

	assert.Empty(t, buf.Bytes())
}
