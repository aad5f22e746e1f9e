// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package browse_test

import (
	"testing"

	"github.com/absmach/opcua-adapter/browse"
	"github.com/stretchr/testify/assert"
)

func TestPathStackPushPopPrefix(t *testing.T) {
	s := browse.NewPathStack()
	s.Push("Objects")
	s.Push("Device")
	assert.Equal(t, "Objects/Device", s.Prefix())

	s.Pop()
	assert.Equal(t, "Objects", s.Prefix())
}

func TestPathStackPathFromAnonymousRoot(t *testing.T) {
	s := browse.NewPathStack()
	s.Push("")
	assert.Equal(t, "/Objects", s.Path("Objects"))
}

func TestPathStackPathNested(t *testing.T) {
	s := browse.NewPathStack()
	s.Push("")
	s.Push("Objects")
	assert.Equal(t, "/Objects/Temperature", s.Path("Temperature"))
}

func TestPathStackContains(t *testing.T) {
	s := browse.NewPathStack()
	s.Push("A")
	s.Push("B")
	assert.True(t, s.Contains("A"))
	assert.False(t, s.Contains("X"))
}
