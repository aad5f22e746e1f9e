// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package omap_test

import (
	"testing"

	"github.com/absmach/opcua-adapter/omap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetDelete(t *testing.T) {
	m := omap.New[int]()
	m.Set("a", 1)
	m.Set("b", 2)

	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	assert.True(t, m.Delete("a"))
	assert.False(t, m.Delete("a"))

	_, ok = m.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
}

func TestInsertionOrderPreserved(t *testing.T) {
	m := omap.New[string]()
	m.Set("z", "first")
	m.Set("a", "second")
	m.Set("m", "third")

	assert.Equal(t, []string{"z", "a", "m"}, m.Keys())

	m.Set("a", "updated")
	assert.Equal(t, []string{"z", "a", "m"}, m.Keys(), "update must not reorder")
}

func TestRangeStopsEarly(t *testing.T) {
	m := omap.New[int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)

	var seen []string
	m.Range(func(key string, _ int) bool {
		seen = append(seen, key)
		return key != "b"
	})

	assert.Equal(t, []string{"a", "b"}, seen)
}
