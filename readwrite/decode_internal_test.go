// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package readwrite

import (
	"testing"
	"time"

	"github.com/gopcua/opcua/ua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absmach/opcua-adapter/message"
)

func TestDecodeArrayPerType(t *testing.T) {
	now := time.Unix(1700000000, 0)
	nid := ua.NewNumericNodeID(2, 42)
	qn := &ua.QualifiedName{NamespaceIndex: 2, Name: "Demo"}
	lt := &ua.LocalizedText{Locale: "en", Text: "hello"}

	cases := []struct {
		name  string
		t     ua.TypeID
		elems []interface{}
		check func(t *testing.T, v *message.Value)
	}{
		{"sbyte", ua.TypeIDSByte, []interface{}{int8(-5), int8(5)}, func(t *testing.T, v *message.Value) {
			assert.Equal(t, message.TypeSByte, v.Type)
			assert.Equal(t, []int8{-5, 5}, v.Int8)
		}},
		{"byte", ua.TypeIDByte, []interface{}{uint8(1), uint8(2)}, func(t *testing.T, v *message.Value) {
			assert.Equal(t, message.TypeByte, v.Type)
			assert.Equal(t, []uint8{1, 2}, v.Uint8)
		}},
		{"int16", ua.TypeIDInt16, []interface{}{int16(-1), int16(1)}, func(t *testing.T, v *message.Value) {
			assert.Equal(t, message.TypeInt16, v.Type)
			assert.Equal(t, []int16{-1, 1}, v.Int16)
		}},
		{"uint16", ua.TypeIDUint16, []interface{}{uint16(1), uint16(2)}, func(t *testing.T, v *message.Value) {
			assert.Equal(t, message.TypeUInt16, v.Type)
			assert.Equal(t, []uint16{1, 2}, v.Uint16)
		}},
		{"int64", ua.TypeIDInt64, []interface{}{int64(-7), int64(7)}, func(t *testing.T, v *message.Value) {
			assert.Equal(t, message.TypeInt64, v.Type)
			assert.Equal(t, []int64{-7, 7}, v.Int64)
		}},
		{"uint64", ua.TypeIDUint64, []interface{}{uint64(7), uint64(8)}, func(t *testing.T, v *message.Value) {
			assert.Equal(t, message.TypeUInt64, v.Type)
			assert.Equal(t, []uint64{7, 8}, v.Uint64)
		}},
		{"datetime", ua.TypeIDDateTime, []interface{}{now}, func(t *testing.T, v *message.Value) {
			assert.Equal(t, message.TypeDateTime, v.Type)
			assert.Equal(t, []int64{now.Unix()}, v.DateTime)
		}},
		{"nodeid", ua.TypeIDNodeID, []interface{}{nid}, func(t *testing.T, v *message.Value) {
			assert.Equal(t, message.TypeNodeID, v.Type)
			require.Len(t, v.NodeID, 1)
			assert.Equal(t, uint16(2), v.NodeID[0].NamespaceIndex)
		}},
		{"qualifiedname", ua.TypeIDQualifiedName, []interface{}{qn}, func(t *testing.T, v *message.Value) {
			assert.Equal(t, message.TypeQualifiedName, v.Type)
			require.Len(t, v.QName, 1)
			assert.Equal(t, "Demo", v.QName[0].Name)
		}},
		{"localizedtext", ua.TypeIDLocalizedText, []interface{}{lt}, func(t *testing.T, v *message.Value) {
			assert.Equal(t, message.TypeLocalizedText, v.Type)
			require.Len(t, v.LocText, 1)
			assert.Equal(t, "en", v.LocText[0].Locale)
			assert.Equal(t, "hello", v.LocText[0].Text)
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := decodeArray(c.t, c.elems)
			require.NoError(t, err)
			require.True(t, v.IsArray)
			assert.Equal(t, len(c.elems), v.ArrayLength)
			c.check(t, v)
		})
	}
}

func TestDecodeArrayUnsupportedTypeErrors(t *testing.T) {
	_, err := decodeArray(ua.TypeIDExpandedNodeID, []interface{}{nil})
	assert.ErrorIs(t, err, ErrUnsupportedArrayType)
}
