// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package readwrite implements the batched read/write executor: one
// service call per message covering every requested node, decoding of the
// wire-level Variant into a domain Value and back, and per-result
// diagnostic correlation.
package readwrite

import (
	"strings"
	"time"

	"github.com/absmach/opcua-adapter/message"
	"github.com/absmach/opcua-adapter/opcua/client"
	"github.com/absmach/opcua-adapter/pkg/errors"
	"github.com/gopcua/opcua/ua"
)

// ErrNullType is returned when a server response carries the null
// variant type - a fatal per-message error per the decoding rules.
var ErrNullType = errors.New("null type on wire is a fatal error")

// ErrUnsupportedArrayType is returned when decodeArray has no per-element
// rule for the wire array's element type - mirrors encode.go's
// ErrUnsupportedValue rather than silently dropping the array's data.
var ErrUnsupportedArrayType = errors.New("unsupported array element type for wire decoding")

// DecodeVariant converts a wire Variant into a domain Value, following the
// per-type decoding rules: String/ByteString/XmlElement scalars copy
// verbatim, Guid scalars canonicalize, LocalizedText/QualifiedName/NodeId
// decode to their structured form, other scalars copy through, and arrays
// apply the same per-element rule (String/ByteString/Guid arrays lower to
// arrays of owned strings).
func DecodeVariant(v *ua.Variant) (*message.Value, error) {
	if v == nil || v.Type() == ua.TypeIDNull {
		return nil, ErrNullType
	}

	if arr, ok := v.Value().([]interface{}); ok {
		return decodeArray(v.Type(), arr)
	}
	return decodeScalar(v.Type(), v)
}

func decodeScalar(t ua.TypeID, v *ua.Variant) (*message.Value, error) {
	switch t {
	case ua.TypeIDBoolean:
		return message.NewBoolValue(v.Bool()), nil
	case ua.TypeIDSByte:
		return message.NewInt8Value(int8(v.Int())), nil
	case ua.TypeIDByte:
		return message.NewUint8Value(uint8(v.Uint())), nil
	case ua.TypeIDInt16:
		return message.NewInt16Value(int16(v.Int())), nil
	case ua.TypeIDUint16:
		return message.NewUint16Value(uint16(v.Uint())), nil
	case ua.TypeIDInt32:
		return message.NewInt32Value(int32(v.Int())), nil
	case ua.TypeIDUint32:
		return message.NewUint32Value(uint32(v.Uint())), nil
	case ua.TypeIDInt64:
		return message.NewInt64Value(v.Int()), nil
	case ua.TypeIDUint64:
		return message.NewUint64Value(v.Uint()), nil
	case ua.TypeIDFloat:
		return message.NewFloatValue(float32(v.Float())), nil
	case ua.TypeIDDouble:
		return message.NewDoubleValue(v.Float()), nil
	case ua.TypeIDString, ua.TypeIDXmlElement:
		return message.NewStringValue(v.String()), nil
	case ua.TypeIDByteString:
		b, _ := v.Value().([]byte)
		return message.NewByteStringValue(b), nil
	case ua.TypeIDGUID:
		g, ok := v.Value().(*ua.GUID)
		if !ok {
			return message.NewGUIDValue(v.String()), nil
		}
		return message.NewGUIDValue(guidString(g)), nil
	case ua.TypeIDNodeID:
		id, ok := v.Value().(*ua.NodeID)
		if !ok {
			return nil, errors.New("variant claims NodeId type but holds no *ua.NodeID")
		}
		domainID, err := client.FromUA(id)
		if err != nil {
			return nil, err
		}
		return message.NewNodeIDValue(domainID), nil
	case ua.TypeIDQualifiedName:
		qn, ok := v.Value().(*ua.QualifiedName)
		if !ok {
			return nil, errors.New("variant claims QualifiedName type but holds no *ua.QualifiedName")
		}
		return message.NewQualifiedNameValue(message.QualifiedName{NamespaceIndex: qn.NamespaceIndex, Name: qn.Name}), nil
	case ua.TypeIDLocalizedText:
		lt, ok := v.Value().(*ua.LocalizedText)
		if !ok {
			return nil, errors.New("variant claims LocalizedText type but holds no *ua.LocalizedText")
		}
		return message.NewLocalizedTextValue(message.LocalizedText{Locale: lt.Locale, Text: lt.Text}), nil
	case ua.TypeIDDateTime:
		return &message.Value{Type: message.TypeDateTime, DateTime: []int64{v.Time().Unix()}}, nil
	default:
		// "Other scalar: copy exactly size_of(type) bytes" - for types with
		// no dedicated domain representation, fall back to the Go native
		// value's string form so no data is silently dropped.
		return message.NewStringValue(v.String()), nil
	}
}

func decodeArray(t ua.TypeID, elems []interface{}) (*message.Value, error) {
	out := &message.Value{IsArray: true, ArrayLength: len(elems)}
	switch t {
	case ua.TypeIDBoolean:
		out.Type = message.TypeBoolean
		for _, e := range elems {
			out.Bool = append(out.Bool, e.(bool))
		}
	case ua.TypeIDSByte:
		out.Type = message.TypeSByte
		for _, e := range elems {
			out.Int8 = append(out.Int8, e.(int8))
		}
	case ua.TypeIDByte:
		out.Type = message.TypeByte
		for _, e := range elems {
			out.Uint8 = append(out.Uint8, e.(uint8))
		}
	case ua.TypeIDInt16:
		out.Type = message.TypeInt16
		for _, e := range elems {
			out.Int16 = append(out.Int16, e.(int16))
		}
	case ua.TypeIDUint16:
		out.Type = message.TypeUInt16
		for _, e := range elems {
			out.Uint16 = append(out.Uint16, e.(uint16))
		}
	case ua.TypeIDString, ua.TypeIDXmlElement, ua.TypeIDByteString, ua.TypeIDGUID:
		// String/ByteString/Guid arrays lower to arrays of owned strings.
		out.Type = message.TypeString
		for _, e := range elems {
			switch v := e.(type) {
			case string:
				out.String = append(out.String, v)
			case []byte:
				out.String = append(out.String, string(v))
			case *ua.GUID:
				out.String = append(out.String, guidString(v))
			default:
				out.String = append(out.String, "")
			}
		}
	case ua.TypeIDInt32:
		out.Type = message.TypeInt32
		for _, e := range elems {
			out.Int32 = append(out.Int32, e.(int32))
		}
	case ua.TypeIDUint32:
		out.Type = message.TypeUInt32
		for _, e := range elems {
			out.Uint32 = append(out.Uint32, e.(uint32))
		}
	case ua.TypeIDInt64:
		out.Type = message.TypeInt64
		for _, e := range elems {
			out.Int64 = append(out.Int64, e.(int64))
		}
	case ua.TypeIDUint64:
		out.Type = message.TypeUInt64
		for _, e := range elems {
			out.Uint64 = append(out.Uint64, e.(uint64))
		}
	case ua.TypeIDDouble:
		out.Type = message.TypeDouble
		for _, e := range elems {
			out.Float64 = append(out.Float64, e.(float64))
		}
	case ua.TypeIDFloat:
		out.Type = message.TypeFloat
		for _, e := range elems {
			out.Float32 = append(out.Float32, e.(float32))
		}
	case ua.TypeIDDateTime:
		out.Type = message.TypeDateTime
		for _, e := range elems {
			out.DateTime = append(out.DateTime, e.(time.Time).Unix())
		}
	case ua.TypeIDNodeID:
		out.Type = message.TypeNodeID
		for _, e := range elems {
			id, ok := e.(*ua.NodeID)
			if !ok {
				return nil, errors.New("array claims NodeId element type but holds no *ua.NodeID")
			}
			domainID, err := client.FromUA(id)
			if err != nil {
				return nil, err
			}
			out.NodeID = append(out.NodeID, domainID)
		}
	case ua.TypeIDQualifiedName:
		out.Type = message.TypeQualifiedName
		for _, e := range elems {
			qn, ok := e.(*ua.QualifiedName)
			if !ok {
				return nil, errors.New("array claims QualifiedName element type but holds no *ua.QualifiedName")
			}
			out.QName = append(out.QName, message.QualifiedName{NamespaceIndex: qn.NamespaceIndex, Name: qn.Name})
		}
	case ua.TypeIDLocalizedText:
		out.Type = message.TypeLocalizedText
		for _, e := range elems {
			lt, ok := e.(*ua.LocalizedText)
			if !ok {
				return nil, errors.New("array claims LocalizedText element type but holds no *ua.LocalizedText")
			}
			out.LocText = append(out.LocText, message.LocalizedText{Locale: lt.Locale, Text: lt.Text})
		}
	default:
		return nil, ErrUnsupportedArrayType
	}
	return out, nil
}

func guidString(g *ua.GUID) string {
	return strings.ToLower(g.String())
}
