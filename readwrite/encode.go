// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package readwrite

import (
	"github.com/absmach/opcua-adapter/message"
	"github.com/absmach/opcua-adapter/opcua/client"
	"github.com/absmach/opcua-adapter/pkg/errors"
	"github.com/gopcua/opcua/ua"
)

// ErrUnsupportedValue is returned when a domain Value cannot be encoded to
// a wire Variant.
var ErrUnsupportedValue = errors.New("unsupported value for wire encoding")

// EncodeVariant converts a domain Value back to a wire Variant, the
// inverse of DecodeVariant, used by the write path.
func EncodeVariant(v *message.Value) (*ua.Variant, error) {
	if v == nil {
		return nil, ErrUnsupportedValue
	}
	if v.IsArray {
		return encodeArray(v)
	}
	return encodeScalar(v)
}

func encodeScalar(v *message.Value) (*ua.Variant, error) {
	switch v.Type {
	case message.TypeBoolean:
		return ua.NewVariant(v.Bool[0])
	case message.TypeSByte:
		return ua.NewVariant(v.Int8[0])
	case message.TypeByte:
		return ua.NewVariant(v.Uint8[0])
	case message.TypeInt16:
		return ua.NewVariant(v.Int16[0])
	case message.TypeUInt16:
		return ua.NewVariant(v.Uint16[0])
	case message.TypeInt32:
		return ua.NewVariant(v.Int32[0])
	case message.TypeUInt32:
		return ua.NewVariant(v.Uint32[0])
	case message.TypeInt64:
		return ua.NewVariant(v.Int64[0])
	case message.TypeUInt64:
		return ua.NewVariant(v.Uint64[0])
	case message.TypeFloat:
		return ua.NewVariant(v.Float32[0])
	case message.TypeDouble:
		return ua.NewVariant(v.Float64[0])
	case message.TypeString, message.TypeXMLElement:
		return ua.NewVariant(v.String[0])
	case message.TypeByteString:
		return ua.NewVariant(v.Bytes[0])
	case message.TypeGUID:
		return ua.NewVariant(ua.NewGUID(v.GUID[0]))
	case message.TypeNodeID:
		id, err := client.ToUA(v.NodeID[0])
		if err != nil {
			return nil, err
		}
		return ua.NewVariant(id)
	case message.TypeQualifiedName:
		q := v.QName[0]
		return ua.NewVariant(&ua.QualifiedName{NamespaceIndex: q.NamespaceIndex, Name: q.Name})
	case message.TypeLocalizedText:
		lt := v.LocText[0]
		return ua.NewVariant(ua.NewLocalizedText(lt.Text))
	default:
		return nil, ErrUnsupportedValue
	}
}

func encodeArray(v *message.Value) (*ua.Variant, error) {
	switch v.Type {
	case message.TypeBoolean:
		return ua.NewVariant(v.Bool)
	case message.TypeInt32:
		return ua.NewVariant(v.Int32)
	case message.TypeUInt32:
		return ua.NewVariant(v.Uint32)
	case message.TypeFloat:
		return ua.NewVariant(v.Float32)
	case message.TypeDouble:
		return ua.NewVariant(v.Float64)
	case message.TypeString:
		return ua.NewVariant(v.String)
	default:
		return nil, ErrUnsupportedValue
	}
}
