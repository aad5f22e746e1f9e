// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package message

// ValueType enumerates the OPC UA built-in scalar types a versatile Value
// may carry, scalar or array.
type ValueType uint8

const (
	TypeBoolean ValueType = iota
	TypeSByte
	TypeByte
	TypeInt16
	TypeUInt16
	TypeInt32
	TypeUInt32
	TypeInt64
	TypeUInt64
	TypeFloat
	TypeDouble
	TypeString
	TypeByteString
	TypeGUID
	TypeDateTime
	TypeXMLElement
	TypeNodeID
	TypeQualifiedName
	TypeLocalizedText
)

// QualifiedName mirrors the OPC UA QualifiedName structure: a namespace
// index plus a name.
type QualifiedName struct {
	NamespaceIndex uint16
	Name           string
}

// LocalizedText mirrors the OPC UA LocalizedText structure: a locale tag
// plus text.
type LocalizedText struct {
	Locale string
	Text   string
}

// Value is a versatile OPC UA value: a scalar or array of exactly one of
// the built-in types above. IsArray/ArrayLength describe the shape; a
// scalar has ArrayLength == 0 and exactly one element in the typed slice
// that backs it.
type Value struct {
	Type        ValueType
	IsArray     bool
	ArrayLength int

	Bool     []bool
	Int8     []int8
	Uint8    []uint8
	Int16    []int16
	Uint16   []uint16
	Int32    []int32
	Uint32   []uint32
	Int64    []int64
	Uint64   []uint64
	Float32  []float32
	Float64  []float64
	String   []string
	Bytes    [][]byte
	GUID     []string
	DateTime []int64
	NodeID   []*NodeID
	QName    []QualifiedName
	LocText  []LocalizedText
}

// Scalar constructors build a single-element Value of the given type.

func NewBoolValue(v bool) *Value    { return &Value{Type: TypeBoolean, Bool: []bool{v}} }
func NewInt8Value(v int8) *Value    { return &Value{Type: TypeSByte, Int8: []int8{v}} }
func NewUint8Value(v uint8) *Value  { return &Value{Type: TypeByte, Uint8: []uint8{v}} }
func NewInt16Value(v int16) *Value  { return &Value{Type: TypeInt16, Int16: []int16{v}} }
func NewUint16Value(v uint16) *Value {
	return &Value{Type: TypeUInt16, Uint16: []uint16{v}}
}
func NewInt32Value(v int32) *Value { return &Value{Type: TypeInt32, Int32: []int32{v}} }
func NewUint32Value(v uint32) *Value {
	return &Value{Type: TypeUInt32, Uint32: []uint32{v}}
}
func NewInt64Value(v int64) *Value { return &Value{Type: TypeInt64, Int64: []int64{v}} }
func NewUint64Value(v uint64) *Value {
	return &Value{Type: TypeUInt64, Uint64: []uint64{v}}
}
func NewFloatValue(v float32) *Value  { return &Value{Type: TypeFloat, Float32: []float32{v}} }
func NewDoubleValue(v float64) *Value { return &Value{Type: TypeDouble, Float64: []float64{v}} }
func NewStringValue(v string) *Value  { return &Value{Type: TypeString, String: []string{v}} }
func NewByteStringValue(v []byte) *Value {
	return &Value{Type: TypeByteString, Bytes: [][]byte{v}}
}
func NewGUIDValue(canonical string) *Value {
	return &Value{Type: TypeGUID, GUID: []string{canonical}}
}
func NewNodeIDValue(id *NodeID) *Value {
	return &Value{Type: TypeNodeID, NodeID: []*NodeID{id}}
}
func NewQualifiedNameValue(q QualifiedName) *Value {
	return &Value{Type: TypeQualifiedName, QName: []QualifiedName{q}}
}
func NewLocalizedTextValue(l LocalizedText) *Value {
	return &Value{Type: TypeLocalizedText, LocText: []LocalizedText{l}}
}

// Clone returns a deep copy of the value, sharing no backing array with the
// receiver.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	out := *v
	out.Bool = append([]bool(nil), v.Bool...)
	out.Int8 = append([]int8(nil), v.Int8...)
	out.Uint8 = append([]uint8(nil), v.Uint8...)
	out.Int16 = append([]int16(nil), v.Int16...)
	out.Uint16 = append([]uint16(nil), v.Uint16...)
	out.Int32 = append([]int32(nil), v.Int32...)
	out.Uint32 = append([]uint32(nil), v.Uint32...)
	out.Int64 = append([]int64(nil), v.Int64...)
	out.Uint64 = append([]uint64(nil), v.Uint64...)
	out.Float32 = append([]float32(nil), v.Float32...)
	out.Float64 = append([]float64(nil), v.Float64...)
	out.String = append([]string(nil), v.String...)
	out.GUID = append([]string(nil), v.GUID...)
	out.DateTime = append([]int64(nil), v.DateTime...)
	out.QName = append([]QualifiedName(nil), v.QName...)
	out.LocText = append([]LocalizedText(nil), v.LocText...)
	if v.Bytes != nil {
		out.Bytes = make([][]byte, len(v.Bytes))
		for i, b := range v.Bytes {
			out.Bytes[i] = append([]byte(nil), b...)
		}
	}
	if v.NodeID != nil {
		out.NodeID = make([]*NodeID, len(v.NodeID))
		for i, n := range v.NodeID {
			out.NodeID[i] = n.Clone()
		}
	}
	return &out
}
