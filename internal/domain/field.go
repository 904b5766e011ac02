package domain

import (
	"encoding/json"
	"fmt"
)

// Float is a nullable numeric field. A missing upstream value stays missing:
// it is never collapsed into zero, so completeness checks can tell the two apart.
type Float struct {
	V  float64
	OK bool
}

// F wraps a known value.
func F(v float64) Float {
	return Float{V: v, OK: true}
}

// MissingFloat returns the explicit missing value.
func MissingFloat() Float {
	return Float{}
}

// Value returns the numeric value; callers must check OK first.
func (f Float) Value() float64 {
	return f.V
}

// Known reports whether the field carries a value.
func (f Float) Known() bool {
	return f.OK
}

func (f Float) String() string {
	if !f.OK {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", f.V)
}

// MarshalJSON encodes a missing field as null, never as zero.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.OK {
		return []byte("null"), nil
	}
	return json.Marshal(f.V)
}

// UnmarshalJSON treats null (or an absent key) as missing.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float{V: v, OK: true}
	return nil
}

// Bool is a nullable boolean field with the same missing semantics as Float.
type Bool struct {
	V  bool
	OK bool
}

// B wraps a known boolean.
func B(v bool) Bool {
	return Bool{V: v, OK: true}
}

// MissingBool returns the explicit missing value.
func MissingBool() Bool {
	return Bool{}
}

// Known reports whether the field carries a value.
func (b Bool) Known() bool {
	return b.OK
}

// True reports a known true; unknown is never treated as true.
func (b Bool) True() bool {
	return b.OK && b.V
}

// False reports a known false.
func (b Bool) False() bool {
	return b.OK && !b.V
}

// MarshalJSON encodes a missing field as null.
func (b Bool) MarshalJSON() ([]byte, error) {
	if !b.OK {
		return []byte("null"), nil
	}
	return json.Marshal(b.V)
}

// UnmarshalJSON treats null as missing.
func (b *Bool) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = Bool{}
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = Bool{V: v, OK: true}
	return nil
}
