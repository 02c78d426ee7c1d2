package validation

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Text is a request field expected to hold a JSON string. It never fails
// to decode, so a wrong type is reported by the is_string rule instead of
// aborting the whole body. null and "" count as absent.
type Text struct {
	raw   json.RawMessage
	value string
	ok    bool
}

// NewText returns a Text holding s.
func NewText(s string) Text {
	return Text{raw: json.RawMessage(`""`), value: s, ok: true}
}

func (t *Text) UnmarshalJSON(b []byte) error {
	*t = Text{}
	if isNull(b) {
		return nil
	}
	t.raw = append(json.RawMessage(nil), b...)
	t.ok = json.Unmarshal(b, &t.value) == nil
	return nil
}

// Present reports whether a non-empty value was sent.
func (t Text) Present() bool { return len(t.raw) > 0 && (!t.ok || t.value != "") }

// String returns the value when it was sent as a JSON string.
func (t Text) String() string { return t.value }

// Scalar returns the value of a string, or the literal of a number. Other
// JSON types yield "".
func (t Text) Scalar() string {
	if t.ok {
		return t.value
	}
	if _, err := decimal.NewFromString(string(t.raw)); err == nil {
		return string(t.raw)
	}
	return ""
}

// Number is a request field expected to hold a number, sent either as a
// JSON number or as a numeric string. Like Text it never fails to decode.
type Number struct {
	raw   json.RawMessage
	value decimal.Decimal
	ok    bool
}

// NewNumber parses s. It panics when s is not a number.
func NewNumber(s string) Number {
	return Number{raw: json.RawMessage(s), value: decimal.RequireFromString(s), ok: true}
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	if isNull(b) || bytes.Equal(b, []byte(`""`)) {
		return nil
	}
	n.raw = append(json.RawMessage(nil), b...)

	lit := string(b)
	var s string
	if json.Unmarshal(b, &s) == nil {
		lit = s
	}
	if d, err := decimal.NewFromString(lit); err == nil {
		n.value, n.ok = d, true
	}
	return nil
}

// Present reports whether a value was sent.
func (n Number) Present() bool { return len(n.raw) > 0 }

// Decimal returns the exact value sent and whether it was a number.
func (n Number) Decimal() (decimal.Decimal, bool) { return n.value, n.ok }

func isNull(b []byte) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}

// mistyped stands in for a field whose JSON type was wrong. It is never a
// zero value, so required passes and the type rule reports the field.
type mistyped struct {
	raw json.RawMessage
}

// fieldValue is what validator tags see for Text and Number fields: nil
// when absent, mistyped on a wrong JSON type, else a string or *float64.
func fieldValue(field reflect.Value) any {
	switch v := field.Interface().(type) {
	case Text:
		switch {
		case !v.Present():
			return nil
		case !v.ok:
			return mistyped{raw: v.raw}
		}
		return v.value
	case Number:
		switch {
		case !v.Present():
			return nil
		case !v.ok:
			return mistyped{raw: v.raw}
		}
		// a pointer keeps required satisfied by 0
		f, _ := v.value.Float64()
		return &f
	}
	return nil
}

func isString(fl validator.FieldLevel) bool {
	return fl.Field().Kind() == reflect.String
}

func isNumber(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isInteger(fl validator.FieldLevel) bool {
	if !isNumber(fl) {
		return false
	}
	if fl.Field().CanFloat() {
		return decimal.NewFromFloat(fl.Field().Float()).IsInteger()
	}
	return true
}

// hasDecimals checks that a number has at most Param() decimal places.
func hasDecimals(fl validator.FieldLevel) bool {
	if !fl.Field().CanFloat() {
		return true
	}
	places, err := decimal.NewFromString(fl.Param())
	if err != nil {
		return false
	}
	d := decimal.NewFromFloat(fl.Field().Float())
	return d.Equal(d.Round(int32(places.IntPart())))
}
