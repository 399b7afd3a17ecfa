package dialect

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// TimeLayout is the text form of time.Time literals.
const TimeLayout = "2006-01-02 15:04:05.999999"

// RenderLiteral renders v as SQL literal text for direct interpolation.
//
//	nil                        NULL
//	bool                       TRUE / FALSE
//	integers, floats           decimal text
//	string, []byte, Stringer   single-quoted text
//	time.Time                  quoted TimeLayout
//	driver.Valuer              its Value, rendered again
//
// Quoted text is NOT escaped: a value containing a single quote produces
// broken or injected SQL. Fixture values are expected to come from test
// code, not from users. Set Returning.Literal or LastInsertID.Literal to
// plug in a stricter renderer.
func RenderLiteral(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "NULL", nil
	case bool:
		if x {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int:
		return strconv.FormatInt(int64(x), 10), nil
	case int8:
		return strconv.FormatInt(int64(x), 10), nil
	case int16:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return formatFloat(float64(x), 32)
	case float64:
		return formatFloat(x, 64)
	case string:
		return quote(x), nil
	case []byte:
		return quote(string(x)), nil
	case time.Time:
		return quote(x.Format(TimeLayout)), nil
	case driver.Valuer:
		return renderValuer(x)
	case fmt.Stringer:
		return quote(x.String()), nil
	}
	return renderKind(v)
}

func quote(s string) string {
	return "'" + s + "'"
}

func formatFloat(f float64, bits int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("float %v has no SQL literal", f)
	}
	return strconv.FormatFloat(f, 'g', -1, bits), nil
}

func renderValuer(v driver.Valuer) (string, error) {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "NULL", nil
	}
	val, err := v.Value()
	if err != nil {
		return "", fmt.Errorf("valuer %T: %w", v, err)
	}
	if _, again := val.(driver.Valuer); again {
		return "", fmt.Errorf("valuer %T returned another valuer", v)
	}
	return RenderLiteral(val)
}

// renderKind handles named types over basic kinds and pointers to
// renderable values.
func renderKind(v any) (string, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "NULL", nil
		}
		return RenderLiteral(rv.Elem().Interface())
	case reflect.Bool:
		return RenderLiteral(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return RenderLiteral(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return RenderLiteral(rv.Uint())
	case reflect.Float32:
		return formatFloat(rv.Float(), 32)
	case reflect.Float64:
		return formatFloat(rv.Float(), 64)
	case reflect.String:
		return quote(rv.String()), nil
	}
	return "", fmt.Errorf("unsupported literal type %T", v)
}
