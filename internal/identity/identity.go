// Package identity canonicalises user and album references into a single
// comparable Key. Each entity class is configured with one Form: numeric
// (positive int64, a relational primary key) or opaque (a 24-hex-digit
// document id).
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/maxcasase/BDPW-Back-End/pkg/errors"
)

// Form selects how an entity class is identified.
type Form string

const (
	Numeric Form = "numeric"
	Opaque  Form = "opaque"
)

// UnmarshalText lets Form be parsed straight from configuration.
func (f *Form) UnmarshalText(text []byte) error {
	switch Form(text) {
	case Numeric, Opaque:
		*f = Form(text)
		return nil
	default:
		return fmt.Errorf("unknown identity form %q (want %q or %q)", text, Numeric, Opaque)
	}
}

// ErrInvalidIdentity is matched by every normalisation failure. Those
// failures are also InvalidInput application errors.
var ErrInvalidIdentity = fmt.Errorf("%w: malformed identifier", apperrors.ErrInvalidInput)

// Key is a normalised identifier. The zero Key is invalid and never returned
// by Normalize. Keys are comparable and usable as map keys.
type Key struct {
	form Form
	num  int64
	oid  primitive.ObjectID
}

// NumericKey wraps a positive integer. It panics on n <= 0 and is meant for
// constants and tests; use Normalize for external input.
func NumericKey(n int64) Key {
	if n <= 0 {
		panic(fmt.Sprintf("identity: non-positive numeric key %d", n))
	}
	return Key{form: Numeric, num: n}
}

// OpaqueKey wraps a non-zero ObjectID. It panics on the zero id.
func OpaqueKey(oid primitive.ObjectID) Key {
	if oid.IsZero() {
		panic("identity: zero opaque key")
	}
	return Key{form: Opaque, oid: oid}
}

// Form reports which representation k holds.
func (k Key) Form() Form { return k.form }

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool { return k.form == "" }

// Int64 returns the numeric value when k is numeric.
func (k Key) Int64() (int64, bool) { return k.num, k.form == Numeric }

// ObjectID returns the document id when k is opaque.
func (k Key) ObjectID() (primitive.ObjectID, bool) { return k.oid, k.form == Opaque }

// String returns the decimal or lower-case hex form.
func (k Key) String() string {
	switch k.form {
	case Numeric:
		return strconv.FormatInt(k.num, 10)
	case Opaque:
		return k.oid.Hex()
	default:
		return ""
	}
}

// MarshalJSON encodes numeric keys as JSON numbers and opaque keys as
// strings, matching how clients send them.
func (k Key) MarshalJSON() ([]byte, error) {
	switch k.form {
	case Numeric:
		return []byte(strconv.FormatInt(k.num, 10)), nil
	case Opaque:
		return json.Marshal(k.oid.Hex())
	default:
		return []byte("null"), nil
	}
}

// Normalize converts raw into a Key of the given form. Accepted inputs:
// a Key of the same form; Go integers and integral floats (numeric only);
// json.Number; primitive.ObjectID (opaque only); and strings holding a
// base-10 positive integer (numeric) or exactly 24 hex digits (opaque).
func Normalize(raw any, form Form) (Key, error) {
	return normalize(raw, form, "identifier")
}

func normalize(raw any, form Form, label string) (Key, error) {
	switch form {
	case Numeric:
		n, ok := toInt64(raw)
		if !ok || n <= 0 {
			return Key{}, invalid(label, raw, form)
		}
		return Key{form: Numeric, num: n}, nil
	case Opaque:
		oid, ok := toObjectID(raw)
		if !ok || oid.IsZero() {
			return Key{}, invalid(label, raw, form)
		}
		return Key{form: Opaque, oid: oid}, nil
	default:
		return Key{}, fmt.Errorf("identity: unknown form %q", form)
	}
}

func invalid(label string, raw any, form Form) error {
	var msg string
	switch form {
	case Numeric:
		msg = fmt.Sprintf("invalid %s %s: must be a positive integer", label, display(raw))
	default:
		msg = fmt.Sprintf("invalid %s %s: must be a 24-character hex id", label, display(raw))
	}
	return &apperrors.AppError{
		Code:    "INVALID_INPUT",
		Message: msg,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidIdentity,
	}
}

func display(raw any) string {
	switch v := raw.(type) {
	case nil:
		return "(missing)"
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprint(v)
	}
}

func toInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case Key:
		return v.Int64()
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return uintToInt64(uint64(v))
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return uintToInt64(v)
	case float32:
		return floatToInt64(float64(v))
	case float64:
		return floatToInt64(v)
	case json.Number:
		return parseDecimal(string(v))
	case string:
		return parseDecimal(v)
	default:
		return 0, false
	}
}

func uintToInt64(v uint64) (int64, bool) {
	if v > math.MaxInt64 {
		return 0, false
	}
	return int64(v), true
}

func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func parseDecimal(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func toObjectID(raw any) (primitive.ObjectID, bool) {
	switch v := raw.(type) {
	case Key:
		return v.ObjectID()
	case primitive.ObjectID:
		return v, true
	case string:
		if len(v) != 24 {
			return primitive.NilObjectID, false
		}
		oid, err := primitive.ObjectIDFromHex(v)
		return oid, err == nil
	default:
		return primitive.NilObjectID, false
	}
}

// IsInvalid reports whether err came from a failed normalisation.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidIdentity)
}

// Distinct returns keys with duplicates and zero keys removed, keeping the
// order of first appearance.
func Distinct(keys []Key) []Key {
	seen := make(map[Key]struct{}, len(keys))
	out := make([]Key, 0, len(keys))
	for _, k := range keys {
		if k.IsZero() {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
