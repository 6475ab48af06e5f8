package cligen

import (
	"encoding"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/netip"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ParseFunc turns the raw occurrences of an option or argument into a value.
// Scalars use the last occurrence; slices and arrays use every occurrence.
type ParseFunc[T any] func(raw []string) (T, error)

// Parser returns the ParseFunc for T. Converters registered on b with
// RegisterConverter are looked up when parsing, so registration order
// does not matter.
func Parser[T any](b *Builder) ParseFunc[T] {
	t := TypeOf[T]()
	return func(raw []string) (T, error) {
		var zero T
		v, err := b.assemble(t, raw)
		if err != nil {
			return zero, err
		}
		return v.Interface().(T), nil
	}
}

// TypeOf returns the identity of T.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Deref adapts a constructor returning *T to a converter.
func Deref[T any](p *T) (T, error) {
	if p == nil {
		var zero T
		return zero, fmt.Errorf("converter for %s returned nil", TypeOf[T]())
	}
	return *p, nil
}

// DerefE adapts a constructor returning (*T, error) to a converter.
func DerefE[T any](p *T, err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	return Deref(p)
}

// UnmarshalText is a converter for types whose pointer implements
// encoding.TextUnmarshaler.
func UnmarshalText[T any, PT interface {
	*T
	encoding.TextUnmarshaler
}](s string) (T, error) {
	var v T
	if err := PT(&v).UnmarshalText([]byte(s)); err != nil {
		return v, err
	}
	return v, nil
}

func (b *Builder) assemble(t reflect.Type, raw []string) (reflect.Value, error) {
	if len(raw) == 0 {
		return reflect.Zero(t), nil
	}
	last := raw[len(raw)-1]

	if conv, ok := b.converter(t); ok {
		v, err := conv(last)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v), nil
	}
	if parse, ok := natives[t]; ok {
		v, err := parse(last)
		if err != nil {
			return reflect.Value{}, err
		}
		return v.Convert(t), nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		v, err := b.assemble(t.Elem(), raw)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(v)
		return p, nil
	case reflect.Slice:
		s := reflect.MakeSlice(t, 0, len(raw))
		for _, r := range raw {
			v, err := b.assemble(t.Elem(), []string{r})
			if err != nil {
				return reflect.Value{}, err
			}
			s = reflect.Append(s, v)
		}
		return s, nil
	case reflect.Array:
		if len(raw) > t.Len() {
			return reflect.Value{}, fmt.Errorf("too many values: %d, at most %d", len(raw), t.Len())
		}
		a := reflect.New(t).Elem()
		for i, r := range raw {
			v, err := b.assemble(t.Elem(), []string{r})
			if err != nil {
				return reflect.Value{}, err
			}
			a.Index(i).Set(v)
		}
		return a, nil
	}
	return parseBasic(t, last)
}

func parseBasic(t reflect.Type, s string) (reflect.Value, error) {
	if u, ok := reflect.New(t).Interface().(encoding.TextUnmarshaler); ok {
		if err := u.UnmarshalText([]byte(s)); err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(u).Elem(), nil
	}
	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		v.SetString(s)
		return v, nil
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid boolean %q", s)
		}
		v.SetBool(b)
		return v, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 0, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid integer %q: %w", s, errors.Unwrap(err))
		}
		v.SetInt(n)
		return v, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(s, 0, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid unsigned integer %q: %w", s, errors.Unwrap(err))
		}
		v.SetUint(n)
		return v, nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid number %q: %w", s, errors.Unwrap(err))
		}
		v.SetFloat(f)
		return v, nil
	}
	return reflect.Value{}, fmt.Errorf("no converter registered for %s", t)
}

type nativeParser func(s string) (reflect.Value, error)

// natives parse the non-basic types understood without a converter.
var natives = map[reflect.Type]nativeParser{
	TypeOf[time.Duration](): func(s string) (reflect.Value, error) {
		d, err := time.ParseDuration(s)
		return reflect.ValueOf(d), err
	},
	TypeOf[time.Time](): func(s string) (reflect.Value, error) {
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly} {
			if t, err := time.Parse(layout, s); err == nil {
				return reflect.ValueOf(t), nil
			}
		}
		return reflect.Value{}, fmt.Errorf("invalid time %q, want RFC 3339 or YYYY-MM-DD", s)
	},
	TypeOf[time.Location](): func(s string) (reflect.Value, error) {
		loc, err := time.LoadLocation(s)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(loc).Elem(), nil
	},
	TypeOf[time.Month](): func(s string) (reflect.Value, error) {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 12 {
			return reflect.ValueOf(time.Month(n)), nil
		}
		for m := time.January; m <= time.December; m++ {
			if strings.EqualFold(s, m.String()) || strings.EqualFold(s, m.String()[:3]) {
				return reflect.ValueOf(m), nil
			}
		}
		return reflect.Value{}, fmt.Errorf("invalid month %q", s)
	},
	TypeOf[time.Weekday](): func(s string) (reflect.Value, error) {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 6 {
			return reflect.ValueOf(time.Weekday(n)), nil
		}
		for d := time.Sunday; d <= time.Saturday; d++ {
			if strings.EqualFold(s, d.String()) || strings.EqualFold(s, d.String()[:3]) {
				return reflect.ValueOf(d), nil
			}
		}
		return reflect.Value{}, fmt.Errorf("invalid weekday %q", s)
	},
	TypeOf[big.Int](): func(s string) (reflect.Value, error) {
		n, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return reflect.Value{}, fmt.Errorf("invalid integer %q", s)
		}
		return reflect.ValueOf(n).Elem(), nil
	},
	TypeOf[big.Float](): func(s string) (reflect.Value, error) {
		f, ok := new(big.Float).SetString(s)
		if !ok {
			return reflect.Value{}, fmt.Errorf("invalid decimal %q", s)
		}
		return reflect.ValueOf(f).Elem(), nil
	},
	TypeOf[uuid.UUID](): func(s string) (reflect.Value, error) {
		id, err := uuid.Parse(s)
		return reflect.ValueOf(id), err
	},
	TypeOf[url.URL](): func(s string) (reflect.Value, error) {
		u, err := url.Parse(s)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(u).Elem(), nil
	},
	TypeOf[net.IP](): func(s string) (reflect.Value, error) {
		ip := net.ParseIP(s)
		if ip == nil {
			return reflect.Value{}, fmt.Errorf("invalid IP address %q", s)
		}
		return reflect.ValueOf(ip), nil
	},
	TypeOf[net.IPNet](): func(s string) (reflect.Value, error) {
		_, n, err := net.ParseCIDR(s)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(n).Elem(), nil
	},
	TypeOf[net.TCPAddr](): func(s string) (reflect.Value, error) {
		ap, err := netip.ParseAddrPort(s)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(net.TCPAddrFromAddrPort(ap)).Elem(), nil
	},
	TypeOf[net.UDPAddr](): func(s string) (reflect.Value, error) {
		ap, err := netip.ParseAddrPort(s)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(net.UDPAddrFromAddrPort(ap)).Elem(), nil
	},
	TypeOf[netip.Addr](): func(s string) (reflect.Value, error) {
		a, err := netip.ParseAddr(s)
		return reflect.ValueOf(a), err
	},
	TypeOf[netip.AddrPort](): func(s string) (reflect.Value, error) {
		a, err := netip.ParseAddrPort(s)
		return reflect.ValueOf(a), err
	},
	TypeOf[netip.Prefix](): func(s string) (reflect.Value, error) {
		p, err := netip.ParsePrefix(s)
		return reflect.ValueOf(p), err
	},
	TypeOf[Path]():     func(s string) (reflect.Value, error) { return reflect.ValueOf(Path(s)), nil },
	TypeOf[FilePath](): func(s string) (reflect.Value, error) { p, err := ParseFilePath(s); return reflect.ValueOf(p), err },
	TypeOf[DirPath]():  func(s string) (reflect.Value, error) { p, err := ParseDirPath(s); return reflect.ValueOf(p), err },
}

// isMulti reports whether a value of t takes every occurrence.
func isMulti(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if _, ok := natives[t]; ok {
		return false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
		if _, ok := natives[t]; ok {
			return false
		}
	}
	return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
}

// isBool reports whether the option can be given without a value.
func isBool(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Bool
}

// typeLabel is the value placeholder shown in help, e.g. "int" or "duration".
func typeLabel(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if _, ok := natives[t]; !ok && (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) {
		return typeLabel(t.Elem())
	}
	if t.Name() == "" {
		return t.Kind().String()
	}
	return strings.ToLower(t.Name())
}

func formatValue(v reflect.Value) string {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	if v.CanAddr() {
		if s, ok := v.Addr().Interface().(fmt.Stringer); ok {
			return s.String()
		}
	}
	return fmt.Sprint(v.Interface())
}
