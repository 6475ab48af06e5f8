package converter

import (
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podhmo/cligen/internal/symbols"
)

const convSource = `package conv

import (
	"errors"
	"net/url"
	"time"
)

type Celsius struct{ v float64 }

func NewCelsius(s string) Celsius { return Celsius{} }

type Host struct{ name string }

func NewHost(s string, opts ...int) (*Host, error) { return &Host{name: s}, nil }

type Level struct{ n int }

func ParseLevel(s string) (Level, error) { return Level{}, nil }

type Token struct{ raw string }

func (t *Token) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty token")
	}
	t.raw = string(b)
	return nil
}

type Opaque struct{}

type WrongArgs struct{}

func NewWrongArgs(n int) WrongArgs { return WrongArgs{} }

type PtrFactory struct{}

func ParsePtrFactory(s string) *PtrFactory { return nil }

type unexportedCtor struct{}

func newUnexportedCtor(s string) unexportedCtor { return unexportedCtor{} }

type Both struct{}

func NewBoth(s string) Both            { return Both{} }
func ParseBoth(s string) (Both, error) { return Both{}, nil }

type Mode string

type Phase complex64

type Fields struct {
	Name     string
	Timeout  time.Duration
	Zone     *time.Location
	Links    []*url.URL
	Temp     Celsius
	Host     *Host
	Levels   []Level
	Tokens   *[]Token
	Opaque   Opaque
	Wrong    WrongArgs
	PtrFac   PtrFactory
	Both     Both
	Mode     Mode
	Labels   map[string]string
	Matrix   [][]int
	Fixed    [2]Celsius
	Signal   complex128
	Phase    Phase
}
`

func fieldTypes(t *testing.T) map[string]symbols.Type {
	t.Helper()
	pkg, err := symbols.FromSource("example.com/conv", map[string]string{"conv.go": convSource})
	require.NoError(t, err)

	st := pkg.Types.Scope().Lookup("Fields").Type().Underlying().(*types.Struct)
	fields := make(map[string]symbols.Type, st.NumFields())
	for i := 0; i < st.NumFields(); i++ {
		fields[st.Field(i).Name()] = symbols.Of(st.Field(i).Type())
	}
	return fields
}

func TestResolve_Native(t *testing.T) {
	fields := fieldTypes(t)
	for _, name := range []string{"Name", "Timeout", "Zone", "Links", "Mode", "Matrix"} {
		t.Run(name, func(t *testing.T) {
			got := Resolve(fields[name])
			assert.True(t, got.Native(), "%s should be natively supported", fields[name])
			assert.Nil(t, got.Converter)
		})
	}
}

func TestResolve_Converters(t *testing.T) {
	fields := fieldTypes(t)
	tests := []struct {
		field          string
		target         string
		kind           Kind
		fn             string
		returnsPointer bool
		returnsError   bool
	}{
		{"Temp", "example.com/conv.Celsius", Constructor, "NewCelsius", false, false},
		{"Host", "example.com/conv.Host", Constructor, "NewHost", true, true},
		{"Levels", "example.com/conv.Level", Factory, "ParseLevel", false, true},
		{"Tokens", "example.com/conv.Token", TextUnmarshaler, "", true, true},
		{"Both", "example.com/conv.Both", Constructor, "NewBoth", false, false},
		{"Fixed", "example.com/conv.Celsius", Constructor, "NewCelsius", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got := Resolve(fields[tt.field])
			require.False(t, got.Native())
			require.True(t, got.Bindable())
			assert.Equal(t, tt.target, got.TypeNeedingConverter.String())

			c := got.Converter
			require.NotNil(t, c)
			assert.Equal(t, tt.kind, c.Kind)
			assert.Equal(t, tt.returnsPointer, c.ReturnsPointer)
			assert.Equal(t, tt.returnsError, c.ReturnsError)
			if tt.fn == "" {
				assert.Nil(t, c.Func)
			} else {
				require.NotNil(t, c.Func)
				assert.Equal(t, tt.fn, c.Func.Name)
			}
		})
	}
}

func TestResolve_Unresolved(t *testing.T) {
	fields := fieldTypes(t)
	tests := []struct {
		field  string
		target string
	}{
		{"Opaque", "example.com/conv.Opaque"},
		{"Wrong", "example.com/conv.WrongArgs"},
		{"PtrFac", "example.com/conv.PtrFactory"},
		{"Labels", "map[string]string"},
		{"Signal", "complex128"},
		{"Phase", "example.com/conv.Phase"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got := Resolve(fields[tt.field])
			require.NotNil(t, got.TypeNeedingConverter)
			assert.Equal(t, tt.target, got.TypeNeedingConverter.String())
			assert.Nil(t, got.Converter)
			assert.False(t, got.Bindable())
		})
	}
}

func TestNewResolver_RuntimeImport(t *testing.T) {
	r := NewResolver("example.com/rt")
	assert.True(t, r.native["example.com/rt.FilePath"])
	assert.False(t, r.native[RuntimeImport+".FilePath"])
	assert.True(t, Default.native[RuntimeImport+".DirPath"])
}
