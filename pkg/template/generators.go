package template

import (
	"fmt"
	mathrand "math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generator kinds. date.now is its own kind so the parser never confuses it
// with a request path.
const (
	GenUUID      = "uuid"
	GenInt       = "int"
	GenFloat     = "float"
	GenString    = "string"
	GenEmail     = "email"
	GenName      = "name"
	GenPhone     = "phone"
	GenURL       = "url"
	GenCurrency  = "currency"
	GenID        = "id"
	GenBool      = "bool"
	GenEnum      = "enum"
	GenDateNow   = "date.now"
	GenDate      = "date"
	GenTime      = "time"
	GenTimestamp = "timestamp"
)

// Default bounds for parameterless numeric and string generators.
const (
	defaultIntMin    = 1
	defaultIntMax    = 1000000
	defaultFloatMin  = 1
	defaultFloatMax  = 1000000
	defaultStringLen = 12
)

// maxStringLen bounds string generator lengths so a template cannot demand
// an absurd allocation per render.
const maxStringLen = 1 << 16

// GenSpec is one parsed generator invocation with validated parameters.
type GenSpec struct {
	Kind     string
	IntMin   int64
	IntMax   int64
	FloatMin float64
	FloatMax float64
	LenMin   int
	LenMax   int
	Choices  []string
}

// String renders the spec back as its placeholder expression, without the
// ${mock.} wrapper.
func (g *GenSpec) String() string {
	switch g.Kind {
	case GenInt:
		if g.IntMin != defaultIntMin || g.IntMax != defaultIntMax {
			return fmt.Sprintf("int[%d-%d]", g.IntMin, g.IntMax)
		}
	case GenFloat:
		if g.FloatMin != defaultFloatMin || g.FloatMax != defaultFloatMax {
			return fmt.Sprintf("float[%s-%s]", formatFloat(g.FloatMin), formatFloat(g.FloatMax))
		}
	case GenString:
		if g.LenMin != defaultStringLen || g.LenMax != defaultStringLen {
			return fmt.Sprintf("string[%d-%d]", g.LenMin, g.LenMax)
		}
	case GenEnum:
		return "enum[" + strings.Join(g.Choices, ",") + "]"
	}
	return g.Kind
}

// parseGenerator parses the text after "mock." into a validated GenSpec.
func parseGenerator(expr, token string, offset int) (*GenSpec, error) {
	kind := expr
	params := ""
	if i := strings.IndexByte(expr, '['); i >= 0 {
		if !strings.HasSuffix(expr, "]") {
			return nil, &SyntaxError{Token: token, Offset: offset, Reason: "unclosed parameter bracket"}
		}
		kind = expr[:i]
		params = expr[i+1 : len(expr)-1]
	}

	spec := &GenSpec{Kind: kind}
	switch kind {
	case GenUUID, GenEmail, GenName, GenPhone, GenURL, GenCurrency, GenID,
		GenBool, GenDateNow, GenDate, GenTime, GenTimestamp:
		if params != "" {
			return nil, &ParamError{Token: token, Offset: offset, Reason: kind + " takes no parameters"}
		}

	case GenInt:
		spec.IntMin, spec.IntMax = defaultIntMin, defaultIntMax
		if params != "" {
			lo, hi, err := parseRange(params)
			if err != nil {
				return nil, &SyntaxError{Token: token, Offset: offset, Reason: err.Error()}
			}
			min, err1 := strconv.ParseInt(lo, 10, 64)
			max, err2 := strconv.ParseInt(hi, 10, 64)
			if err1 != nil || err2 != nil {
				return nil, &SyntaxError{Token: token, Offset: offset, Reason: "range bounds must be integers"}
			}
			if min > max {
				return nil, &ParamError{Token: token, Offset: offset, Reason: "min exceeds max"}
			}
			spec.IntMin, spec.IntMax = min, max
		}

	case GenFloat:
		spec.FloatMin, spec.FloatMax = defaultFloatMin, defaultFloatMax
		if params != "" {
			lo, hi, err := parseRange(params)
			if err != nil {
				return nil, &SyntaxError{Token: token, Offset: offset, Reason: err.Error()}
			}
			min, err1 := strconv.ParseFloat(lo, 64)
			max, err2 := strconv.ParseFloat(hi, 64)
			if err1 != nil || err2 != nil {
				return nil, &SyntaxError{Token: token, Offset: offset, Reason: "range bounds must be numbers"}
			}
			if min > max {
				return nil, &ParamError{Token: token, Offset: offset, Reason: "min exceeds max"}
			}
			spec.FloatMin, spec.FloatMax = min, max
		}

	case GenString:
		spec.LenMin, spec.LenMax = defaultStringLen, defaultStringLen
		if params != "" {
			lo, hi, err := parseRange(params)
			if err != nil {
				return nil, &SyntaxError{Token: token, Offset: offset, Reason: err.Error()}
			}
			min, err1 := strconv.Atoi(lo)
			max, err2 := strconv.Atoi(hi)
			if err1 != nil || err2 != nil {
				return nil, &SyntaxError{Token: token, Offset: offset, Reason: "length bounds must be integers"}
			}
			if min < 0 || min > max {
				return nil, &ParamError{Token: token, Offset: offset, Reason: "invalid length range"}
			}
			if max > maxStringLen {
				return nil, &ParamError{Token: token, Offset: offset, Reason: fmt.Sprintf("length exceeds the %d maximum", maxStringLen)}
			}
			spec.LenMin, spec.LenMax = min, max
		}

	case GenEnum:
		for _, c := range strings.Split(params, ",") {
			c = strings.TrimSpace(c)
			if c != "" {
				spec.Choices = append(spec.Choices, c)
			}
		}
		if len(spec.Choices) == 0 {
			return nil, &ParamError{Token: token, Offset: offset, Reason: "enum requires at least one choice"}
		}

	default:
		return nil, &SyntaxError{Token: token, Offset: offset, Reason: "unknown generator kind"}
	}
	return spec, nil
}

// parseRange splits "a-b" on the separating dash, tolerating a negative
// lower bound ("-5-10" splits into "-5" and "10").
func parseRange(params string) (lo, hi string, err error) {
	for i := 1; i < len(params); i++ {
		if params[i] != '-' {
			continue
		}
		prev := params[i-1]
		if prev == '-' || prev == 'e' || prev == 'E' {
			continue
		}
		return params[:i], params[i+1:], nil
	}
	return "", "", fmt.Errorf("expected a-b range, got %q", params)
}

// Generate produces one value for the spec. Parameters were validated at
// parse time, so generation itself cannot fail.
func (g *GenSpec) Generate() any {
	switch g.Kind {
	case GenUUID:
		return uuid.NewString()
	case GenInt:
		// Width arithmetic stays in uint64 so ranges wider than int64 do
		// not wrap into a negative argument.
		width := uint64(g.IntMax-g.IntMin) + 1
		if width == 0 {
			// The full int64 range.
			return int64(mathrand.Uint64())
		}
		return g.IntMin + int64(mathrand.Uint64N(width))
	case GenFloat:
		f := g.FloatMin + mathrand.Float64()*(g.FloatMax-g.FloatMin)
		// Two-decimal precision by contract.
		return float64(int64(f*100+0.5)) / 100
	case GenString:
		n := g.LenMin
		if g.LenMax > g.LenMin {
			n += mathrand.IntN(g.LenMax - g.LenMin + 1)
		}
		return randomAlphanumeric(n)
	case GenEmail:
		return randomEmail()
	case GenName:
		return randomFullName()
	case GenPhone:
		return randomPhone()
	case GenURL:
		return randomURL()
	case GenCurrency:
		return pick(fakerCurrencyCodes)
	case GenID:
		return randomShortID()
	case GenBool:
		return mathrand.IntN(2) == 0
	case GenEnum:
		return pick(g.Choices)
	case GenDateNow:
		return time.Now().UTC().Format(time.RFC3339)
	case GenDate:
		// A random instant within roughly the past two years.
		past := time.Now().UTC().Add(-time.Duration(mathrand.Int64N(2 * 365 * 24)) * time.Hour)
		return past.Format("2006-01-02")
	case GenTime:
		return fmt.Sprintf("%02d:%02d:%02d", mathrand.IntN(24), mathrand.IntN(60), mathrand.IntN(60))
	case GenTimestamp:
		return time.Now().Unix()
	}
	return ""
}

// standIn returns a type-correct dummy value used when checking that a
// template body stays well-formed after substitution.
func (g *GenSpec) standIn() any {
	switch g.Kind {
	case GenInt, GenTimestamp:
		return int64(0)
	case GenFloat:
		return float64(0)
	case GenBool:
		return true
	default:
		return "x"
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func pick(choices []string) string {
	return choices[mathrand.IntN(len(choices))]
}
