// Package convert implements the bidirectional scalar converters between
// the Tally XML wire representation and typed Go values. Every converter
// round-trips: FromWire(ToWire(v)) yields v for any value it accepts.
package convert

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sharathv/tally-connect/internal/tallyerror"
)

// Wire layouts used by the date converters.
const (
	DateLayout     = "20060102"
	DateTimeLayout = "2-Jan-2006 15:04"

	// dateTimeSeparator splits the date and time halves on the wire:
	// "5-Apr-2023 at 14:30".
	dateTimeSeparator = " at "
)

// Converter transforms between wire text and a typed value. FromWire
// returns nil for absent optional values; ToWire accepts nil for the
// same case and renders it as the empty string.
type Converter interface {
	FromWire(text string) (any, error)
	ToWire(v any) (string, error)
	IsRequired() bool
}

// fromWire centralizes the empty-input policy shared by all converters:
// blank text is nil when optional and an error when required.
func fromWire(name, text string, required bool, conv func(string) (any, error)) (any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		if required {
			return nil, &tallyerror.ValueError{Converter: name, Text: text, Err: errRequired}
		}
		return nil, nil
	}
	return conv(text)
}

func toWire(name string, v any, required bool, conv func(any) (string, error)) (string, error) {
	if v == nil {
		if required {
			return "", &tallyerror.ValueError{Converter: name, Err: errRequired}
		}
		return "", nil
	}
	return conv(v)
}

var errRequired = &requiredError{}

type requiredError struct{}

func (e *requiredError) Error() string { return "required value missing" }

// String is the identity converter. Surrounding whitespace is trimmed at
// the wire boundary, never inside the value.
type String struct{ Required bool }

func (c String) IsRequired() bool { return c.Required }

func (c String) FromWire(text string) (any, error) {
	return fromWire("string", text, c.Required, func(s string) (any, error) {
		return s, nil
	})
}

func (c String) ToWire(v any) (string, error) {
	return toWire("string", v, c.Required, func(v any) (string, error) {
		s, ok := v.(string)
		if !ok {
			return "", &tallyerror.ValueError{Converter: "string", Text: "non-string value"}
		}
		return s, nil
	})
}

// Multiline carries text assembled from several sibling text fragments.
// The mapping engine joins the fragments with newlines before handing
// the result here, so conversion itself is the identity.
type Multiline struct{ Required bool }

func (c Multiline) IsRequired() bool { return c.Required }

func (c Multiline) FromWire(text string) (any, error) {
	if strings.TrimSpace(text) == "" {
		if c.Required {
			return nil, &tallyerror.ValueError{Converter: "multiline", Err: errRequired}
		}
		return nil, nil
	}
	return text, nil
}

func (c Multiline) ToWire(v any) (string, error) {
	return toWire("multiline", v, c.Required, func(v any) (string, error) {
		s, ok := v.(string)
		if !ok {
			return "", &tallyerror.ValueError{Converter: "multiline", Text: "non-string value"}
		}
		return s, nil
	})
}

// Integer parses whole numbers.
type Integer struct{ Required bool }

func (c Integer) IsRequired() bool { return c.Required }

func (c Integer) FromWire(text string) (any, error) {
	return fromWire("integer", text, c.Required, func(s string) (any, error) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, &tallyerror.ValueError{Converter: "integer", Text: s, Err: err}
		}
		return n, nil
	})
}

func (c Integer) ToWire(v any) (string, error) {
	return toWire("integer", v, c.Required, func(v any) (string, error) {
		n, ok := v.(int)
		if !ok {
			return "", &tallyerror.ValueError{Converter: "integer", Text: "non-int value"}
		}
		return strconv.Itoa(n), nil
	})
}

// Decimal parses amounts with exact textual precision. Tally exports
// currency values, so binary floats are never involved; the shopspring
// representation keeps "1234.50" distinct from "1234.5".
type Decimal struct{ Required bool }

func (c Decimal) IsRequired() bool { return c.Required }

func (c Decimal) FromWire(text string) (any, error) {
	return fromWire("decimal", text, c.Required, func(s string) (any, error) {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, &tallyerror.ValueError{Converter: "decimal", Text: s, Err: err}
		}
		return d, nil
	})
}

func (c Decimal) ToWire(v any) (string, error) {
	return toWire("decimal", v, c.Required, func(v any) (string, error) {
		d, ok := v.(decimal.Decimal)
		if !ok {
			return "", &tallyerror.ValueError{Converter: "decimal", Text: "non-decimal value"}
		}
		return d.String(), nil
	})
}

// Boolean accepts exactly "Yes" and "No"; anything else is a conversion
// error, never silently defaulted.
type Boolean struct{ Required bool }

func (c Boolean) IsRequired() bool { return c.Required }

func (c Boolean) FromWire(text string) (any, error) {
	return fromWire("boolean", text, c.Required, func(s string) (any, error) {
		switch s {
		case "Yes":
			return true, nil
		case "No":
			return false, nil
		}
		return nil, &tallyerror.ValueError{Converter: "boolean", Text: s}
	})
}

func (c Boolean) ToWire(v any) (string, error) {
	return toWire("boolean", v, c.Required, func(v any) (string, error) {
		b, ok := v.(bool)
		if !ok {
			return "", &tallyerror.ValueError{Converter: "boolean", Text: "non-bool value"}
		}
		if b {
			return "Yes", nil
		}
		return "No", nil
	})
}

// Date handles the fixed 8-digit YYYYMMDD wire format.
type Date struct{ Required bool }

func (c Date) IsRequired() bool { return c.Required }

func (c Date) FromWire(text string) (any, error) {
	return fromWire("date", text, c.Required, func(s string) (any, error) {
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return nil, &tallyerror.ValueError{Converter: "date", Text: s, Err: err}
		}
		return t, nil
	})
}

func (c Date) ToWire(v any) (string, error) {
	return toWire("date", v, c.Required, func(v any) (string, error) {
		t, ok := v.(time.Time)
		if !ok {
			return "", &tallyerror.ValueError{Converter: "date", Text: "non-time value"}
		}
		return t.Format(DateLayout), nil
	})
}

// DateTime handles the "D-MMM-YYYY at HH:mm" wire format, where the
// literal word "at" separates the date and time halves. ToWire renders
// back to the exact same literal form.
type DateTime struct{ Required bool }

func (c DateTime) IsRequired() bool { return c.Required }

func (c DateTime) FromWire(text string) (any, error) {
	return fromWire("datetime", text, c.Required, func(s string) (any, error) {
		parts := strings.Split(s, "at")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		t, err := time.Parse(DateTimeLayout, strings.Join(parts, " "))
		if err != nil {
			return nil, &tallyerror.ValueError{Converter: "datetime", Text: s, Err: err}
		}
		return t, nil
	})
}

func (c DateTime) ToWire(v any) (string, error) {
	return toWire("datetime", v, c.Required, func(v any) (string, error) {
		t, ok := v.(time.Time)
		if !ok {
			return "", &tallyerror.ValueError{Converter: "datetime", Text: "non-time value"}
		}
		return strings.Join(strings.Fields(t.Format(DateTimeLayout)), dateTimeSeparator), nil
	})
}
