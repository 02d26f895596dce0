package export

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// StringFormatter renders values with fmt semantics.
type StringFormatter struct{}

// FormatValue implements ColumnFormatter.
func (StringFormatter) FormatValue(value any, col Column) (string, error) {
	_ = col
	return stringify(value), nil
}

// cellKind groups column type aliases by how their cells render.
type cellKind int

const (
	cellText cellKind = iota
	cellBool
	cellInt
	cellFloat
	cellDate
	cellTime
	cellDateTime
)

var cellKinds = map[string]cellKind{
	"bool": cellBool, "boolean": cellBool,
	"int": cellInt, "integer": cellInt, "bigint": cellInt, "smallint": cellInt,
	"int64": cellInt, "int32": cellInt,
	"float": cellFloat, "double": cellFloat, "decimal": cellFloat, "numeric": cellFloat,
	"number": cellFloat, "float64": cellFloat, "float32": cellFloat,
	"date":     cellDate,
	"time":     cellTime,
	"timetz":   cellTime,
	"datetime": cellDateTime, "timestamp": cellDateTime, "timestamptz": cellDateTime,
}

// kindOfColumn maps a column type to its cell kind. Unknown types render as text.
func kindOfColumn(colType string) cellKind {
	return cellKinds[strings.ToLower(strings.TrimSpace(colType))]
}

func (k cellKind) String() string {
	switch k {
	case cellBool:
		return "bool"
	case cellInt:
		return "int"
	case cellFloat:
		return "number"
	case cellDate:
		return "date"
	case cellTime:
		return "time"
	case cellDateTime:
		return "datetime"
	default:
		return "text"
	}
}

func (k cellKind) layout() string {
	switch k {
	case cellDate:
		return "2006-01-02"
	case cellTime:
		return "15:04:05"
	default:
		return time.RFC3339
	}
}

// LocaleFormatter renders values according to column type, locale and timezone.
type LocaleFormatter struct {
	locale   language.Tag
	location *time.Location
	printer  *message.Printer
}

// NewLocaleFormatter creates a formatter for the given locale and IANA timezone.
func NewLocaleFormatter(tag language.Tag, timezone string) (*LocaleFormatter, error) {
	f := &LocaleFormatter{locale: tag, printer: message.NewPrinter(tag)}
	if tz := strings.TrimSpace(timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, NewError(KindValidation, "invalid timezone", err)
		}
		f.location = loc
	}
	return f, nil
}

// Locale returns the formatter locale.
func (f *LocaleFormatter) Locale() language.Tag {
	return f.locale
}

// FormatValue implements ColumnFormatter.
func (f *LocaleFormatter) FormatValue(value any, col Column) (string, error) {
	if isNil(value) {
		return "", nil
	}
	kind := kindOfColumn(col.Type)
	switch kind {
	case cellDate, cellTime, cellDateTime:
		return f.formatTime(value, col, kind)
	case cellBool:
		b, ok := cellBoolValue(value)
		if !ok {
			return "", invalidCell(value, col, kind)
		}
		return strconv.FormatBool(b), nil
	case cellInt:
		n, ok := cellIntValue(value)
		if !ok {
			return "", invalidCell(value, col, kind)
		}
		if pattern, ok := numberPattern(col); ok {
			return f.printer.Sprintf(pattern, n), nil
		}
		return strconv.FormatInt(n, 10), nil
	case cellFloat:
		n, ok := cellFloatValue(value)
		if !ok {
			return "", invalidCell(value, col, kind)
		}
		if pattern, ok := numberPattern(col); ok {
			return f.printer.Sprintf(pattern, n), nil
		}
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	default:
		if t, ok := value.(time.Time); ok && f.location != nil {
			return t.In(f.location).Format(time.RFC3339), nil
		}
		return stringify(value), nil
	}
}

func (f *LocaleFormatter) formatTime(value any, col Column, kind cellKind) (string, error) {
	t, ok := cellTimeValue(value)
	if !ok {
		return "", invalidCell(value, col, kind)
	}
	if f.location != nil {
		t = t.In(f.location)
	}
	layout := strings.TrimSpace(col.Format.Layout)
	if layout == "" {
		layout = kind.layout()
	}
	return t.Format(layout), nil
}

func numberPattern(col Column) (string, bool) {
	pattern := strings.TrimSpace(col.Format.Number)
	return pattern, strings.Contains(pattern, "%")
}

func invalidCell(value any, col Column, kind cellKind) error {
	return fmt.Errorf("column %q: %v (%T) is not a valid %s", col.DisplayName(), value, value, kind)
}

// cellFloatValue accepts any Go numeric kind or a numeric string.
func cellFloatValue(value any) (float64, bool) {
	if s, ok := value.(string); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return n, err == nil
	}
	v := reflect.ValueOf(value)
	switch {
	case v.CanInt():
		return float64(v.Int()), true
	case v.CanUint():
		return float64(v.Uint()), true
	case v.CanFloat():
		return v.Float(), true
	}
	return 0, false
}

// cellIntValue accepts integers and whole floats or strings.
func cellIntValue(value any) (int64, bool) {
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		value = s
	}
	v := reflect.ValueOf(value)
	switch {
	case v.CanInt():
		return v.Int(), true
	case v.CanUint():
		if v.Uint() > math.MaxInt64 {
			return 0, false
		}
		return int64(v.Uint()), true
	}
	n, ok := cellFloatValue(value)
	if !ok || math.Trunc(n) != n || math.Abs(n) > math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

func cellBoolValue(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	}
	n, ok := cellFloatValue(value)
	return n != 0, ok
}

var cellTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"15:04:05",
}

// cellTimeValue accepts time.Time, a parseable string or unix seconds.
func cellTimeValue(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		v = strings.TrimSpace(v)
		for _, layout := range cellTimeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
	secs, ok := cellIntValue(value)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(value)
	}
}
