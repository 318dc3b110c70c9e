package tool

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the declared type of a parameter. The set is closed:
// adding a kind means adding one entry to kindHandlers and nothing else.
type Kind string

const (
	KindString      Kind = "string"
	KindInteger     Kind = "integer"
	KindFloat       Kind = "float"
	KindFilePath    Kind = "file-path"
	KindFolderPath  Kind = "folder-path"
	KindChoice      Kind = "single-choice"
	KindMultiChoice Kind = "multi-choice"
	KindBoolean     Kind = "boolean"
	KindDate        Kind = "date"
	KindList        Kind = "list"
	KindSecret      Kind = "secret"
)

const dateLayout = "2006-01-02"

// kindHandler bundles the per-kind behaviors: coercing an arbitrary
// value (defaults, --set overrides, imported records) into the kind's
// native representation, and stringifying that representation for
// command compilation.
type kindHandler struct {
	coerce    func(v any) (any, error)
	stringify func(v any) string
}

var kindHandlers = map[Kind]kindHandler{
	KindString:      {coerce: coerceString, stringify: stringifyString},
	KindFilePath:    {coerce: coerceString, stringify: stringifyString},
	KindFolderPath:  {coerce: coerceString, stringify: stringifyString},
	KindChoice:      {coerce: coerceString, stringify: stringifyString},
	KindSecret:      {coerce: coerceString, stringify: stringifyString},
	KindInteger:     {coerce: coerceInteger, stringify: stringifyAuto},
	KindFloat:       {coerce: coerceFloat, stringify: stringifyFloat},
	KindBoolean:     {coerce: coerceBoolean, stringify: stringifyBoolean},
	KindDate:        {coerce: coerceDate, stringify: stringifyString},
	KindList:        {coerce: coerceList, stringify: stringifyList},
	KindMultiChoice: {coerce: coerceList, stringify: stringifyList},
}

// Valid reports whether k is a member of the closed kind set.
func (k Kind) Valid() bool {
	_, ok := kindHandlers[k]
	return ok
}

// Coerce converts v into the kind's native representation:
// string-family kinds -> string, integer -> int64, float -> float64,
// boolean -> bool, list/multi-choice -> []string. Booleans accept
// {true, yes, on, 1} case-insensitively as on and everything else as
// off; lists accept a comma-joined string or a native sequence.
func (k Kind) Coerce(v any) (any, error) {
	h, ok := kindHandlers[k]
	if !ok {
		return nil, newError(ErrorCodeUnknownKind, fmt.Sprintf("unknown parameter kind %q", string(k)), nil)
	}
	out, err := h.coerce(v)
	if err != nil {
		return nil, newError(ErrorCodeCoerceFailed, fmt.Sprintf("cannot coerce %v to %s: %v", v, k, err), err)
	}
	return out, nil
}

// Stringify renders a coerced value as the single string token passed
// to child processes. This is a documented string contract: booleans
// render as literal "True"/"False" and lists as comma-joined items; the
// receiving tool parses them itself.
func (k Kind) Stringify(v any) string {
	h, ok := kindHandlers[k]
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return h.stringify(v)
}

func coerceString(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	default:
		return fmt.Sprintf("%v", t), nil
	}
}

func coerceInteger(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return int64(0), nil
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		return int64(t), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return int64(0), nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unsupported integer source %T", v)
	}
}

func coerceFloat(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return float64(0), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case float64:
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return float64(0), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported float source %T", v)
	}
}

func coerceBoolean(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	default:
		s := strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", t)))
		switch s {
		case "true", "yes", "on", "1":
			return true, nil
		default:
			return false, nil
		}
	}
}

func coerceDate(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case time.Time:
		return t.Format(dateLayout), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return "", nil
		}
		if _, err := time.Parse(dateLayout, s); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported date source %T", v)
	}
}

func coerceList(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return trimNonEmpty(t), nil
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return trimNonEmpty(items), nil
	case string:
		return trimNonEmpty(strings.Split(t, ",")), nil
	default:
		return nil, fmt.Errorf("unsupported list source %T", v)
	}
}

func trimNonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stringifyString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func stringifyAuto(v any) string {
	return fmt.Sprintf("%v", v)
}

func stringifyFloat(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}

// stringifyBoolean intentionally uses the "True"/"False" literal forms;
// module-mode tools receive booleans as plain string arguments.
func stringifyBoolean(v any) string {
	if b, ok := v.(bool); ok && b {
		return "True"
	}
	return "False"
}

func stringifyList(v any) string {
	switch t := v.(type) {
	case []string:
		return strings.Join(t, ",")
	case string:
		return t
	default:
		return fmt.Sprintf("%v", v)
	}
}
