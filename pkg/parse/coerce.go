package parse

import (
	"strconv"

	"modcmd/pkg/platform"
)

// Raw value coercions. Text invocations always supply string tokens;
// interaction payloads supply typed values. Either form is accepted.

func toString(raw Value) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", Invalidf("expected a text value, got %T", raw)
	}
}

func toInt64(raw Value) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		n := int64(v)
		if float64(n) != v {
			return 0, Invalidf("value %v is not an integer", v)
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, Invalidf("value %q is not an integer", v)
		}
		return n, nil
	default:
		return 0, Invalidf("expected an integer value, got %T", raw)
	}
}

func toFloat64(raw Value) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, Invalidf("value %q is not a number", v)
		}
		return f, nil
	default:
		return 0, Invalidf("expected a number value, got %T", raw)
	}
}

func toBool(raw Value) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, Invalidf("value %q is not a boolean", v)
		}
		return b, nil
	default:
		return false, Invalidf("expected a boolean value, got %T", raw)
	}
}

func toAttachment(raw Value) (platform.Attachment, error) {
	if a, ok := raw.(platform.Attachment); ok {
		return a, nil
	}
	return nil, Invalidf("expected an attachment, got %T", raw)
}
