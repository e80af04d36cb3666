// Package httpcache derives deterministic cache keys and ETags for API
// responses and writes conditional-request-aware HTTP responses. All key and
// fingerprint functions are pure: they never fail, degrading to
// timestamp-based fallbacks when a payload cannot be serialized, because an
// imperfect cache key is far less harmful than a crashed response path.
package httpcache

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultNamespace prefixes keys built without an explicit namespace.
const DefaultNamespace = "cache"

// Key derives a deterministic cache key from a parameter map. Two calls with
// the same logical parameter set produce an identical key regardless of map
// construction or slice order: top-level keys are sorted, slice values are
// sorted, and nested map keys are sorted recursively. The result is
// "namespace:key1:val1:key2:val2...".
func Key(namespace string, params map[string]any) string {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, 1+2*len(keys))
	parts = append(parts, namespace)
	for _, k := range keys {
		val, err := canonicalValue(params[k])
		if err != nil {
			return fallbackKey(namespace)
		}
		parts = append(parts, k, val)
	}
	return strings.Join(parts, ":")
}

func fallbackKey(namespace string) string {
	return namespace + ":fallback:" + strconv.FormatInt(time.Now().UnixNano(), 10)
}

func canonicalValue(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprint(t), nil
	case []string:
		sorted := make([]string, len(t))
		copy(sorted, t)
		sort.Strings(sorted)
		return strings.Join(sorted, ","), nil
	case []any:
		elems := make([]string, 0, len(t))
		for _, e := range t {
			s, err := canonicalValue(e)
			if err != nil {
				return "", err
			}
			elems = append(elems, s)
		}
		sort.Strings(elems)
		return strings.Join(elems, ","), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			s, err := canonicalValue(t[k])
			if err != nil {
				return "", err
			}
			pairs = append(pairs, k+"="+s)
		}
		return "{" + strings.Join(pairs, ";") + "}", nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
