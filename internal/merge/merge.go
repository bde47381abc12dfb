// Package merge implements the recursive merge used for alarm definitions.
//
// Only mappings are merged key by key. Every other value, lists included,
// replaces the destination value wholesale, so dimension and metric lists
// never combine element-wise.
package merge

import "maps"

// Deep returns a new mapping holding dst overlaid with src. Neither argument
// is modified; nested mappings of the result are fresh copies.
func Deep(dst, src map[string]any) map[string]any {
	out := Clone(dst)
	if out == nil {
		out = make(map[string]any, len(src))
	}

	for key, value := range src {
		srcMap, srcIsMap := value.(map[string]any)
		dstMap, dstIsMap := out[key].(map[string]any)

		if srcIsMap && dstIsMap {
			out[key] = Deep(dstMap, srcMap)

			continue
		}

		out[key] = cloneValue(value)
	}

	return out
}

// Clone copies m and every nested mapping or list it contains.
func Clone(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = cloneValue(value)
	}

	return out
}

// CloneList copies l and every nested mapping or list it contains.
func CloneList(l []any) []any {
	if l == nil {
		return nil
	}

	return cloneValue(l).([]any)
}

// Without returns a copy of m lacking the given keys.
func Without(m map[string]any, keys ...string) map[string]any {
	out := maps.Clone(m)
	for _, key := range keys {
		delete(out, key)
	}

	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return Clone(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}

		return out
	default:
		return value
	}
}
