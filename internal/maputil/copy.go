// Package maputil deep-copies the nested map/slice values carried in asset
// object properties and filter options, so clones never alias their source.
package maputil

// DeepCopyMap returns an independent copy of src, recursing into nested
// maps and slices. Scalar values are shared; they are immutable here.
func DeepCopyMap(src map[string]interface{}) map[string]interface{} {
	if src == nil {
		return nil
	}

	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = copyValue(v)
	}

	return dst
}

// DeepCopySlice returns an independent copy of src, recursing into nested
// maps and slices.
func DeepCopySlice(src []interface{}) []interface{} {
	if src == nil {
		return nil
	}

	dst := make([]interface{}, len(src))
	for i, v := range src {
		dst[i] = copyValue(v)
	}

	return dst
}

func copyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return DeepCopyMap(val)
	case []interface{}:
		return DeepCopySlice(val)
	default:
		return v
	}
}
