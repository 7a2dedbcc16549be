package dhash

import "fmt"

// toReprString formats a single element for the view String() methods,
// quoting bare strings the way the original implementation's __repr__
// did for its keys/values/items.
func toReprString[T any](v T) string {
	if s, ok := any(v).(string); ok {
		return "'" + s + "'"
	}
	return fmt.Sprintf("%v", v)
}
