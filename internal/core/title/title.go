package title

import "strings"

// Normalize converts a display title into the key used for upstream queries
// and store resources: spaces become underscores.
// Example: Normalize("Ada Lovelace") → "Ada_Lovelace"
func Normalize(t string) string {
	return strings.ReplaceAll(t, " ", "_")
}

// Denormalize reverses Normalize for display.
func Denormalize(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}
