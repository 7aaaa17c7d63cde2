package model

// TruncateString cuts a string down to the allowed maximum length.
func TruncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength]
}
