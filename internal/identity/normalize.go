package identity

// Normalize strips a raw number down to the digits used for directory
// matching. Numbers longer than ten digits keep only the last ten, which
// drops country codes and trunk prefixes.
func Normalize(raw string) string {
	digits := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return string(digits)
}
