package core

// Itoa converts an integer to a string without using fmt package
func Itoa(n int) string {
	if n >= 0 {
		return Utoa(uint64(n))
	}
	// Negate in unsigned space so the minimum int does not overflow
	return "-" + Utoa(uint64(-(n+1))+1)
}

// Utoa converts an unsigned integer to a string
func Utoa(n uint64) string {
	if n == 0 {
		return "0"
	}

	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}

	return string(buf[pos:])
}

// Pad2 formats n with at least two digits, zero padded ("%02d")
func Pad2(n uint64) string {
	if n < 10 {
		return "0" + Utoa(n)
	}
	return Utoa(n)
}
