package core

const hexDigits = "0123456789ABCDEF"

// hex16 formats a register word as 0xNNNN without using fmt
func hex16(v uint16) string {
	buf := [6]byte{'0', 'x'}
	for i := 0; i < 4; i++ {
		buf[5-i] = hexDigits[v&0xF]
		v >>= 4
	}
	return string(buf[:])
}

// utoa converts an unsigned integer to a string
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}

	return string(buf[pos:])
}
