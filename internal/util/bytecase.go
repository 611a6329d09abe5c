package util

// ByteLowercase returns a [byte-lowercase] version of s.
// If s contains no ASCII uppercase letters, s itself is returned
// and no allocation takes place.
//
// [byte-lowercase]: https://infra.spec.whatwg.org/#byte-lowercase
func ByteLowercase(s string) string {
	return mapASCII(s, 'A', 'Z', 'a'-'A')
}

// ByteUppercase returns a [byte-uppercase] version of s.
// If s contains no ASCII lowercase letters, s itself is returned
// and no allocation takes place.
//
// [byte-uppercase]: https://infra.spec.whatwg.org/#byte-uppercase
func ByteUppercase(s string) string {
	return mapASCII(s, 'a', 'z', 'A'-'a')
}

// mapASCII shifts by delta every byte of s that falls in [lo, hi].
func mapASCII(s string, lo, hi byte, delta int) string {
	i := 0
	for ; i < len(s); i++ {
		if lo <= s[i] && s[i] <= hi {
			break
		}
	}
	if i == len(s) {
		return s
	}
	buf := []byte(s)
	for ; i < len(buf); i++ {
		if lo <= buf[i] && buf[i] <= hi {
			buf[i] = byte(int(buf[i]) + delta)
		}
	}
	return string(buf)
}
