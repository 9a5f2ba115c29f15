package firmware

// Best-effort numeric parsing, matching the tolerant toInt/toFloat
// behavior the serial hosts were written against: parse as far as the
// text stays numeric, yield 0 when nothing numeric leads the string.
// Malformed suffixes are NOT a protocol error (see DESIGN.md).

// atoiPrefix parses an optionally signed integer prefix of s.
func atoiPrefix(s string) int {
	i, neg := 0, false
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		neg = s[i] == '-'
		i++
	}
	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		return -n
	}
	return n
}

// atofPrefix parses an optionally signed decimal prefix of s.
// No exponent support; the protocol never uses one.
func atofPrefix(s string) float32 {
	i, neg := 0, false
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		neg = s[i] == '-'
		i++
	}
	var v float32
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		v = v*10 + float32(s[i]-'0')
	}
	if i < len(s) && s[i] == '.' {
		i++
		scale := float32(0.1)
		for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
			v += float32(s[i]-'0') * scale
			scale /= 10
		}
	}
	if neg {
		return -v
	}
	return v
}
