// Package base62 converts unsigned integers to and from their Base62 text form.
//
// The digit order is fixed by Alphabet. Encode is total; Decode and Parse reject
// any byte outside the alphabet and any value that does not fit the result type.
// All functions are pure and safe for concurrent use.
package base62

import "math"

// Encode returns the Base62 form of n, most significant digit first.
// Encode(0) is "A".
func Encode(n uint64) string {
	var buf [MaxLen]byte
	i := fill(&buf, n)
	return string(buf[i:])
}

// AppendEncode appends the Base62 form of n to dst and returns the extended buffer.
func AppendEncode(dst []byte, n uint64) []byte {
	var buf [MaxLen]byte
	i := fill(&buf, n)
	return append(dst, buf[i:]...)
}

// fill 从缓冲区尾部往前写，返回起始下标。
func fill(buf *[MaxLen]byte, n uint64) int {
	i := len(buf)
	if n == 0 {
		i--
		buf[i] = charAt(0)
		return i
	}
	for n > 0 {
		i--
		buf[i] = charAt(n % base)
		n /= base
	}
	return i
}

// Decode returns the value of s and true, or 0 and false when s is empty,
// contains a byte outside Alphabet, or overflows uint64.
func Decode(s string) (uint64, bool) {
	n, err := parse(s, math.MaxUint64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Parse is like Decode but reports why the input was rejected.
// The returned error is a *NumError wrapping ErrEmpty, ErrInvalidCharacter or ErrOverflow.
func Parse(s string) (uint64, error) {
	return parse(s, math.MaxUint64)
}

// DecodeUint32 is Decode bounded to the 32-bit range.
func DecodeUint32(s string) (uint32, bool) {
	n, err := parse(s, math.MaxUint32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// ParseUint32 is Parse bounded to the 32-bit range.
func ParseUint32(s string) (uint32, error) {
	n, err := parse(s, math.MaxUint32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

// parse 从左到右累加，遇到非法字符或溢出立即返回，不产生部分结果。
func parse(s string, limit uint64) (uint64, error) {
	if s == "" {
		return 0, &NumError{Input: s, Err: ErrEmpty}
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		d, ok := digitOf(s[i])
		if !ok {
			return 0, &NumError{Input: s, Pos: i, Err: ErrInvalidCharacter}
		}
		// n*62 + d <= limit  <=>  n <= (limit-d)/62
		if n > (limit-d)/base {
			return 0, &NumError{Input: s, Pos: i, Err: ErrOverflow}
		}
		n = n*base + d
	}
	return n, nil
}
