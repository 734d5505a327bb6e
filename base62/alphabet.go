package base62

// Alphabet 是固定的 62 个字符，下标即数字值：
// A-Z -> 0..25，a-z -> 26..51，0-9 -> 52..61。
//
// 顺序是编码互通的唯一约定，任何一处改动都会让已发出的短码失效。
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	base    = uint64(len(Alphabet))
	invalid = 0xFF

	// MaxLen 是 uint64 编码后的最大长度：62^10 < 2^64 <= 62^11。
	MaxLen = 11
)

// digits 是 Alphabet 的反查表，非字母表字节为 invalid。
var digits = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = invalid
	}
	for i := 0; i < len(Alphabet); i++ {
		t[Alphabet[i]] = byte(i)
	}
	return t
}()

func charAt(d uint64) byte {
	return Alphabet[d]
}

func digitOf(c byte) (uint64, bool) {
	d := digits[c]
	if d == invalid {
		return 0, false
	}
	return uint64(d), true
}
