package shortlink

import (
	"errors"
	"fmt"
	"math"

	"base62num.local/base62"
	"base62num.local/internal/platform/metrics"
)

// ErrInvalidCode 短码无法映射到一个合法的 id。
var ErrInvalidCode = errors.New("invalid code")

// 解码失败原因，同时用作指标 label 和 API 返回的 reason
const (
	ReasonEmpty            = "empty"
	ReasonInvalidCharacter = "invalid_character"
	ReasonOverflow         = "overflow"
	ReasonNonCanonical     = "non_canonical"
)

// CodeOf 返回 id 的短码，id 必须 >= 0。
func CodeOf(id int64) string {
	return base62.Encode(uint64(id))
}

// IDOf 是 CodeOf 的逆运算。返回的错误都 wrap 了 ErrInvalidCode。
//
// 除 base62 本身的错误外，还拒绝：
//   - 带前导 'A' 的多位短码（"AB" 和 "B" 是同一个数，只认后者）
//   - 超过 math.MaxInt64 的值（Postgres BIGINT 是有符号的）
func IDOf(code string) (int64, error) {
	n, err := base62.Parse(code)
	if err != nil {
		reason := Reason(err)
		metrics.CodecDecodeFailures.WithLabelValues(reason).Inc()
		return 0, fmt.Errorf("%w: %w", ErrInvalidCode, err)
	}
	if len(code) > 1 && code[0] == base62.Alphabet[0] {
		metrics.CodecDecodeFailures.WithLabelValues(ReasonNonCanonical).Inc()
		return 0, fmt.Errorf("%w: non-canonical %q", ErrInvalidCode, code)
	}
	if n > math.MaxInt64 {
		metrics.CodecDecodeFailures.WithLabelValues(ReasonOverflow).Inc()
		return 0, fmt.Errorf("%w: %q exceeds id range", ErrInvalidCode, code)
	}
	return int64(n), nil
}

// Reason 把解码错误归类成稳定的短字符串，未知错误返回空串。
func Reason(err error) string {
	switch {
	case errors.Is(err, base62.ErrEmpty):
		return ReasonEmpty
	case errors.Is(err, base62.ErrInvalidCharacter):
		return ReasonInvalidCharacter
	case errors.Is(err, base62.ErrOverflow):
		return ReasonOverflow
	default:
		return ""
	}
}
