package base62

import (
	"errors"
	"strconv"
)

var (
	// ErrEmpty is returned when the input has no digits at all.
	ErrEmpty = errors.New("empty input")
	// ErrInvalidCharacter is returned for any byte outside Alphabet.
	ErrInvalidCharacter = errors.New("invalid character")
	// ErrOverflow is returned when the value does not fit the target width.
	ErrOverflow = errors.New("value out of range")
)

// NumError records a failed parse, in the manner of strconv.NumError.
type NumError struct {
	Input string // the input as given
	Pos   int    // byte offset where parsing stopped
	Err   error  // one of ErrEmpty, ErrInvalidCharacter, ErrOverflow
}

func (e *NumError) Error() string {
	msg := "base62: parsing " + strconv.Quote(e.Input) + ": " + e.Err.Error()
	if errors.Is(e.Err, ErrInvalidCharacter) {
		msg += " at offset " + strconv.Itoa(e.Pos)
	}
	return msg
}

func (e *NumError) Unwrap() error { return e.Err }
