package keypad

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/retroenv/retrogolib/set"
)

// KeyCode identifies a key of the host keyboard. Letters are stored as upper
// case runes.
type KeyCode rune

// String returns the printable key name.
func (c KeyCode) String() string {
	return string(rune(c))
}

// KeyMap maps every logical key index to a host key code.
type KeyMap [Count]KeyCode

var errKeyMapLength = errors.New("key map must contain exactly 16 keys")

// DefaultKeyMap returns the COSMAC VIP keypad layout placed on the left side
// of a QWERTY keyboard:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
func DefaultKeyMap() KeyMap {
	return KeyMap{
		0x0: 'X',
		0x1: '1',
		0x2: '2',
		0x3: '3',
		0x4: 'Q',
		0x5: 'W',
		0x6: 'E',
		0x7: 'A',
		0x8: 'S',
		0x9: 'D',
		0xA: 'Z',
		0xB: 'C',
		0xC: '4',
		0xD: 'R',
		0xE: 'F',
		0xF: 'V',
	}
}

// ParseKeyMap parses a key map from a string of 16 keys, the character at
// position i is the host key of logical key i. Letters are case insensitive.
func ParseKeyMap(s string) (KeyMap, error) {
	var km KeyMap
	if utf8.RuneCountInString(s) != Count {
		return km, errKeyMapLength
	}

	seen := set.New[KeyCode]()
	for i, r := range []rune(s) {
		code := NormalizeKeyCode(r)
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return km, fmt.Errorf("key %X: unsupported host key %q", i, r)
		}
		if seen.Contains(code) {
			return km, fmt.Errorf("key %X: host key '%s' is mapped twice", i, code)
		}
		seen.Add(code)
		km[i] = code
	}
	return km, nil
}

// NormalizeKeyCode converts a rune typed on the host keyboard to a key code.
func NormalizeKeyCode(r rune) KeyCode {
	return KeyCode(unicode.ToUpper(r))
}

// Index returns the logical key that the host key code is mapped to.
func (m KeyMap) Index(code KeyCode) (uint8, bool) {
	for i, c := range m {
		if c == code {
			return uint8(i), true
		}
	}
	return 0, false
}

// String returns the key map in the format accepted by ParseKeyMap.
func (m KeyMap) String() string {
	var sb strings.Builder
	for _, c := range m {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}
