package hotkey

import (
	"fmt"
	"strings"
)

// Modifier битовая маска модификаторов в раскладке WinAPI (MOD_*).
type Modifier uint32

const (
	ModAlt   Modifier = 0x0001
	ModCtrl  Modifier = 0x0002
	ModShift Modifier = 0x0004
	ModWin   Modifier = 0x0008
)

// Chord разобранная комбинация клавиш.
type Chord struct {
	Mods Modifier
	Key  string // Имя клавиши в нижнем регистре: "b", "7", "space", "f5"
	VK   uint32 // Virtual-key code Windows
}

func (c Chord) String() string {
	var parts []string
	if c.Mods&ModCtrl != 0 {
		parts = append(parts, "ctrl")
	}
	if c.Mods&ModAlt != 0 {
		parts = append(parts, "alt")
	}
	if c.Mods&ModShift != 0 {
		parts = append(parts, "shift")
	}
	if c.Mods&ModWin != 0 {
		parts = append(parts, "win")
	}
	return strings.Join(append(parts, c.Key), "+")
}

// ParseError неверная строка комбинации.
type ParseError struct {
	Input string
	Token string
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("hotkey: invalid chord %q: %s %q", e.Input, e.Msg, e.Token)
	}
	return fmt.Sprintf("hotkey: invalid chord %q: %s", e.Input, e.Msg)
}

// ParseChord разбирает строку вида "ctrl+alt+b". Регистр и пробелы не важны.
func ParseChord(s string) (Chord, error) {
	var c Chord
	for _, raw := range strings.Split(s, "+") {
		tok := strings.ToLower(strings.TrimSpace(raw))
		switch tok {
		case "ctrl", "control":
			c.Mods |= ModCtrl
		case "alt":
			c.Mods |= ModAlt
		case "shift":
			c.Mods |= ModShift
		case "win", "windows", "super", "meta":
			c.Mods |= ModWin
		default:
			vk, ok := virtualKey(tok)
			if !ok {
				return Chord{}, &ParseError{Input: s, Token: tok, Msg: "unknown key"}
			}
			if c.Key != "" {
				return Chord{}, &ParseError{Input: s, Token: tok, Msg: "more than one key"}
			}
			c.Key, c.VK = tok, vk
		}
	}
	if c.Key == "" {
		return Chord{}, &ParseError{Input: s, Msg: "missing key"}
	}
	return c, nil
}

// virtualKey переводит имя клавиши в VK-код: буквы и цифры совпадают с ASCII,
// VK_F1 = 0x70 и далее подряд до VK_F24.
func virtualKey(tok string) (uint32, bool) {
	switch tok {
	case "space":
		return 0x20, true
	case "enter":
		return 0x0D, true
	}
	if len(tok) == 1 {
		ch := tok[0]
		switch {
		case ch >= 'a' && ch <= 'z':
			return uint32(ch-'a') + 'A', true
		case ch >= '0' && ch <= '9':
			return uint32(ch), true
		}
		return 0, false
	}
	var n int
	if _, err := fmt.Sscanf(tok, "f%d", &n); err == nil && fmt.Sprintf("f%d", n) == tok && n >= 1 && n <= 24 {
		return 0x70 + uint32(n-1), true
	}
	return 0, false
}
