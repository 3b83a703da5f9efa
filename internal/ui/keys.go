package ui

import (
	"unicode"

	"golang.org/x/mobile/event/key"
)

// KeyShortcut describes a single keyboard shortcut.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// shortcutOf normalises a key press for keymap lookups. Printable keys are
// matched by rune, everything else by code.
func shortcutOf(e key.Event) KeyShortcut {
	mods := e.Modifiers &^ key.ModShift
	if e.Rune > 0 && unicode.IsPrint(e.Rune) {
		r := e.Rune
		if mods&(key.ModControl|key.ModMeta) != 0 {
			r = unicode.ToLower(r)
		}
		return KeyShortcut{Rune: r, Modifiers: mods}
	}
	if e.Code == key.CodeTab {
		mods = e.Modifiers
	}
	return KeyShortcut{Rune: -1, Code: e.Code, Modifiers: mods}
}

func runeKey(r rune) KeyShortcut { return KeyShortcut{Rune: r} }

func ctrlRune(r rune) KeyShortcut { return KeyShortcut{Rune: r, Modifiers: key.ModControl} }

func codeKey(c key.Code) KeyShortcut { return KeyShortcut{Rune: -1, Code: c} }

// keymap binds shortcuts to action names.
type keymap struct {
	actions  map[string]func()
	bindings map[KeyShortcut]string
	help     []string
}

func newKeymap() *keymap {
	return &keymap{actions: map[string]func(){}, bindings: map[KeyShortcut]string{}}
}

func (k *keymap) register(name, help string, keys KeyboardShortcuts, fn func()) {
	k.actions[name] = fn
	if keys != nil {
		for _, sc := range keys.KeyboardShortcuts() {
			k.bindings[sc] = name
		}
	}
	if help != "" {
		k.help = append(k.help, help)
	}
}

// lookup returns the action bound to e.
func (k *keymap) lookup(e key.Event) (string, bool) {
	name, ok := k.bindings[shortcutOf(e)]
	return name, ok
}

func (k *keymap) run(name string) bool {
	fn, ok := k.actions[name]
	if ok {
		fn()
	}
	return ok
}
