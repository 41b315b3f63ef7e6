// Package keypad provides the CHIP-8 hexadecimal keypad input latch and the
// mapping of host key codes to logical keys.
package keypad

// Count is the number of logical keys, 0x0 to 0xF.
const Count = 16

// noWait marks the latch as not waiting for a key press.
const noWait = -1

// Keypad holds the pressed state of every logical key and the register that
// a pending key wait instruction stores the next pressed key into.
type Keypad struct {
	pressed      [Count]bool
	waitRegister int
}

// New returns a keypad with all keys released and no pending key wait.
func New() *Keypad {
	return &Keypad{
		waitRegister: noWait,
	}
}

// Press marks the key as pressed. Keys outside of the keypad are ignored.
func (k *Keypad) Press(key uint8) {
	if key < Count {
		k.pressed[key] = true
	}
}

// Release marks the key as released. Keys outside of the keypad are ignored.
func (k *Keypad) Release(key uint8) {
	if key < Count {
		k.pressed[key] = false
	}
}

// IsPressed returns whether the key is currently pressed.
func (k *Keypad) IsPressed(key uint8) bool {
	return key < Count && k.pressed[key]
}

// WaitFor enters the key wait state, the next key press will be stored in
// the given register.
func (k *Keypad) WaitFor(register uint8) {
	k.waitRegister = int(register)
}

// Waiting returns the register index of a pending key wait.
func (k *Keypad) Waiting() (uint8, bool) {
	if k.waitRegister == noWait {
		return 0, false
	}
	return uint8(k.waitRegister), true
}

// Resolve ends a pending key wait and returns the register that should
// receive the pressed key.
func (k *Keypad) Resolve() (uint8, bool) {
	register, ok := k.Waiting()
	k.waitRegister = noWait
	return register, ok
}
