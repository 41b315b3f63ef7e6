package machine

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func program(opcodes ...uint16) []byte {
	data := make([]byte, 0, len(opcodes)*opcodeSize)
	for _, op := range opcodes {
		data = append(data, byte(op>>8), byte(op))
	}
	return data
}

func newTestMachine(t *testing.T, opcodes ...uint16) *Machine {
	t.Helper()
	m, err := New(program(opcodes...), WithRandom(func() byte { return 0xAB }))
	assert.NoError(t, err)
	return m
}

func mustStep(t *testing.T, m *Machine, count int) Result {
	t.Helper()
	var (
		res Result
		err error
	)
	for range count {
		res, err = m.Step()
		assert.NoError(t, err)
	}
	return res
}

func TestNew(t *testing.T) {
	m := newTestMachine(t, 0x00E0, 0x1202)

	font := Font()
	assert.Equal(t, font[:], m.State.Memory[:len(font)])
	assert.Equal(t, []byte{0x00, 0xE0, 0x12, 0x02}, m.State.Memory[ProgramStart:ProgramStart+4])
	assert.Equal(t, uint16(ProgramStart), m.State.PC)
	assert.Equal(t, uint8(0), m.State.SP)
	assert.False(t, m.Waiting())
}

func TestNew_ProgramSize(t *testing.T) {
	m, err := New(make([]byte, MaxProgramSize))
	assert.NoError(t, err)
	assert.NotNil(t, m)

	_, err = New(make([]byte, MaxProgramSize+1))
	assert.True(t, errors.Is(err, ErrProgramTooLarge))
}

func TestResult_String(t *testing.T) {
	m := newTestMachine(t, 0x6A12, 0x00E0)

	res := mustStep(t, m, 1)
	assert.Equal(t, "0200: 6A12 - Moving 0x12 into VA", res.String())
	assert.Equal(t, chip8.LdName, res.Mnemonic)

	res = mustStep(t, m, 1)
	assert.Equal(t, "0202: 00E0 - Clearing screen", res.String())
	assert.Equal(t, chip8.ClsName, res.Mnemonic)
}

func TestSkipConstant(t *testing.T) {
	for x := uint16(0); x < RegisterCount; x++ {
		for _, rr := range []uint16{0x00, 0x5A, 0xFF} {
			load := 0x6000 | x<<8 | rr

			m := newTestMachine(t, load, 0x3000|x<<8|rr)
			mustStep(t, m, 2)
			assert.Equal(t, uint16(0x206), m.State.PC)

			m = newTestMachine(t, load, 0x4000|x<<8|rr)
			mustStep(t, m, 2)
			assert.Equal(t, uint16(0x204), m.State.PC)
		}
	}
}

func TestSkipRegister(t *testing.T) {
	tests := []struct {
		name   string
		vx, vy uint8
		opcode uint16
		wantPC uint16
	}{
		{"SE equal", 7, 7, 0x5120, 0x204},
		{"SE different", 7, 8, 0x5120, 0x202},
		{"SNE equal", 7, 7, 0x9120, 0x202},
		{"SNE different", 7, 8, 0x9120, 0x204},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.opcode)
			m.State.V[1] = tt.vx
			m.State.V[2] = tt.vy
			mustStep(t, m, 1)
			assert.Equal(t, tt.wantPC, m.State.PC)
		})
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name   string
		vx, vy uint8
		vf     uint8
		opcode uint16
		wantVX uint8
		wantVF uint8
	}{
		{"LD", 0x01, 0x42, 0x00, 0x8120, 0x42, 0x00},
		{"OR clears VF", 0x0F, 0xF0, 0x01, 0x8121, 0xFF, 0x00},
		{"AND clears VF", 0x3C, 0x0F, 0x01, 0x8122, 0x0C, 0x00},
		{"XOR clears VF", 0xFF, 0x0F, 0x01, 0x8123, 0xF0, 0x00},
		{"ADD carry", 0xFF, 0x01, 0x00, 0x8124, 0x00, 0x01},
		{"ADD no carry", 0x10, 0x20, 0x01, 0x8124, 0x30, 0x00},
		{"SUB borrow", 0x01, 0x02, 0x01, 0x8125, 0xFF, 0x00},
		{"SUB no borrow", 0x05, 0x03, 0x00, 0x8125, 0x02, 0x01},
		{"SUB equal", 0x03, 0x03, 0x01, 0x8125, 0x00, 0x00},
		{"SHR", 0x05, 0x00, 0x00, 0x8126, 0x02, 0x01},
		{"SUBN no borrow", 0x01, 0x02, 0x00, 0x8127, 0x01, 0x01},
		{"SUBN borrow", 0x02, 0x01, 0x01, 0x8127, 0xFF, 0x00},
		{"SHL", 0x81, 0x00, 0x00, 0x812E, 0x02, 0x01},
		{"SHL no carry", 0x41, 0x00, 0x01, 0x812E, 0x82, 0x00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.opcode)
			m.State.V[1] = tt.vx
			m.State.V[2] = tt.vy
			m.State.V[FlagRegister] = tt.vf

			mustStep(t, m, 1)
			assert.Equal(t, tt.wantVX, m.State.V[1])
			assert.Equal(t, tt.wantVF, m.State.V[FlagRegister])
		})
	}
}

func TestArithmetic_AllRegisters(t *testing.T) {
	for x := uint16(0); x < FlagRegister; x++ {
		for y := uint16(0); y < FlagRegister; y++ {
			if x == y {
				continue
			}

			m := newTestMachine(t, 0x8004|x<<8|y<<4)
			m.State.V[x] = 0xFF
			m.State.V[y] = 0x01
			mustStep(t, m, 1)
			assert.Equal(t, uint8(0x00), m.State.V[x])
			assert.Equal(t, uint8(1), m.State.V[FlagRegister])

			m = newTestMachine(t, 0x8005|x<<8|y<<4)
			m.State.V[x] = 0x01
			m.State.V[y] = 0x02
			mustStep(t, m, 1)
			assert.Equal(t, uint8(0xFF), m.State.V[x])
			assert.Equal(t, uint8(0), m.State.V[FlagRegister])
		}
	}
}

func TestAddConstantWraps(t *testing.T) {
	m := newTestMachine(t, 0x61FF, 0x7102)
	m.State.V[FlagRegister] = 0x07
	mustStep(t, m, 2)
	assert.Equal(t, uint8(0x01), m.State.V[1])
	assert.Equal(t, uint8(0x07), m.State.V[FlagRegister])
}

func TestDrawSprite(t *testing.T) {
	m := newTestMachine(t, 0xD125, 0xD125)
	m.State.I = FontAddress // glyph "0"
	m.State.V[1] = 10
	m.State.V[2] = 5

	res := mustStep(t, m, 1)
	assert.Equal(t, "Draw sprite at 10, 5 with length 5", res.Description)
	assert.Equal(t, uint8(0), m.State.V[FlagRegister])
	assert.Equal(t, uint8(1), m.Display.Pixel(10, 5))
	assert.Equal(t, uint8(1), m.Display.Pixel(13, 9))

	mustStep(t, m, 1)
	assert.Equal(t, uint8(1), m.State.V[FlagRegister])
	for y := range 5 {
		for x := range 8 {
			assert.Equal(t, uint8(0), m.Display.Pixel(10+x, 5+y))
		}
	}
}

func TestDrawSprite_Wraps(t *testing.T) {
	m := newTestMachine(t, 0xD122)
	m.State.Memory[0x300] = 0xFF
	m.State.Memory[0x301] = 0xFF
	m.State.I = 0x300
	m.State.V[1] = 63
	m.State.V[2] = 31

	mustStep(t, m, 1)
	assert.Equal(t, uint8(0), m.State.V[FlagRegister])
	for _, y := range []int{31, 0} {
		assert.Equal(t, uint8(1), m.Display.Pixel(63, y))
		for x := range 7 {
			assert.Equal(t, uint8(1), m.Display.Pixel(x, y))
		}
		assert.Equal(t, uint8(0), m.Display.Pixel(7, y))
	}
	assert.Equal(t, uint8(0), m.Display.Pixel(0, 1))
}

func TestDrawSprite_OutOfRange(t *testing.T) {
	m := newTestMachine(t, 0xD125)
	m.State.I = 0xFFD

	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
}

func TestClearScreen(t *testing.T) {
	m := newTestMachine(t, 0x00E0)
	m.Display.Draw(0, 0, []byte{0xFF})
	mustStep(t, m, 1)
	assert.Equal(t, uint8(0), m.Display.Pixel(0, 0))
}

func TestStoreBCD(t *testing.T) {
	m := newTestMachine(t, 0xF333)
	m.State.V[3] = 157
	m.State.I = 0x300

	mustStep(t, m, 1)
	assert.Equal(t, []byte{1, 5, 7}, m.State.Memory[0x300:0x303])

	m = newTestMachine(t, 0xF333)
	m.State.I = 0xFFE
	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
}

func TestCallReturn(t *testing.T) {
	m := newTestMachine(t, 0x2206, 0x0000, 0x0000, 0x00EE)

	res := mustStep(t, m, 1)
	assert.Equal(t, "Jumping to subroutine at 0x206", res.Description)
	assert.Equal(t, uint16(0x206), m.State.PC)
	assert.Equal(t, uint8(1), m.State.SP)
	assert.Equal(t, uint16(0x202), m.State.Stack[0])

	res = mustStep(t, m, 1)
	assert.Equal(t, "Returning from subroutine to: 0x202", res.Description)
	assert.Equal(t, uint16(0x202), m.State.PC)
	assert.Equal(t, uint8(0), m.State.SP)
}

func TestStackOverflow(t *testing.T) {
	m := newTestMachine(t, 0x2200)
	mustStep(t, m, StackSize)
	assert.Equal(t, uint8(StackSize), m.State.SP)

	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.Equal(t, uint8(StackSize), m.State.SP)
}

func TestStackUnderflow(t *testing.T) {
	m := newTestMachine(t, 0x00EE)
	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
}

func TestJump(t *testing.T) {
	m := newTestMachine(t, 0x1204, 0x0000, 0x1204)

	res := mustStep(t, m, 1)
	assert.Equal(t, "Jumping to location 0x204", res.Description)
	assert.Equal(t, uint16(0x204), m.State.PC)
	assert.False(t, m.State.EndLoop)

	res = mustStep(t, m, 1)
	assert.Equal(t, "0204: 1204 - Endloop", res.String())
	assert.Equal(t, uint16(0x204), m.State.PC)
	assert.True(t, m.State.EndLoop)
}

func TestJumpOffset(t *testing.T) {
	m := newTestMachine(t, 0xB300)
	m.State.V[0] = 4
	mustStep(t, m, 1)
	assert.Equal(t, uint16(0x304), m.State.PC)

	m = newTestMachine(t, 0xBFFF)
	m.State.V[0] = 1
	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
}

func TestFetchOutOfRange(t *testing.T) {
	m := newTestMachine(t)
	m.State.PC = 0xFFF
	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
}

func TestRandom(t *testing.T) {
	m := newTestMachine(t, 0xC10F)
	mustStep(t, m, 1)
	assert.Equal(t, uint8(0x0B), m.State.V[1])
}

func TestKeyWait(t *testing.T) {
	m := newTestMachine(t, 0xF50A, 0x6001)

	assert.False(t, m.ResolveKeyWait(0x3))

	mustStep(t, m, 1)
	assert.True(t, m.Waiting())
	assert.Equal(t, uint16(0x202), m.State.PC)

	assert.False(t, m.ResolveKeyWait(0x10))
	assert.True(t, m.Waiting())

	assert.True(t, m.ResolveKeyWait(0xB))
	assert.False(t, m.Waiting())
	assert.Equal(t, uint8(0xB), m.State.V[5])
}

func TestSkipKey(t *testing.T) {
	tests := []struct {
		name    string
		opcode  uint16
		pressed bool
		wantPC  uint16
	}{
		{"SKP pressed", 0xE19E, true, 0x204},
		{"SKP released", 0xE19E, false, 0x202},
		{"SKNP pressed", 0xE1A1, true, 0x202},
		{"SKNP released", 0xE1A1, false, 0x204},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.opcode)
			m.State.V[1] = 0x3
			if tt.pressed {
				m.Keypad.Press(0x3)
			}
			mustStep(t, m, 1)
			assert.Equal(t, tt.wantPC, m.State.PC)
		})
	}

	m := newTestMachine(t, 0xE19E)
	m.State.V[1] = 0x10
	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrInvalidKey))
}

func TestTimers(t *testing.T) {
	m := newTestMachine(t, 0x6103, 0xF115, 0xF118, 0xF207)
	mustStep(t, m, 3)
	assert.Equal(t, uint8(3), m.State.DelayTimer)
	assert.Equal(t, uint8(3), m.State.SoundTimer)

	m.TickTimers()
	mustStep(t, m, 1)
	assert.Equal(t, uint8(2), m.State.V[2])

	for range 4 {
		m.TickTimers()
	}
	assert.Equal(t, uint8(0), m.State.DelayTimer)
	assert.Equal(t, uint8(0), m.State.SoundTimer)
}

func TestIndexInstructions(t *testing.T) {
	m := newTestMachine(t, 0xA2F0, 0xF11E, 0xF229)
	m.State.V[1] = 0x20
	m.State.V[2] = 0xA

	mustStep(t, m, 2)
	assert.Equal(t, uint16(0x310), m.State.I)

	mustStep(t, m, 1)
	assert.Equal(t, uint16(50), m.State.I)
}

func TestRegisterCopy(t *testing.T) {
	m := newTestMachine(t, 0xF355, 0x6000, 0x6100, 0x6200, 0x6300, 0xF265)
	m.State.I = 0x400
	m.State.V = [RegisterCount]byte{1, 2, 3, 4, 5}

	mustStep(t, m, 1)
	assert.Equal(t, []byte{1, 2, 3, 4, 0}, m.State.Memory[0x400:0x405])

	mustStep(t, m, 5)
	assert.Equal(t, []byte{1, 2, 3, 0, 5}, m.State.V[:5])

	m = newTestMachine(t, 0xFF65)
	m.State.I = 0xFF8
	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
}

func TestUnknownInstructions(t *testing.T) {
	for _, opcode := range []uint16{0x0123, 0x5121, 0x8008, 0x9123, 0xE1FF, 0xF1FF} {
		m := newTestMachine(t, opcode)
		res := mustStep(t, m, 1)
		assert.Equal(t, unknownInstruction, res.Description)
		assert.Equal(t, uint16(0x202), m.State.PC)
	}
}
