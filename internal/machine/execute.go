package machine

import (
	"fmt"
)

const unknownInstruction = "Unknown/unimplemented instruction"

// Step fetches, decodes and executes one instruction.
func (m *Machine) Step() (Result, error) {
	st := &m.State
	address := st.PC
	if int(address)+opcodeSize > MemorySize {
		return Result{Address: address}, fmt.Errorf("fetching instruction at %04X: %w", address, ErrAddressOutOfRange)
	}

	opcode := uint16(st.Memory[address])<<8 | uint16(st.Memory[address+1])
	st.PC += opcodeSize

	ins := decode(opcode)
	result := Result{
		Address:  address,
		Opcode:   opcode,
		Mnemonic: Mnemonic(opcode),
	}

	description, err := m.execute(ins, address)
	if err != nil {
		return result, fmt.Errorf("executing %04X at %04X: %w", opcode, address, err)
	}
	if description == "" {
		description = unknownInstruction
	}
	result.Description = description
	return result, nil
}

// execute applies the instruction and returns its description. An empty
// description marks an unknown instruction.
func (m *Machine) execute(ins instruction, address uint16) (string, error) {
	switch ins.group {
	case 0x0:
		return m.executeSystem(ins)
	case 0x1:
		return m.jump(ins, address), nil
	case 0x2:
		return m.call(ins)
	case 0x3, 0x4, 0x5, 0x9:
		return m.skipIf(ins), nil
	case 0x6:
		m.State.V[ins.x] = ins.kk
		return fmt.Sprintf("Moving 0x%02X into V%X", ins.kk, ins.x), nil
	case 0x7:
		m.State.V[ins.x] += ins.kk // wraps
		return fmt.Sprintf("Adding 0x%02X to V%X", ins.kk, ins.x), nil
	case 0x8:
		return m.executeALU(ins), nil
	case 0xA:
		m.State.I = ins.nnn
		return fmt.Sprintf("Put 0x%03X into I", ins.nnn), nil
	case 0xB:
		return m.jumpOffset(ins)
	case 0xC:
		m.State.V[ins.x] = m.random() & ins.kk
		return fmt.Sprintf("Set V%X to random number in [0,255] & 0x%02X", ins.x, ins.kk), nil
	case 0xD:
		return m.draw(ins)
	case 0xE:
		return m.skipIfKey(ins)
	default:
		return m.executeMisc(ins)
	}
}

func (m *Machine) executeSystem(ins instruction) (string, error) {
	st := &m.State

	switch ins.opcode {
	case 0x00E0:
		m.Display.Clear()
		return "Clearing screen", nil

	case 0x00EE:
		if st.SP == 0 {
			return "", ErrStackUnderflow
		}
		st.SP--
		st.PC = st.Stack[st.SP]
		return fmt.Sprintf("Returning from subroutine to: 0x%03X", st.PC), nil

	default:
		return "", nil
	}
}

// jump sets PC to NNN. A jump to its own address can never be left again and
// marks the program as ended.
func (m *Machine) jump(ins instruction, address uint16) string {
	m.State.PC = ins.nnn
	if ins.nnn == address {
		m.State.EndLoop = true
		return "Endloop"
	}
	return fmt.Sprintf("Jumping to location 0x%03X", ins.nnn)
}

func (m *Machine) call(ins instruction) (string, error) {
	st := &m.State
	if int(st.SP) == StackSize {
		return "", ErrStackOverflow
	}

	st.Stack[st.SP] = st.PC
	st.SP++
	st.PC = ins.nnn
	return fmt.Sprintf("Jumping to subroutine at 0x%03X", ins.nnn), nil
}

// jumpOffset handles BNNN, the jump target is NNN plus V0.
func (m *Machine) jumpOffset(ins instruction) (string, error) {
	target := ins.nnn + uint16(m.State.V[0])
	if target >= MemorySize {
		return "", fmt.Errorf("jump target %04X: %w", target, ErrAddressOutOfRange)
	}

	m.State.PC = target
	return fmt.Sprintf("Jump to V0 + 0x%03X", ins.nnn), nil
}

// skipIf handles the conditional skips comparing a register with a constant
// or with another register.
func (m *Machine) skipIf(ins instruction) string {
	v := &m.State.V
	var (
		skip        bool
		description string
	)

	switch ins.group {
	case 0x3:
		skip = v[ins.x] == ins.kk
		description = fmt.Sprintf("Skipping next instruction if V%X(0x%02X) == 0x%02X", ins.x, v[ins.x], ins.kk)
	case 0x4:
		skip = v[ins.x] != ins.kk
		description = fmt.Sprintf("Skipping next instruction if V%X(0x%02X) != 0x%02X", ins.x, v[ins.x], ins.kk)
	case 0x5:
		if ins.n != 0 {
			return ""
		}
		skip = v[ins.x] == v[ins.y]
		description = fmt.Sprintf("Skipping next instruction if V%X(0x%02X) == V%X(0x%02X)", ins.x, v[ins.x], ins.y, v[ins.y])
	case 0x9:
		if ins.n != 0 {
			return ""
		}
		skip = v[ins.x] != v[ins.y]
		description = fmt.Sprintf("Skipping next instruction if V%X(0x%02X) != V%X(0x%02X)", ins.x, v[ins.x], ins.y, v[ins.y])
	}

	if skip {
		m.State.PC += opcodeSize
	}
	return description
}

// executeALU handles the 8XYN register operations. Arithmetic and shifts
// write VF before the result register, so the result wins if X is F.
func (m *Machine) executeALU(ins instruction) string {
	v := &m.State.V
	x, y := ins.x, ins.y

	switch ins.n {
	case 0x0:
		v[x] = v[y]
		return fmt.Sprintf("Moving V%X into V%X", y, x)

	case 0x1:
		v[x] |= v[y]
		v[FlagRegister] = 0
		return fmt.Sprintf("Set V%X to V%X OR V%X", x, x, y)

	case 0x2:
		v[x] &= v[y]
		v[FlagRegister] = 0
		return fmt.Sprintf("Set V%X to V%X AND V%X", x, x, y)

	case 0x3:
		v[x] ^= v[y]
		v[FlagRegister] = 0
		return fmt.Sprintf("Set V%X to V%X XOR V%X", x, x, y)

	case 0x4:
		v[FlagRegister] = boolToFlag(uint16(v[x])+uint16(v[y]) > 0xFF)
		v[x] += v[y] // wraps
		return fmt.Sprintf("Add V%X to V%X and store carry in VF", y, x)

	case 0x5:
		v[FlagRegister] = boolToFlag(v[x] > v[y])
		v[x] -= v[y] // wraps
		return fmt.Sprintf("Subtract V%X from V%X and store the borrow in VF", y, x)

	case 0x6:
		v[FlagRegister] = v[x] & 1
		v[x] >>= 1
		return fmt.Sprintf("Shift V%X to the right least significant bit goes to VF", x)

	case 0x7:
		v[FlagRegister] = boolToFlag(v[y] > v[x])
		v[x] = v[y] - v[x] // wraps
		return fmt.Sprintf("Subtract V%X from V%X store the result to V%X and store the borrow in VF", x, y, x)

	case 0xE:
		v[FlagRegister] = v[x] >> 7
		v[x] <<= 1 // drops the highest bit
		return fmt.Sprintf("Shift V%X to the left most significant bit goes to VF", x)

	default:
		return ""
	}
}

// draw handles DXYN, drawing an N rows high sprite from memory at I.
func (m *Machine) draw(ins instruction) (string, error) {
	st := &m.State
	sx, sy := st.V[ins.x], st.V[ins.y]

	start, end := int(st.I), int(st.I)+int(ins.n)
	if end > MemorySize {
		return "", fmt.Errorf("sprite at %04X with %d rows: %w", st.I, ins.n, ErrAddressOutOfRange)
	}

	collision := m.Display.Draw(int(sx), int(sy), st.Memory[start:end])
	st.V[FlagRegister] = boolToFlag(collision)
	return fmt.Sprintf("Draw sprite at %d, %d with length %d", sx, sy, ins.n), nil
}

// skipIfKey handles EX9E and EXA1 that test the key stored in VX.
func (m *Machine) skipIfKey(ins instruction) (string, error) {
	key := m.State.V[ins.x]
	var (
		skip        bool
		description string
	)

	switch ins.kk {
	case 0x9E:
		description = fmt.Sprintf("Skipping next instruction if key in V%X (%X) is pressed", ins.x, key)
	case 0xA1:
		description = fmt.Sprintf("Skipping next instruction if key in V%X (%X) is not pressed", ins.x, key)
	default:
		return "", nil
	}

	if key > 0xF {
		return "", fmt.Errorf("key %02X in V%X: %w", key, ins.x, ErrInvalidKey)
	}

	skip = m.Keypad.IsPressed(key)
	if ins.kk == 0xA1 {
		skip = !skip
	}
	if skip {
		m.State.PC += opcodeSize
	}
	return description, nil
}

// executeMisc handles the FXNN timer, key wait and memory instructions.
func (m *Machine) executeMisc(ins instruction) (string, error) {
	st := &m.State
	x := ins.x

	switch ins.kk {
	case 0x07:
		st.V[x] = st.DelayTimer
		return fmt.Sprintf("Putting value of delay timer into V%X", x), nil

	case 0x0A:
		m.Keypad.WaitFor(x)
		return fmt.Sprintf("Waiting for keypress and storing result into V%X", x), nil

	case 0x15:
		st.DelayTimer = st.V[x]
		return fmt.Sprintf("Setting delay timer to the value of V%X", x), nil

	case 0x18:
		st.SoundTimer = st.V[x]
		return fmt.Sprintf("Setting sound timer to the value of V%X", x), nil

	case 0x1E:
		st.I += uint16(st.V[x]) // wraps
		return fmt.Sprintf("Adding the value of V%X to I", x), nil

	case 0x29:
		st.I = FontAddress + uint16(st.V[x])*FontGlyphSize
		return fmt.Sprintf("Setting I to location of the sprite of the digit in V%X", x), nil

	case 0x33:
		return m.storeBCD(x)

	case 0x55, 0x65:
		return m.copyRegisters(ins)

	default:
		return "", nil
	}
}

// storeBCD writes the hundreds, tens and ones digit of VX to I, I+1 and I+2.
func (m *Machine) storeBCD(x uint8) (string, error) {
	st := &m.State
	addr := int(st.I)
	if addr+3 > MemorySize {
		return "", fmt.Errorf("BCD at %04X: %w", st.I, ErrAddressOutOfRange)
	}

	value := st.V[x]
	st.Memory[addr] = value / 100
	st.Memory[addr+1] = value / 10 % 10
	st.Memory[addr+2] = value % 10
	return fmt.Sprintf("Storing BCD representation of V%X into location I", x), nil
}

// copyRegisters handles FX55 and FX65, copying V0 to VX from or to memory
// starting at I.
func (m *Machine) copyRegisters(ins instruction) (string, error) {
	st := &m.State
	start := int(st.I)
	end := start + int(ins.x) + 1
	if end > MemorySize {
		return "", fmt.Errorf("registers V0-V%X at %04X: %w", ins.x, st.I, ErrAddressOutOfRange)
	}

	if ins.kk == 0x55 {
		copy(st.Memory[start:end], st.V[:ins.x+1])
		return fmt.Sprintf("Storing values of register [0, %X] into memory at I", ins.x), nil
	}

	copy(st.V[:ins.x+1], st.Memory[start:end])
	return fmt.Sprintf("Loading values of register [0, %X] from address I", ins.x), nil
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
