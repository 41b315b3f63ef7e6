package machine

const (
	// MemorySize is the size of the address space in bytes.
	MemorySize = 0x1000
	// ProgramStart is the address that programs are loaded to and start
	// execution at.
	ProgramStart = 0x200
	// MaxProgramSize is the maximum size of a program image.
	MaxProgramSize = MemorySize - ProgramStart

	// RegisterCount is the number of general purpose registers.
	RegisterCount = 16
	// FlagRegister is the index of VF, the carry, borrow and collision flag.
	FlagRegister = 0xF
	// StackSize is the maximum number of nested subroutine calls.
	StackSize = 16
)

// State is the complete register, memory and stack state of the machine.
// It only contains arrays and values, copying a State creates an independent
// snapshot.
type State struct {
	Memory [MemorySize]byte
	V      [RegisterCount]byte
	I      uint16
	PC     uint16
	Stack  [StackSize]uint16
	SP     uint8 // next free stack slot

	DelayTimer uint8
	SoundTimer uint8

	// EndLoop is set once the program jumped to the address of the jump
	// instruction itself, which halts the program.
	EndLoop bool
}

// NewState returns the power on state with the font table loaded and the
// program counter at ProgramStart.
func NewState() State {
	st := State{
		PC: ProgramStart,
	}
	font := Font()
	copy(st.Memory[FontAddress:], font[:])
	return st
}
