package vm

// ProgramCounter holds the address of the instruction to execute next.
type ProgramCounter struct {
	address uint32
}

// Address returns the current fetch address.
func (pc *ProgramCounter) Address() uint32 {
	return pc.address
}

// Increment advances the program counter by one instruction width.
func (pc *ProgramCounter) Increment() {
	pc.address += 4
}

// Set points the program counter at the given target address.
func (pc *ProgramCounter) Set(target uint32) {
	pc.address = target
}
