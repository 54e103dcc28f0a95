package vm

import "fmt"

// Opcode is the top two bits of an instruction byte.
type Opcode uint8

const (
	OpIncrement Opcode = iota
	OpDecrement
	OpJump
	OpMove
)

const (
	opcodeShift  = 6
	operandMask  = 0x3F
	directionMod = 4
)

func (op Opcode) String() string {
	switch op {
	case OpIncrement:
		return "inc"
	case OpDecrement:
		return "dec"
	case OpJump:
		return "jmp"
	case OpMove:
		return "mov"
	default:
		return fmt.Sprintf("op(%d)", uint8(op))
	}
}

// Decode splits an instruction into its opcode and 6-bit operand. Every byte
// decodes, so the operand is always a valid cell index or jump target.
func Decode(instruction byte) (Opcode, uint8) {
	return Opcode(instruction >> opcodeShift), instruction & operandMask
}

// Encode is the inverse of Decode; operand bits above the low six are dropped.
func Encode(op Opcode, operand uint8) byte {
	return byte(op)<<opcodeShift | operand&operandMask
}

// Direction is a move operand reduced modulo four.
type Direction uint8

const (
	Up Direction = iota
	Right
	Down
	Left
)

func DirectionOf(operand uint8) Direction {
	return Direction(operand % directionMod)
}

// Symbol is the single-letter display form: H, P, D, L.
func (d Direction) Symbol() byte {
	switch d {
	case Up:
		return 'H'
	case Right:
		return 'P'
	case Down:
		return 'D'
	case Left:
		return 'L'
	default:
		return '?'
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// DirectionFromSymbol parses H/P/D/L.
func DirectionFromSymbol(symbol byte) (Direction, bool) {
	switch symbol {
	case 'H':
		return Up, true
	case 'P':
		return Right, true
	case 'D':
		return Down, true
	case 'L':
		return Left, true
	default:
		return 0, false
	}
}

func (d Direction) delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	default:
		return -1, 0
	}
}

// Increment adds one with wraparound at the 8-bit boundary.
func Increment(b byte) byte {
	return b + 1
}

// Decrement subtracts one with wraparound at the 8-bit boundary.
func Decrement(b byte) byte {
	return b - 1
}
