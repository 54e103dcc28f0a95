// Package render formats grids, traces and programs for the console.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"treasurehunt/internal/grid"
	"treasurehunt/internal/vm"
)

const (
	glyphPlayer   = "P "
	glyphTreasure = "█ "
	glyphEmpty    = "░ "
)

// Grid prints one line per row.
func Grid(w io.Writer, g grid.Grid) error {
	var b strings.Builder
	for _, row := range g {
		for _, tile := range row {
			switch tile {
			case grid.PlayerStart:
				b.WriteString(glyphPlayer)
			case grid.Treasure:
				b.WriteString(glyphTreasure)
			default:
				b.WriteString(glyphEmpty)
			}
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Steps renders a move trace as H/P/D/L letters.
func Steps(steps []vm.Direction) string {
	buf := make([]byte, len(steps))
	for i, d := range steps {
		buf[i] = d.Symbol()
	}
	return string(buf)
}

// ParseSteps is the inverse of Steps.
func ParseSteps(s string) ([]vm.Direction, error) {
	steps := make([]vm.Direction, 0, len(s))
	for i := 0; i < len(s); i++ {
		d, ok := vm.DirectionFromSymbol(s[i])
		if !ok {
			return nil, fmt.Errorf("invalid step %q at %d", s[i], i)
		}
		steps = append(steps, d)
	}
	return steps, nil
}

// Program prints the memory image as a bracketed decimal list.
func Program(p vm.Program) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, cell := range p {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(int(cell)))
	}
	b.WriteByte(']')
	return b.String()
}

// Hex prints the memory image as 128 lowercase hex digits.
func Hex(p vm.Program) string {
	return fmt.Sprintf("%x", p[:])
}

// Disassemble returns one mnemonic per cell.
func Disassemble(p vm.Program) []string {
	lines := make([]string, len(p))
	for i, cell := range p {
		op, operand := vm.Decode(cell)
		if op == vm.OpMove {
			lines[i] = fmt.Sprintf("%s %s", op, vm.DirectionOf(operand))
			continue
		}
		lines[i] = fmt.Sprintf("%s %d", op, operand)
	}
	return lines
}

// ParseProgram accepts either the Hex form or the Program form. A decimal
// list shorter than the memory size leaves the remaining cells zero.
func ParseProgram(s string) (vm.Program, error) {
	var p vm.Program
	s = strings.TrimSpace(s)
	if s == "" {
		return p, fmt.Errorf("empty program")
	}

	if strings.HasPrefix(s, "[") || strings.Contains(s, ",") {
		body := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		fields := strings.FieldsFunc(body, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		})
		if len(fields) > vm.ProgramSize {
			return p, fmt.Errorf("program has %d cells, max %d", len(fields), vm.ProgramSize)
		}
		for i, field := range fields {
			v, err := strconv.ParseUint(field, 10, 8)
			if err != nil {
				return p, fmt.Errorf("cell %d: %w", i, err)
			}
			p[i] = byte(v)
		}
		return p, nil
	}

	if len(s) != 2*vm.ProgramSize {
		return p, fmt.Errorf("hex program must be %d digits, got %d", 2*vm.ProgramSize, len(s))
	}
	for i := 0; i < vm.ProgramSize; i++ {
		v, err := strconv.ParseUint(s[2*i:2*i+2], 16, 8)
		if err != nil {
			return p, fmt.Errorf("cell %d: %w", i, err)
		}
		p[i] = byte(v)
	}
	return p, nil
}
