package filter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/bpf"

	"firestige.xyz/pktchain/pkg/packet"
)

// BPFFilter runs a classic BPF program over the raw frame bytes. The
// program must be compiled for the capture's link type.
type BPFFilter struct {
	vm *bpf.VM
}

// NewBPFFilter builds a filter from raw instructions.
func NewBPFFilter(raw []bpf.RawInstruction) (*BPFFilter, error) {
	insns, ok := bpf.Disassemble(raw)
	if !ok {
		return nil, fmt.Errorf("failed to decode BPF program: unknown instruction")
	}
	vm, err := bpf.NewVM(insns)
	if err != nil {
		return nil, fmt.Errorf("invalid BPF program: %w", err)
	}
	return &BPFFilter{vm: vm}, nil
}

// LoadBPFFile reads a program in the decimal format printed by
// `tcpdump -ddd`.
func LoadBPFFile(path string) (*BPFFilter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open BPF program: %w", err)
	}
	defer f.Close()

	raw, err := ParseBPF(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewBPFFilter(raw)
}

// ParseBPF parses `tcpdump -ddd` output: an instruction count followed by
// one "code jt jf k" line per instruction.
func ParseBPF(r io.Reader) ([]bpf.RawInstruction, error) {
	sc := bufio.NewScanner(r)
	var lines []string
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read BPF program: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty BPF program")
	}

	count, err := strconv.Atoi(lines[0])
	if err != nil {
		return nil, fmt.Errorf("invalid instruction count %q", lines[0])
	}
	if count != len(lines)-1 {
		return nil, fmt.Errorf("instruction count %d, found %d instructions", count, len(lines)-1)
	}

	raw := make([]bpf.RawInstruction, count)
	for i, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("instruction %d: want 4 fields, got %d", i, len(fields))
		}
		var v [4]uint64
		for j, bits := range []int{16, 8, 8, 32} {
			if v[j], err = strconv.ParseUint(fields[j], 10, bits); err != nil {
				return nil, fmt.Errorf("instruction %d: %w", i, err)
			}
		}
		raw[i] = bpf.RawInstruction{Op: uint16(v[0]), Jt: uint8(v[1]), Jf: uint8(v[2]), K: uint32(v[3])}
	}
	return raw, nil
}

// Match accepts the frame when the program returns a non-zero length.
func (f *BPFFilter) Match(data []byte, _ packet.Packet) bool {
	n, err := f.vm.Run(data)
	return err == nil && n > 0
}
