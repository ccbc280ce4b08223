package headers

import "firestige.xyz/pktchain/pkg/packet"

type lengthFixer interface {
	FixLengths() error
}

// FixLengths recomputes the length fields of every layer in p's chain,
// innermost first, so each outer length covers the already fixed inner
// ones. Deserialized packets keep their wire lengths until this is called.
func FixLengths(p packet.Packet) error {
	chain := packet.Layers(p)
	for i := len(chain) - 1; i >= 0; i-- {
		if f, ok := chain[i].(lengthFixer); ok {
			if err := f.FixLengths(); err != nil {
				return err
			}
		}
	}
	return nil
}
