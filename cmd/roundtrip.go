package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"firestige.xyz/pktchain/internal/config"
	"firestige.xyz/pktchain/internal/log"
	"firestige.xyz/pktchain/internal/metrics"
	"firestige.xyz/pktchain/pkg/headers"
	"firestige.xyz/pktchain/pkg/packet"
)

// minFrameLength is the padded Ethernet frame size without FCS.
const minFrameLength = 60

var roundtripInput inputOptions

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip",
	Short: "Check that frames survive deserialize, serialize and clone",
	Long: `Decode every frame, serialize it back and compare with the input bytes.
Each chain is also cloned; the clone must equal the original and serialize
to the same bytes. Exits with status 1 when any frame fails a check.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRoundtrip(cmd.Context(), cfg, roundtripInput, os.Stdout); err != nil {
			exitWithError("roundtrip failed", err)
		}
	},
}

func init() {
	roundtripInput.addFlags(roundtripCmd)
}

// roundtripStats counts frames per outcome.
type roundtripStats struct {
	frames     int
	failed     int
	mismatched int
}

func runRoundtrip(ctx context.Context, c *config.Config, in inputOptions, w io.Writer) error {
	chain, err := in.filters()
	if err != nil {
		return err
	}
	m := newMetrics(c)
	defer flushMetrics(c, m)

	var st roundtripStats
	err = eachFrame(ctx, c, in, func(n int, data []byte, d packet.Deserializer) error {
		p, err := decodeFrame(m, n, data, d)
		if !chain.Match(data, p) {
			return nil
		}
		st.frames++
		if err != nil {
			st.failed++
			fmt.Fprintf(w, "frame %d: FAILED: %v\n", n, err)
			return nil
		}
		if stage, err := checkRoundtrip(p, data, c.Decode.Pad); err != nil {
			st.mismatched++
			if m != nil {
				m.ObserveMismatch(stage)
			}
			log.GetLogger().
				WithField("frame", n).
				WithField("stage", stage).
				WithError(err).
				Warn("round trip mismatch")
			fmt.Fprintf(w, "frame %d: MISMATCH (%s): %v\n", n, stage, err)
		}
		return nil
	})
	logFiltered(chain)
	if err != nil && err != errStop {
		return err
	}

	fmt.Fprintf(w, "frames=%d ok=%d failed=%d mismatched=%d\n",
		st.frames, st.frames-st.failed-st.mismatched, st.failed, st.mismatched)
	if st.failed > 0 || st.mismatched > 0 {
		return fmt.Errorf("%d of %d frames did not round trip", st.failed+st.mismatched, st.frames)
	}
	return nil
}

// checkRoundtrip returns the first stage at which p stops matching data.
// With pad set, a short Ethernet frame must also serialize to data
// zero-filled to the minimum frame length.
func checkRoundtrip(p packet.Packet, data []byte, pad bool) (string, error) {
	got, err := p.Serialize()
	if err != nil {
		return metrics.StageSerialize, err
	}
	if !bytes.Equal(got, data) {
		return metrics.StageSerialize, fmt.Errorf("serialized %d bytes differ from %d input bytes", len(got), len(data))
	}

	q, err := p.Clone()
	if err != nil {
		return metrics.StageClone, err
	}
	cloned, err := q.Serialize()
	if err != nil {
		return metrics.StageClone, err
	}
	if !bytes.Equal(cloned, data) {
		return metrics.StageClone, fmt.Errorf("clone serializes differently")
	}
	if !p.Equal(q) || !q.Equal(p) {
		return metrics.StageEqual, fmt.Errorf("clone is not equal to the original")
	}
	if p.Hash() != q.Hash() {
		return metrics.StageEqual, fmt.Errorf("clone hash %#x differs from %#x", q.Hash(), p.Hash())
	}

	if eth, ok := p.(*headers.Ethernet); ok && pad && len(data) < minFrameLength {
		eth.Pad = true
		defer func() { eth.Pad = false }()
		padded, err := eth.Serialize()
		if err != nil {
			return metrics.StageSerialize, err
		}
		want := append(bytes.Clone(data), make([]byte, minFrameLength-len(data))...)
		if !bytes.Equal(padded, want) {
			return metrics.StageSerialize, fmt.Errorf("padded frame differs from zero-filled input")
		}
	}
	return "", nil
}
