package cmd

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/gopacket"
	"github.com/spf13/cobra"

	"firestige.xyz/pktchain/internal/config"
	"firestige.xyz/pktchain/internal/filter"
	"firestige.xyz/pktchain/internal/inspect"
	"firestige.xyz/pktchain/internal/log"
	"firestige.xyz/pktchain/internal/metrics"
	"firestige.xyz/pktchain/internal/source/file"
	"firestige.xyz/pktchain/pkg/packet"
)

// inputOptions selects where frames come from. Shared by decode and roundtrip.
type inputOptions struct {
	hex       string
	file      string
	link      string
	maxFrames int
	layers    []string
	bpfFile   string
}

func (o *inputOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.hex, "hex", "", "decode a single frame given as hex (spaces and colons ignored)")
	cmd.Flags().StringVarP(&o.file, "file", "f", "", "decode every frame of a pcap or pcapng file")
	cmd.Flags().StringVar(&o.link, "link", "", "outermost header: ethernet/ip/llc/mpls (default from config or file)")
	cmd.Flags().IntVarP(&o.maxFrames, "max-frames", "n", 0, "stop after this many frames (0 = decode.max_frames)")
	cmd.Flags().StringSliceVar(&o.layers, "layer", nil, "keep only frames holding every named layer, e.g. UDP")
	cmd.Flags().StringVar(&o.bpfFile, "bpf", "", "keep only frames accepted by a BPF program in `tcpdump -ddd` format")
}

// filters builds the frame filter chain from the flags.
func (o *inputOptions) filters() (*filter.Chain, error) {
	var fs []filter.Filter
	if o.bpfFile != "" {
		f, err := filter.LoadBPFFile(o.bpfFile)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	for _, name := range o.layers {
		fs = append(fs, filter.NewLayerFilter(name))
	}
	return filter.NewChain(fs...), nil
}

func logFiltered(chain *filter.Chain) {
	if chain.Len() == 0 {
		return
	}
	log.GetLogger().
		WithField("matched", chain.Matched()).
		WithField("dropped", chain.Dropped()).
		Debug("frames filtered")
}

var (
	decodeInput  inputOptions
	decodeOutput string
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode frames and print their layers",
	Long: `Decode a hex string or a capture file into header chains and print
every layer with its fields.

Examples:
  pktchain decode --hex 'ffffffffffff 001122334455 0800 4500...'
  pktchain decode -f capture.pcapng -o yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDecode(cmd.Context(), cfg, decodeInput, decodeOutput, os.Stdout); err != nil {
			exitWithError("decode failed", err)
		}
	},
}

func init() {
	decodeInput.addFlags(decodeCmd)
	decodeCmd.Flags().StringVarP(&decodeOutput, "output", "o", "", "output format: text/yaml/json (default decode.output)")
}

// frameFunc handles one input frame, numbered from 1.
type frameFunc func(n int, data []byte, d packet.Deserializer) error

// eachFrame feeds every selected input frame to fn with the deserializer of
// its outermost header.
func eachFrame(ctx context.Context, c *config.Config, in inputOptions, fn frameFunc) error {
	if (in.hex == "") == (in.file == "") {
		return fmt.Errorf("exactly one of --hex and --file is required")
	}
	limit := in.maxFrames
	if limit == 0 {
		limit = c.Decode.MaxFrames
	}

	if in.hex != "" {
		data, err := parseHex(in.hex)
		if err != nil {
			return err
		}
		_, d, err := resolveLink(in.link, c.Decode.Link, nil)
		if err != nil {
			return err
		}
		return fn(1, data, d)
	}

	src, err := file.NewSource(in.file)
	if err != nil {
		return err
	}
	if err := src.Start(ctx); err != nil {
		return err
	}
	defer src.Stop()

	lt := src.LinkType()
	name, d, err := resolveLink(in.link, c.Decode.Link, &lt)
	if err != nil {
		return err
	}
	log.GetLogger().
		WithField("file", in.file).
		WithField("pcapng", src.IsPcapng()).
		WithField("link", name).
		Debug("reading capture file")

	return src.Each(ctx, func(n int, data []byte, _ gopacket.CaptureInfo) error {
		if limit > 0 && n > limit {
			return errStop
		}
		return fn(n, data, d)
	})
}

// errStop ends iteration early without reporting an error.
var errStop = errors.New("stop")

func parseHex(s string) ([]byte, error) {
	s = strings.NewReplacer(" ", "", ":", "", "\n", "", "\t", "").Replace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return data, nil
}

// decodeFrame runs d over the whole buffer and records the outcome.
func decodeFrame(m *metrics.Metrics, n int, data []byte, d packet.Deserializer) (packet.Packet, error) {
	start := time.Now()
	p, err := d(data, 0, len(data))
	took := time.Since(start)
	if err != nil {
		if m != nil {
			m.ObserveFailure()
		}
		log.GetLogger().WithField("frame", n).WithError(err).Warn("frame did not decode")
		return nil, err
	}
	if m != nil {
		var names []string
		for _, l := range packet.Layers(p) {
			names = append(names, l.LayerType().String())
		}
		m.ObserveFrame(names, took)
	}
	return p, nil
}

// newMetrics returns nil when metrics are disabled.
func newMetrics(c *config.Config) *metrics.Metrics {
	if !c.Metrics.Enabled {
		return nil
	}
	return metrics.New(c.Metrics.Namespace)
}

func flushMetrics(c *config.Config, m *metrics.Metrics) {
	if m == nil || c.Metrics.Textfile == "" {
		return
	}
	if err := m.WriteTextfile(c.Metrics.Textfile); err != nil {
		log.GetLogger().WithError(err).Error("metrics not written")
	}
}

func runDecode(ctx context.Context, c *config.Config, in inputOptions, format string, w io.Writer) error {
	if format == "" {
		format = c.Decode.Output
	}
	chain, err := in.filters()
	if err != nil {
		return err
	}
	m := newMetrics(c)
	defer flushMetrics(c, m)

	var frames []inspect.Frame
	err = eachFrame(ctx, c, in, func(n int, data []byte, d packet.Deserializer) error {
		p, err := decodeFrame(m, n, data, d)
		if chain.Match(data, p) {
			frames = append(frames, inspect.NewFrame(n, data, p, err))
		}
		return nil
	})
	logFiltered(chain)
	if err != nil && err != errStop {
		return err
	}
	return inspect.Render(w, format, frames...)
}
