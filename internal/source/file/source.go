// Package file reads frames from pcap and pcapng capture files.
package file

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// pcapng section header block type; pcap files start with a different magic.
const pcapngMagic = 0x0A0D0D0A

type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// FileSource reads frames sequentially from a capture file.
type FileSource struct {
	path   string
	file   *os.File
	reader packetReader
	ng     bool
}

func NewSource(path string) (*FileSource, error) {
	if path == "" {
		return nil, fmt.Errorf("file path is required")
	}
	return &FileSource{path: path}, nil
}

// Start opens the file and detects its format from the leading magic.
func (fs *FileSource) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(fs.path)
	if err != nil {
		return fmt.Errorf("failed to open capture file %s: %w", fs.path, err)
	}
	br := bufio.NewReader(f)
	magic, err := br.Peek(4)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to read capture file header %s: %w", fs.path, err)
	}

	if binary.BigEndian.Uint32(magic) == pcapngMagic {
		r, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			f.Close()
			return fmt.Errorf("failed to parse pcapng file %s: %w", fs.path, err)
		}
		fs.reader, fs.ng = r, true
	} else {
		r, err := pcapgo.NewReader(br)
		if err != nil {
			f.Close()
			return fmt.Errorf("failed to parse pcap file %s: %w", fs.path, err)
		}
		fs.reader = r
	}
	fs.file = f
	return nil
}

// ReadPacket returns the next frame, or io.EOF after the last one.
func (fs *FileSource) ReadPacket() ([]byte, gopacket.CaptureInfo, error) {
	if fs.reader == nil {
		return nil, gopacket.CaptureInfo{}, fmt.Errorf("file source not started")
	}

	data, ci, err := fs.reader.ReadPacketData()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, gopacket.CaptureInfo{}, io.EOF
		}
		return nil, gopacket.CaptureInfo{}, fmt.Errorf("failed to read packet: %w", err)
	}

	return data, ci, nil
}

// Each calls fn for every remaining frame, numbered from 1, until the file
// ends, fn fails or ctx is done.
func (fs *FileSource) Each(ctx context.Context, fn func(n int, data []byte, ci gopacket.CaptureInfo) error) error {
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, ci, err := fs.ReadPacket()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(n, data, ci); err != nil {
			return err
		}
	}
}

func (fs *FileSource) LinkType() layers.LinkType {
	if fs.reader == nil {
		return layers.LinkTypeEthernet // default
	}
	return fs.reader.LinkType()
}

// IsPcapng reports whether the opened file is pcapng.
func (fs *FileSource) IsPcapng() bool { return fs.ng }

func (fs *FileSource) Stop() error {
	if fs.file == nil {
		return nil
	}
	err := fs.file.Close()
	fs.file, fs.reader = nil, nil
	return err
}
