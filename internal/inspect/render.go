package inspect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by Render.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Render writes frames to w in the given format. yaml and json produce one
// document holding all frames.
func Render(w io.Writer, format string, frames ...Frame) error {
	switch strings.ToLower(format) {
	case FormatText, "":
		return renderText(w, frames)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(frames); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(frames); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (must be text/yaml/json)", format)
	}
}

func renderText(w io.Writer, frames []Frame) error {
	var b strings.Builder
	for _, f := range frames {
		if f.Number > 0 {
			fmt.Fprintf(&b, "frame %d (%d bytes)\n", f.Number, f.Length)
		} else {
			fmt.Fprintf(&b, "frame (%d bytes)\n", f.Length)
		}
		if f.Error != "" {
			fmt.Fprintf(&b, "  error: %s\n", f.Error)
			continue
		}
		for _, l := range f.Layers {
			fmt.Fprintf(&b, "  %-9s", l.Type)
			for _, fld := range l.Fields {
				fmt.Fprintf(&b, " %s=%s", fld.Key, fld.Value)
			}
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// MarshalYAML renders fields as a mapping in wire order. Repeated keys
// (VLAN tags, DHCPv6 options) become sequences.
func (fs Fields) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, g := range fs.grouped() {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: g.key}
		var value *yaml.Node
		if len(g.values) == 1 {
			value = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: g.values[0]}
		} else {
			value = &yaml.Node{Kind: yaml.SequenceNode}
			for _, v := range g.values {
				value.Content = append(value.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v})
			}
		}
		node.Content = append(node.Content, key, value)
	}
	return node, nil
}

// MarshalJSON renders fields as an object in wire order, grouped like
// MarshalYAML.
func (fs Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range fs.grouped() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(g.key)
		if err != nil {
			return nil, err
		}
		var value []byte
		if len(g.values) == 1 {
			value, err = json.Marshal(g.values[0])
		} else {
			value, err = json.Marshal(g.values)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type fieldGroup struct {
	key    string
	values []string
}

func (fs Fields) grouped() []fieldGroup {
	var groups []fieldGroup
	index := make(map[string]int, len(fs))
	for _, f := range fs {
		if i, ok := index[f.Key]; ok {
			groups[i].values = append(groups[i].values, f.Value)
			continue
		}
		index[f.Key] = len(groups)
		groups = append(groups, fieldGroup{key: f.Key, values: []string{f.Value}})
	}
	return groups
}
