package codec

import (
	"bytes"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"smartsettings/settings"
)

// YAMLFormat is the name of the YAML format
const YAMLFormat = "yaml"

const (
	nullTag  = "!!null"
	boolTag  = "!!bool"
	intTag   = "!!int"
	floatTag = "!!float"
	strTag   = "!!str"
	seqTag   = "!!seq"
	mapTag   = "!!map"
	mergeTag = "!!merge"
	timeTag  = "!!timestamp"
)

// yamlCodec writes containers as YAML mappings tagged with a local tag named after the variant, e.g. "!settings"
type yamlCodec struct {
	reg *settings.Registry
}

// NewYAML returns YAML codec using variants from <reg> (settings.DefaultRegistry if nil).
//
// Supported options: "indent" (default 2).
func NewYAML(reg *settings.Registry) Codec {
	return yamlCodec{reg: registryOrDefault(reg)}
}

// Name returns codec format name
func (c yamlCodec) Name() string {
	return YAMLFormat
}

// Encode returns YAML representation of <v>
func (c yamlCodec) Encode(v settings.Value, opts Options) (string, error) {
	indent, err := opts.Int(IndentOption, 2)
	if err != nil {
		return "", err
	}
	if indent < 1 {
		indent = 2
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(toYAMLNode(v)); err != nil {
		return "", errors.Wrap(err, "Encode YAML")
	}
	if err := enc.Close(); err != nil {
		return "", errors.Wrap(err, "Close YAML encoder")
	}
	return buf.String(), nil
}

// Decode returns value parsed from YAML <text>.
//
// Empty document gives null value.
func (c yamlCodec) Decode(text string, _ Options) (settings.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return settings.NullValue(), decodeErr(err, "Parse YAML")
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return settings.NullValue(), nil
	}
	return c.fromYAMLNode(doc.Content[0])
}

func toYAMLNode(v settings.Value) *yaml.Node {
	switch v.Kind() {
	case settings.Bool:
		b, _ := v.Bool()
		return scalarNode(boolTag, strconv.FormatBool(b))
	case settings.Int:
		i, _ := v.Int()
		return scalarNode(intTag, strconv.FormatInt(i, 10))
	case settings.Float:
		f, _ := v.Float()
		return scalarNode(floatTag, formatYAMLFloat(f))
	case settings.String:
		s, _ := v.Str()
		return scalarNode(strTag, s)
	case settings.Sequence:
		items, _ := v.Seq()
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: seqTag}
		for _, item := range items {
			node.Content = append(node.Content, toYAMLNode(item))
		}
		return node
	case settings.Mapping:
		m, _ := v.Map()
		return mappingNode(mapTag, m)
	case settings.Node:
		c, _ := v.Container()
		fields := make(map[string]settings.Value, c.Len())
		for _, name := range c.Names() {
			fields[name] = c.Get(name)
		}
		return mappingNode("!"+c.Kind(), fields)
	}
	return scalarNode(nullTag, "null")
}

// mergeKey is the plain scalar YAML reads as a merge key instead of a string
const mergeKey = "<<"

func scalarNode(tag, value string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	if tag == strTag && value == mergeKey {
		node.Style = yaml.DoubleQuotedStyle
	}
	return node
}

func mappingNode(tag string, m map[string]settings.Value) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: tag}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		node.Content = append(node.Content, scalarNode(strTag, key), toYAMLNode(m[key]))
	}
	return node
}

func formatYAMLFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	return settings.FormatFloat(f)
}

func (c yamlCodec) fromYAMLNode(node *yaml.Node) (settings.Value, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return c.fromYAMLNode(node.Alias)
	case yaml.SequenceNode:
		items := make([]settings.Value, 0, len(node.Content))
		for idx, itemNode := range node.Content {
			item, err := c.fromYAMLNode(itemNode)
			if err != nil {
				return settings.NullValue(), errors.Wrapf(err, "Item %v", idx)
			}
			items = append(items, item)
		}
		return settings.SeqValue(items...), nil
	case yaml.MappingNode:
		fields, err := c.fromYAMLMapping(node)
		if err != nil {
			return settings.NullValue(), err
		}
		tag := node.Tag
		if tag == "" || tag == mapTag || node.ShortTag() == mapTag {
			return settings.MapValue(fields), nil
		}
		kind := strings.TrimPrefix(tag, "!")
		container, err := buildContainer(c.reg, kind, fields)
		if err != nil {
			return settings.NullValue(), errors.Wrapf(err, "Line %v", node.Line)
		}
		return settings.NodeValue(container), nil
	case yaml.ScalarNode:
		return fromYAMLScalar(node)
	}
	return settings.NullValue(), decodeErr(errors.Newf("unexpected YAML node kind %v", node.Kind), "Read YAML")
}

func (c yamlCodec) fromYAMLMapping(node *yaml.Node) (map[string]settings.Value, error) {
	fields := make(map[string]settings.Value, len(node.Content)/2)
	for idx := 0; idx+1 < len(node.Content); idx += 2 {
		keyNode, valNode := node.Content[idx], node.Content[idx+1]
		if keyNode.Kind != yaml.ScalarNode {
			err := errors.Newf("line %v: mapping keys should be scalars", keyNode.Line)
			return nil, decodeErr(err, "Read YAML mapping")
		}
		if keyNode.ShortTag() == mergeTag {
			err := errors.Newf("line %v: merge keys are not supported", keyNode.Line)
			return nil, decodeErr(err, "Read YAML mapping")
		}
		key := keyNode.Value
		if _, ok := fields[key]; ok {
			err := errors.Newf("line %v: duplicated key %q", keyNode.Line, key)
			return nil, decodeErr(err, "Read YAML mapping")
		}
		val, err := c.fromYAMLNode(valNode)
		if err != nil {
			return nil, errors.Wrapf(err, "Key %q", key)
		}
		fields[key] = val
	}
	return fields, nil
}

func fromYAMLScalar(node *yaml.Node) (settings.Value, error) {
	switch node.ShortTag() {
	case nullTag:
		return settings.NullValue(), nil
	case boolTag:
		var b bool
		if err := node.Decode(&b); err != nil {
			return settings.NullValue(), decodeErr(err, "Read YAML boolean")
		}
		return settings.BoolValue(b), nil
	case intTag:
		var i int64
		if err := node.Decode(&i); err != nil {
			return settings.NullValue(), decodeErr(err, "Read YAML integer")
		}
		return settings.IntValue(i), nil
	case floatTag:
		var f float64
		if err := node.Decode(&f); err != nil {
			return settings.NullValue(), decodeErr(err, "Read YAML float")
		}
		return settings.FloatValue(f), nil
	case strTag, timeTag:
		return settings.StringValue(node.Value), nil
	}
	err := errors.Newf("line %v: unsupported scalar tag %v", node.Line, node.Tag)
	return settings.NullValue(), decodeErr(err, "Read YAML scalar")
}
