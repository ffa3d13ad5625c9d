package codec

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	json "github.com/SCP002/jsonexraw"
	"github.com/cockroachdb/errors"

	"smartsettings/settings"
)

// JSONFormat is the name of the JSON format
const JSONFormat = "json"

const (
	jsonKindKey   = "@kind"
	jsonFieldsKey = "@fields"
	jsonMapKey    = "@map"
)

// jsonCodec writes containers as {"@kind": "<variant>", "@fields": {...}} objects.
//
// Mappings having keys starting with '@' are wrapped as {"@map": {...}} to stay distinguishable from containers.
type jsonCodec struct {
	reg *settings.Registry
}

// NewJSON returns JSON codec using variants from <reg> (settings.DefaultRegistry if nil).
//
// Supported options: "indent" (default 0, compact output).
func NewJSON(reg *settings.Registry) Codec {
	return jsonCodec{reg: registryOrDefault(reg)}
}

// Name returns codec format name
func (c jsonCodec) Name() string {
	return JSONFormat
}

// Encode returns JSON representation of <v>
func (c jsonCodec) Encode(v settings.Value, opts Options) (string, error) {
	indent, err := opts.Int(IndentOption, 0)
	if err != nil {
		return "", err
	}
	tree, err := toJSONTree(v)
	if err != nil {
		return "", err
	}

	var out []byte
	if indent > 0 {
		out, err = json.MarshalIndent(tree, "", strings.Repeat(" ", indent))
	} else {
		out, err = json.Marshal(tree)
	}
	if err != nil {
		return "", errors.Wrap(err, "Encode JSON")
	}
	return string(out), nil
}

// Decode returns value parsed from JSON <text>
func (c jsonCodec) Decode(text string, _ Options) (settings.Value, error) {
	var root jsonNode
	if err := json.Unmarshal([]byte(text), &root); err != nil {
		return settings.NullValue(), decodeErr(err, "Parse JSON")
	}
	return c.fromJSONNode(&root)
}

// jsonFloat keeps decimal point in the output so floats are not read back as integers
type jsonFloat float64

// MarshalJSON is used to satisfy json.Marshaler interface
func (f jsonFloat) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return nil, errors.Newf("%v can not be represented in JSON", float64(f))
	}
	return []byte(settings.FormatFloat(float64(f))), nil
}

func toJSONTree(v settings.Value) (any, error) {
	switch v.Kind() {
	case settings.Bool:
		b, _ := v.Bool()
		return b, nil
	case settings.Int:
		i, _ := v.Int()
		return i, nil
	case settings.Float:
		f, _ := v.Float()
		return jsonFloat(f), nil
	case settings.String:
		s, _ := v.Str()
		if !utf8.ValidString(s) {
			return nil, errors.Newf("string %q is not valid UTF-8", s)
		}
		return s, nil
	case settings.Sequence:
		items, _ := v.Seq()
		out := make([]any, 0, len(items))
		for idx, item := range items {
			itemTree, err := toJSONTree(item)
			if err != nil {
				return nil, errors.Wrapf(err, "Item %v", idx)
			}
			out = append(out, itemTree)
		}
		return out, nil
	case settings.Mapping:
		m, _ := v.Map()
		out, err := toJSONObject(m)
		if err != nil {
			return nil, err
		}
		for key := range out {
			if strings.HasPrefix(key, "@") {
				return map[string]any{jsonMapKey: out}, nil
			}
		}
		return out, nil
	case settings.Node:
		c, _ := v.Container()
		fields := make(map[string]settings.Value, c.Len())
		for _, name := range c.Names() {
			fields[name] = c.Get(name)
		}
		out, err := toJSONObject(fields)
		if err != nil {
			return nil, errors.Wrapf(err, "Container %v", c.Kind())
		}
		return map[string]any{jsonKindKey: c.Kind(), jsonFieldsKey: out}, nil
	}
	return nil, nil
}

func toJSONObject(m map[string]settings.Value) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for key, item := range m {
		if !utf8.ValidString(key) {
			return nil, errors.Newf("key %q is not valid UTF-8", key)
		}
		itemTree, err := toJSONTree(item)
		if err != nil {
			return nil, errors.Wrapf(err, "Key %q", key)
		}
		out[key] = itemTree
	}
	return out, nil
}

// jsonNode keeps raw JSON token kind, so integers and floats can be told apart
type jsonNode struct {
	object map[string]*jsonNode
	array  []*jsonNode
	scalar settings.Value
}

// UnmarshalJSON is used to satisfy json.Unmarshaler interface
func (n *jsonNode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty JSON value")
	}
	switch data[0] {
	case '{':
		n.object = map[string]*jsonNode{}
		return json.Unmarshal(data, &n.object)
	case '[':
		n.array = []*jsonNode{}
		return json.Unmarshal(data, &n.array)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n.scalar = settings.StringValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		n.scalar = settings.BoolValue(b)
	case 'n':
		n.scalar = settings.NullValue()
	default:
		return n.unmarshalNumber(string(data))
	}
	return nil
}

func (n *jsonNode) unmarshalNumber(literal string) error {
	if !strings.ContainsAny(literal, ".eE") {
		if i, err := strconv.ParseInt(literal, 10, 64); err == nil {
			n.scalar = settings.IntValue(i)
			return nil
		}
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return errors.Wrapf(err, "Parse number %v", literal)
	}
	n.scalar = settings.FloatValue(f)
	return nil
}

func (c jsonCodec) fromJSONNode(n *jsonNode) (settings.Value, error) {
	if n == nil {
		return settings.NullValue(), nil
	}
	switch {
	case n.array != nil:
		items := make([]settings.Value, 0, len(n.array))
		for idx, itemNode := range n.array {
			item, err := c.fromJSONNode(itemNode)
			if err != nil {
				return settings.NullValue(), errors.Wrapf(err, "Item %v", idx)
			}
			items = append(items, item)
		}
		return settings.SeqValue(items...), nil
	case n.object != nil:
		return c.fromJSONObject(n.object)
	}
	return n.scalar, nil
}

func (c jsonCodec) fromJSONObject(object map[string]*jsonNode) (settings.Value, error) {
	if kindNode, ok := object[jsonKindKey]; ok {
		var kind string
		var isStr bool
		if kindNode != nil {
			kind, isStr = kindNode.scalar.Str()
		}
		fieldsNode := object[jsonFieldsKey]
		if !isStr || len(object) != 2 || fieldsNode == nil || fieldsNode.object == nil {
			err := errors.Newf("container object should have only string %q and object %q", jsonKindKey, jsonFieldsKey)
			return settings.NullValue(), decodeErr(err, "Read JSON container")
		}
		fields, err := c.fromJSONFields(fieldsNode.object)
		if err != nil {
			return settings.NullValue(), errors.Wrapf(err, "Container %v", kind)
		}
		container, err := buildContainer(c.reg, kind, fields)
		if err != nil {
			return settings.NullValue(), err
		}
		return settings.NodeValue(container), nil
	}
	if wrapped, ok := object[jsonMapKey]; ok && len(object) == 1 {
		if wrapped == nil || wrapped.object == nil {
			err := errors.Newf("%q should hold an object", jsonMapKey)
			return settings.NullValue(), decodeErr(err, "Read JSON mapping")
		}
		object = wrapped.object
	} else {
		for key := range object {
			if strings.HasPrefix(key, "@") {
				err := errors.Newf("unexpected reserved key %q", key)
				return settings.NullValue(), decodeErr(err, "Read JSON mapping")
			}
		}
	}
	fields, err := c.fromJSONFields(object)
	if err != nil {
		return settings.NullValue(), err
	}
	return settings.MapValue(fields), nil
}

func (c jsonCodec) fromJSONFields(object map[string]*jsonNode) (map[string]settings.Value, error) {
	fields := make(map[string]settings.Value, len(object))
	for key, itemNode := range object {
		item, err := c.fromJSONNode(itemNode)
		if err != nil {
			return nil, errors.Wrapf(err, "Key %q", key)
		}
		fields[key] = item
	}
	return fields, nil
}
