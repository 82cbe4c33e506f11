package jsoncover

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ShubhamK2003/JSONCover/jsonvalue"
	"github.com/ShubhamK2003/JSONCover/pointer"
)

// ParseYAML decodes the first document of a YAML stream into the same value
// model ParseJSON produces. Mapping order is preserved.
func ParseYAML(data []byte, opt ParseOpt) (any, error) {
	docs, err := parseYAMLStream(data, opt, 1)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: "empty YAML document", Offset: -1}}
	}
	return docs[0], nil
}

// ParseYAMLDocuments decodes every document of a multi-document YAML stream.
func ParseYAMLDocuments(data []byte, opt ParseOpt) ([]any, error) {
	return parseYAMLStream(data, opt, 0)
}

func parseYAMLStream(data []byte, opt ParseOpt, limit int) ([]any, error) {
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, Issues{{Path: "/", Code: CodeTruncated, Message: "max bytes exceeded", Offset: opt.MaxBytes}}
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var out []any
	for limit == 0 || len(out) < limit {
		var n yaml.Node
		if err := dec.Decode(&n); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, Issues{{Path: "/", Code: CodeParseError, Message: err.Error(), Offset: -1, Cause: err}}
		}
		c := yamlConverter{opt: opt}
		v, err := c.convert(&n, pointer.Root, 0)
		if err != nil {
			return nil, err
		}
		if len(c.issues) > 0 && opt.Strictness.OnDuplicateKey == Error {
			return nil, c.issues
		}
		out = append(out, v)
	}
	return out, nil
}

type yamlConverter struct {
	opt    ParseOpt
	issues Issues
}

func (c *yamlConverter) convert(n *yaml.Node, at pointer.Pointer, depth int) (any, error) {
	if c.opt.MaxDepth > 0 && depth > c.opt.MaxDepth {
		return nil, Issues{{Path: pathOrSlash(at), Code: CodeParseError, Message: "max depth exceeded", Offset: -1}}
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.convert(n.Content[0], at, depth)
	case yaml.AliasNode:
		return c.convert(n.Alias, at, depth)
	case yaml.MappingNode:
		obj := jsonvalue.NewObject(len(n.Content) / 2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, yamlIssue(at, k, "mapping keys must be scalars")
			}
			if obj.Has(k.Value) && c.opt.Strictness.OnDuplicateKey != Ignore {
				c.issues = append(c.issues, Issue{
					Path: at.Child(k.Value).String(), Code: CodeDuplicateKey,
					Message: "key '" + k.Value + "' duplicated", Offset: -1,
				})
			}
			v, err := c.convert(n.Content[i+1], at.Child(k.Value), depth+1)
			if err != nil {
				return nil, err
			}
			obj.Set(k.Value, v)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for i, e := range n.Content {
			v, err := c.convert(e, at.Index(i), depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return yamlScalar(n, at)
	}
	return nil, yamlIssue(at, n, "unsupported YAML node")
}

func yamlScalar(n *yaml.Node, at pointer.Pointer) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, yamlIssue(at, n, err.Error())
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			// beyond int64: keep the literal when it is plain decimal
			if json.Valid([]byte(n.Value)) {
				return json.Number(n.Value), nil
			}
			return nil, yamlIssue(at, n, err.Error())
		}
		return json.Number(strconv.FormatInt(i, 10)), nil
	case "!!float":
		if json.Valid([]byte(n.Value)) {
			return json.Number(n.Value), nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, yamlIssue(at, n, err.Error())
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, yamlIssue(at, n, "non-finite number has no JSON form")
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	default:
		return n.Value, nil
	}
}

func yamlIssue(at pointer.Pointer, n *yaml.Node, msg string) error {
	return Issues{{Path: pathOrSlash(at), Code: CodeParseError, Message: fmt.Sprintf("line %d: %s", n.Line, msg), Offset: -1}}
}

func pathOrSlash(p pointer.Pointer) string {
	if p.IsRoot() {
		return "/"
	}
	return p.String()
}
