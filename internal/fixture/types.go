package fixture

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/halcyondb/halcyon/internal/typeenv"
)

var primTypes = map[string]typeenv.TypeID{
	"int":     typeenv.IntType,
	"float":   typeenv.FloatType,
	"string":  typeenv.StringType,
	"bool":    typeenv.BoolType,
	"unit":    typeenv.UnitType,
	"unknown": typeenv.UnknownType,
}

// resolveNamedTypes interns the fixture's named types in declaration
// order, so later names may reference earlier ones.
func resolveNamedTypes(env *typeenv.Env, node *yaml.Node) (map[string]typeenv.TypeID, error) {
	named := make(map[string]typeenv.TypeID)
	if node.Kind == 0 || node.Tag == "!!null" {
		return named, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: types must be a mapping", ErrInvalid)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		id, err := parseType(env, named, node.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", name, err)
		}
		named[name] = id
	}
	return named, nil
}

// parseType interprets one type expression: a primitive or named-type
// scalar, or a single-key mapping describing a composite.
func parseType(env *typeenv.Env, named map[string]typeenv.TypeID, node *yaml.Node) (typeenv.TypeID, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "opaque" {
			return env.Opaque(), nil
		}
		if id, ok := primTypes[node.Value]; ok {
			return id, nil
		}
		if id, ok := named[node.Value]; ok {
			return id, nil
		}
		return 0, fmt.Errorf("%w: unknown type %q", ErrInvalid, node.Value)

	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return 0, fmt.Errorf("%w: composite type must have exactly one key", ErrInvalid)
		}
		key, value := node.Content[0].Value, node.Content[1]
		switch key {
		case "tuple":
			elems, err := parseTypeList(env, named, value)
			if err != nil {
				return 0, err
			}
			return env.Tuple(elems...), nil

		case "struct":
			fields, err := parseFields(env, named, value)
			if err != nil {
				return 0, err
			}
			return env.Struct(fields...), nil

		case "list":
			elem, err := parseType(env, named, value)
			if err != nil {
				return 0, err
			}
			return env.List(elem), nil

		case "dict":
			var kv struct {
				Key   yaml.Node `yaml:"key"`
				Value yaml.Node `yaml:"value"`
			}
			if err := value.Decode(&kv); err != nil {
				return 0, fmt.Errorf("%w: bad dict type: %v", ErrInvalid, err)
			}
			keyID, err := parseType(env, named, &kv.Key)
			if err != nil {
				return 0, err
			}
			valueID, err := parseType(env, named, &kv.Value)
			if err != nil {
				return 0, err
			}
			return env.Dict(keyID, valueID), nil

		case "closure":
			captured, err := parseType(env, named, value)
			if err != nil {
				return 0, err
			}
			return env.Closure(captured), nil

		default:
			return 0, fmt.Errorf("%w: unknown type constructor %q", ErrInvalid, key)
		}

	default:
		return 0, fmt.Errorf("%w: bad type expression", ErrInvalid)
	}
}

func parseTypeList(env *typeenv.Env, named map[string]typeenv.TypeID, node *yaml.Node) ([]typeenv.TypeID, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: expected a type list", ErrInvalid)
	}
	var ids []typeenv.TypeID
	for _, elem := range node.Content {
		id, err := parseType(env, named, elem)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseFields reads struct fields as an ordered sequence of
// {name: ..., type: ...} entries. A mapping would lose field order.
func parseFields(env *typeenv.Env, named map[string]typeenv.TypeID, node *yaml.Node) ([]typeenv.Field, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: struct fields must be a sequence", ErrInvalid)
	}
	var fields []typeenv.Field
	for _, entry := range node.Content {
		var field struct {
			Name string    `yaml:"name"`
			Type yaml.Node `yaml:"type"`
		}
		if err := entry.Decode(&field); err != nil {
			return nil, fmt.Errorf("%w: bad struct field: %v", ErrInvalid, err)
		}
		id, err := parseType(env, named, &field.Type)
		if err != nil {
			return nil, err
		}
		fields = append(fields, typeenv.Field{Name: field.Name, Type: id})
	}
	return fields, nil
}
