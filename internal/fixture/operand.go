package fixture

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/halcyondb/halcyon/internal/mir"
)

// parseLocal parses the `_N` local syntax.
func parseLocal(s string) (mir.Local, error) {
	if !strings.HasPrefix(s, "_") {
		return 0, fmt.Errorf("%w: %q is not a local", ErrInvalid, s)
	}
	n, err := strconv.ParseUint(s[1:], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad local %q", ErrInvalid, s)
	}
	return mir.Local(n), nil
}

// parseOperand parses the compact operand syntax used throughout fixtures:
//
//	_1, _1.age, _5.0.name, _2[*]   places with projections
//	18, "x", true, false, ()       constants
//	fn#3                           function reference
func parseOperand(s string) (mir.Operand, error) {
	switch {
	case s == "":
		return nil, fmt.Errorf("%w: empty operand", ErrInvalid)

	case strings.HasPrefix(s, "_"):
		return parsePlace(s)

	case strings.HasPrefix(s, `"`):
		value, err := strconv.Unquote(s)
		if err != nil {
			return nil, fmt.Errorf("%w: bad string constant %s", ErrInvalid, s)
		}
		return mir.StringConst(value), nil

	case s == "true":
		return mir.BoolConst(true), nil
	case s == "false":
		return mir.BoolConst(false), nil
	case s == "()":
		return mir.UnitConst(), nil

	case strings.HasPrefix(s, "fn#"):
		n, err := strconv.ParseUint(s[3:], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: bad function reference %q", ErrInvalid, s)
		}
		return mir.FnRefConst(mir.BodyID(n)), nil

	default:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad operand %q", ErrInvalid, s)
		}
		return mir.IntConst(n), nil
	}
}

func parsePlace(s string) (mir.Place, error) {
	rest := s[1:]
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i == 0 {
		return mir.Place{}, fmt.Errorf("%w: bad place %q", ErrInvalid, s)
	}
	n, _ := strconv.ParseUint(rest[:i], 10, 32)
	place := mir.Place{Local: mir.Local(n)}

	rest = rest[i:]
	for rest != "" {
		switch {
		case strings.HasPrefix(rest, "[*]"):
			place.Projections = append(place.Projections, mir.IndexProjection())
			rest = rest[3:]

		case strings.HasPrefix(rest, "."):
			rest = rest[1:]
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			segment := rest[:end]
			if segment == "" {
				return mir.Place{}, fmt.Errorf("%w: bad projection in %q", ErrInvalid, s)
			}
			if idx, err := strconv.Atoi(segment); err == nil {
				place.Projections = append(place.Projections, mir.FieldProjection(idx))
			} else {
				place.Projections = append(place.Projections, mir.NamedProjection(segment))
			}
			rest = rest[end:]

		default:
			return mir.Place{}, fmt.Errorf("%w: bad projection in %q", ErrInvalid, s)
		}
	}
	return place, nil
}
