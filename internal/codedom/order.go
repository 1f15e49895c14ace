package codedom

import (
	"strings"
)

// elementRank orders siblings of different kinds.
func elementRank(k ElementKind) int {
	switch k {
	case KindProperty:
		return 0
	case KindIndexer:
		return 1
	case KindMethod:
		return 2
	case KindClass:
		return 3
	case KindEnum:
		return 4
	case KindComposedType:
		return 5
	case KindNamespace:
		return 6
	default:
		return 7
	}
}

// CompareElements is the deterministic sibling order: element kind, then
// name compared case-insensitively, then method kind, then parameter count,
// then the name compared ordinally. It returns a negative number when a
// sorts before b, zero when they are indistinguishable.
func CompareElements(a, b Element) int {
	if r := elementRank(a.Kind()) - elementRank(b.Kind()); r != 0 {
		return r
	}
	if r := compareNames(a.SymbolName(), b.SymbolName()); r != 0 {
		return r
	}
	ma, aok := a.(*Method)
	mb, bok := b.(*Method)
	if aok && bok {
		if r := int(ma.MethodKind) - int(mb.MethodKind); r != 0 {
			return r
		}
		pa, pb := ma.Parameters(), mb.Parameters()
		if r := len(pa) - len(pb); r != 0 {
			return r
		}
		for i := range pa {
			if r := strings.Compare(pa[i].Name, pb[i].Name); r != 0 {
				return r
			}
		}
	}
	return strings.Compare(a.SymbolName(), b.SymbolName())
}

// CompareParameters orders parameters: required before optional, then by
// parameter kind, then by name.
func CompareParameters(a, b *Parameter) int {
	if a.Optional != b.Optional {
		if a.Optional {
			return 1
		}
		return -1
	}
	if r := int(a.ParameterKind) - int(b.ParameterKind); r != 0 {
		return r
	}
	return compareNames(a.Name, b.Name)
}

func compareNames(a, b string) int {
	if r := strings.Compare(strings.ToLower(a), strings.ToLower(b)); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}
