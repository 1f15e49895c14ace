package builder

import (
	"strings"

	"github.com/mark3labs/kiotago/internal/codedom"
	"github.com/mark3labs/kiotago/internal/naming"
)

// resolveTypes binds the forward references left by the request builder
// pass. Navigation members are looked up near their owner first: in the
// subtree of the owner's namespace, then in the sibling namespace named after
// the type. Anything else falls back to a search of the whole tree, which is
// reported since it may pick the wrong one of two same-named declarations.
//
// References neither search binds are marked Unresolved and returned. In
// strict mode the first one fails the build instead.
func (r *run) resolveTypes() ([]*codedom.TypeRef, error) {
	var unresolved []*codedom.TypeRef
	for _, t := range codedom.AllTypeRefs(r.root) {
		if !t.NeedsResolution() {
			continue
		}
		owner := t.Owner()
		var found codedom.Declaration
		if isNavigationMember(owner) {
			found = r.findRequestBuilder(t.Name, codedom.OwnerNamespace(owner))
		}
		if found == nil {
			if candidates := r.root.FindDeclarationsByName(t.Name); len(candidates) > 0 {
				found = candidates[0]
				r.log.Warn("mapped type using the fallback approach",
					"type", t.Name, "parent", ownerName(owner), "declaration", codedom.QualifiedName(found))
			}
		}
		if found != nil {
			t.Resolve(found)
			continue
		}

		t.MarkUnresolved()
		if r.cfg.Strict {
			return nil, &BuildError{
				Code:    UnresolvedTypeError,
				Message: ErrUnresolvedType.Error() + ": " + t.Name,
				Schema:  t.Name,
				Cause:   ErrUnresolvedType,
			}
		}
		r.log.Warn("type reference left unresolved", "type", t.Name, "parent", ownerName(owner))
		unresolved = append(unresolved, t)
	}
	return unresolved, nil
}

// isNavigationMember reports whether e navigates to another request builder.
func isNavigationMember(e codedom.Element) bool {
	switch v := e.(type) {
	case *codedom.Property:
		return v.PropertyKind == codedom.PropertyKindRequestBuilder
	case *codedom.Indexer:
		return true
	case *codedom.Method:
		return v.MethodKind == codedom.MethodKindRequestBuilderWithParameters
	}
	return false
}

func (r *run) findRequestBuilder(name string, ns *codedom.Namespace) codedom.Declaration {
	if ns == nil {
		return nil
	}
	candidates := ns.FindDeclarationsByName(name)
	// A child namespace wins over ns itself: /a/a navigates down.
	for _, own := range []bool{false, true} {
		for _, d := range candidates {
			c, ok := d.(*codedom.Class)
			if !ok || c.ClassKind != codedom.ClassKindRequestBuilder {
				continue
			}
			if (codedom.OwnerNamespace(c) == ns) == own {
				return c
			}
		}
	}
	parent := ns.ParentNamespace()
	if parent == nil {
		return nil
	}
	sibling := parent.FindNamespace(parent.FullName() + r.cfg.NamespaceSeparator +
		naming.LowerFirst(strings.TrimSuffix(name, requestBuilderSuffix)))
	if sibling == nil {
		return nil
	}
	if c := sibling.FindClass(name); c != nil {
		return c
	}
	return nil
}

func ownerName(e codedom.Element) string {
	if e == nil {
		return ""
	}
	if c := codedom.OwnerClass(e); c != nil {
		return c.Name + "." + e.SymbolName()
	}
	return e.SymbolName()
}
