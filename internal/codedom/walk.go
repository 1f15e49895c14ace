package codedom

// Children returns the direct children of e in element order.
func Children(e Element) []Element {
	switch v := e.(type) {
	case *Namespace:
		var out []Element
		for _, d := range v.Declarations() {
			out = append(out, d)
		}
		for _, ns := range v.Namespaces() {
			out = append(out, ns)
		}
		return out
	case *Class:
		return v.Members()
	case *Method:
		var out []Element
		for _, p := range v.Parameters() {
			out = append(out, p)
		}
		return out
	case *Indexer:
		if v.Parameter != nil {
			return []Element{v.Parameter}
		}
	}
	return nil
}

// Walk visits e and its descendants depth-first in element order. Returning
// false from fn skips the children of the visited element.
func Walk(e Element, fn func(Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range Children(e) {
		Walk(c, fn)
	}
}

// TypeRefs returns the type references held directly by e.
func TypeRefs(e Element) []*TypeRef {
	var out []*TypeRef
	add := func(t *TypeRef) {
		if t != nil {
			out = append(out, t)
		}
	}
	switch v := e.(type) {
	case *Class:
		add(v.BaseType)
		for _, t := range v.Interfaces() {
			add(t)
		}
	case *Property:
		add(v.Type)
	case *Parameter:
		add(v.Type)
	case *Method:
		add(v.ReturnType)
		for _, em := range v.ErrorMappings() {
			add(em.Type)
		}
		for _, dm := range v.Discriminator.Mappings() {
			add(dm.Type)
		}
	case *Indexer:
		add(v.ReturnType)
	case *ComposedType:
		for _, t := range v.Members() {
			add(t)
		}
		for _, dm := range v.Discriminator.Mappings() {
			add(dm.Type)
		}
	}
	return out
}

// AllTypeRefs returns every type reference under e.
func AllTypeRefs(e Element) []*TypeRef {
	var out []*TypeRef
	Walk(e, func(el Element) bool {
		out = append(out, TypeRefs(el)...)
		return true
	})
	return out
}
