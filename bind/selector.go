// FILE: lixenwraith/propbind/bind/selector.go
package bind

// ConstructorProvider picks the constructor that receives bound parameters.
// A nil constructor means the composite is populated through its accessors.
type ConstructorProvider interface {
	Select(target Bindable, nested bool) (*Constructor, error)
}

// Candidates is the constructor analysis of one composite type.
type Candidates struct {
	HasInjection bool
	Bind         *Constructor
	Deduced      bool
	Immutable    bool
}

// Selector is the default ConstructorProvider.
type Selector struct{}

// Select returns the bind constructor for target. A deduced constructor of a
// mutable type gives way to accessor binding when an existing value is
// supplied; an explicitly marked constructor is always returned.
func (Selector) Select(target Bindable, nested bool) (*Constructor, error) {
	if target.Type.Kind() != Composite {
		return nil, nil
	}
	c, err := SelectCandidates(DescriptorOf(target.Type.Base()), nested)
	if err != nil {
		return nil, err
	}
	if c.Bind != nil && c.Deduced && !c.Immutable {
		if _, ok := target.Existing(); ok {
			return nil, nil
		}
	}
	return c.Bind, nil
}

// SelectCandidates applies the selection rules to d. nested reports that the
// type is bound inside another constructor-bound composite.
func SelectCandidates(d Descriptor, nested bool) (Candidates, error) {
	c := Candidates{
		HasInjection: hasInjection(&d),
		Immutable:    d.Immutable,
	}
	candidates := candidateConstructors(d)

	bind, err := markedConstructor(d, candidates)
	if err != nil {
		return Candidates{}, err
	}
	if bind == nil && !c.HasInjection {
		bind = deduceConstructor(d, candidates)
		c.Deduced = bind != nil
	}
	if bind == nil && !c.HasInjection {
		bind = primaryConstructor(d, candidates)
		c.Deduced = bind != nil
	}
	if (bind != nil || nested) && c.HasInjection {
		return Candidates{}, &ConstructorConflictError{Type: d.Type, Reason: "declares a bind constructor alongside an injection constructor"}
	}
	c.Bind = bind
	return c, nil
}

func candidateConstructors(d Descriptor) []*Constructor {
	if d.Inner {
		return nil
	}
	var out []*Constructor
	for i := range d.Constructors {
		if !d.Constructors[i].Synthetic {
			out = append(out, &d.Constructors[i])
		}
	}
	return out
}

// hasInjection checks every constructor of d and of the types it proxies.
func hasInjection(d *Descriptor) bool {
	for ; d != nil; d = d.Proxied {
		for _, ctor := range d.Constructors {
			if ctor.Inject {
				return true
			}
		}
	}
	return false
}

func markedConstructor(d Descriptor, candidates []*Constructor) (*Constructor, error) {
	var result *Constructor
	for _, ctor := range candidates {
		if !ctor.Bind {
			continue
		}
		if len(ctor.Params) == 0 {
			return nil, &ConstructorConflictError{Type: d.Type, Reason: "marks a constructor without parameters for binding"}
		}
		if result != nil {
			return nil, &ConstructorConflictError{Type: d.Type, Reason: "marks more than one constructor for binding"}
		}
		result = ctor
	}
	return result, nil
}

func deduceConstructor(d Descriptor, candidates []*Constructor) *Constructor {
	if len(candidates) == 1 && len(candidates[0].Params) > 0 {
		if d.Member && candidates[0].Private {
			return nil
		}
		return candidates[0]
	}
	var result *Constructor
	for _, ctor := range candidates {
		if ctor.Private {
			continue
		}
		if result != nil {
			return nil
		}
		result = ctor
	}
	if result != nil && len(result.Params) > 0 {
		return result
	}
	return nil
}

func primaryConstructor(d Descriptor, candidates []*Constructor) *Constructor {
	if d.Primary == "" {
		return nil
	}
	for _, ctor := range candidates {
		if ctor.Name == d.Primary && len(ctor.Params) > 0 {
			return ctor
		}
	}
	return nil
}
