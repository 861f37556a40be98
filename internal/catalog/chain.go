package catalog

// Chain combines several catalogs. Names resolve against each catalog in
// order; member and assignability questions go back to the catalog that
// issued the descriptor.
type Chain struct {
	catalogs []Catalog
	owners   map[string]int
}

func NewChain(catalogs ...Catalog) *Chain {
	return &Chain{catalogs: catalogs, owners: make(map[string]int)}
}

// Len returns the number of chained catalogs.
func (c *Chain) Len() int {
	return len(c.catalogs)
}

func (c *Chain) Resolve(name string) (TypeDescriptor, bool) {
	for i, cat := range c.catalogs {
		if t, ok := cat.Resolve(name); ok {
			c.own(i, t)
			return t, true
		}
	}
	return TypeDescriptor{}, false
}

func (c *Chain) DeclaredFields(t TypeDescriptor) []FieldDescriptor {
	i, ok := c.owner(t)
	if !ok {
		return nil
	}
	fields := c.catalogs[i].DeclaredFields(t)
	for _, f := range fields {
		c.own(i, f.Type)
	}
	return fields
}

func (c *Chain) DeclaredMethods(t TypeDescriptor) []MethodDescriptor {
	i, ok := c.owner(t)
	if !ok {
		return nil
	}
	methods := c.catalogs[i].DeclaredMethods(t)
	for _, m := range methods {
		c.own(i, m.Return)
		for _, p := range m.Params {
			c.own(i, p)
		}
	}
	return methods
}

// IsAssignable only relates types issued by the same catalog; across
// catalogs a type is assignable to itself alone.
func (c *Chain) IsAssignable(from, to TypeDescriptor) bool {
	if from.Name == to.Name {
		return true
	}
	fi, ok := c.owner(from)
	if !ok {
		return false
	}
	ti, ok := c.owner(to)
	if !ok || fi != ti {
		return false
	}
	return c.catalogs[fi].IsAssignable(from, to)
}

// TypeNames lists the names of every enumerable chained catalog.
func (c *Chain) TypeNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, cat := range c.catalogs {
		e, ok := cat.(Enumerator)
		if !ok {
			continue
		}
		for _, name := range e.TypeNames() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// own records the first catalog to hand out a name.
func (c *Chain) own(i int, t TypeDescriptor) {
	if _, ok := c.owners[t.Name]; !ok {
		c.owners[t.Name] = i
	}
}

func (c *Chain) owner(t TypeDescriptor) (int, bool) {
	if i, ok := c.owners[t.Name]; ok {
		return i, true
	}
	for i, cat := range c.catalogs {
		if _, ok := cat.Resolve(t.Name); ok {
			c.own(i, t)
			return i, true
		}
	}
	return 0, false
}
