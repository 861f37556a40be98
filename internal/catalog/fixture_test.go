package catalog

// zooIndex is a small universe shared by the catalog tests:
//
//	zoo.Animal <- zoo.Dog <- zoo.Puppy
func zooIndex() *Index {
	return &Index{
		Source: "zoo fixture",
		Types: []IndexType{
			{
				Name: "zoo.Animal",
				Fields: []IndexField{
					{Name: "name", Type: "string"},
					{Name: "population", Type: "int", Static: true},
				},
				Methods: []IndexMethod{
					{Name: "speak", Return: "string"},
					{Name: "create", Params: []string{"string"}, Return: "zoo.Animal", Static: true},
				},
			},
			{
				Name:       "zoo.Dog",
				Supertypes: []string{"zoo.Animal"},
				Fields: []IndexField{
					{Name: "legs", Type: "int"},
					{Name: "DEFAULT", Type: "zoo.Dog", Static: true},
					{Name: "ROOT", Type: "zoo.Animal", Static: true},
				},
				Methods: []IndexMethod{
					{Name: "bark", Params: []string{"int"}},
					{Name: "bark", Params: []string{"string"}, Return: "string"},
					{Name: "of", Params: []string{"string"}, Return: "zoo.Dog", Static: true},
				},
			},
			{
				Name:       "zoo.Puppy",
				Supertypes: []string{"zoo.Dog"},
			},
		},
	}
}

func zooCatalog() *Memory {
	m, err := NewMemory(zooIndex())
	if err != nil {
		panic(err)
	}
	return m
}

func td(name string) TypeDescriptor {
	_, prim := primitiveNames[name]
	return TypeDescriptor{Name: name, Primitive: prim}
}
