package normalize

// Facets normalizes a raw facets array.
func Facets(raw []interface{}) []Facet {
	out := []Facet{}
	for _, item := range raw {
		m, ok := asObject(item)
		if !ok {
			continue
		}

		f := Facet{
			ID:     str(m, "id", "Id", "ID"),
			Name:   str(m, "name", "Name"),
			Values: []FacetData{},
		}
		values, _ := pick(m, asList, "values", "Values")
		for _, v := range values {
			vm, ok := asObject(v)
			if !ok {
				continue
			}
			f.Values = append(f.Values, FacetData{
				ID:    str(vm, "id", "Id", "ID"),
				Data:  str(vm, "data", "Data"),
				Count: integer(vm, "count", "Count"),
			})
		}
		out = append(out, f)
	}
	return out
}
