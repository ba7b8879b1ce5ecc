package textrec

import (
	"reflect"
	"strings"
)

// ResolveCellName applies the repository-wide rule to resolve the cell name a
// struct field binds to.
// Priority: textrec:"name" > json tag name > field name; "-" disables the field.
func ResolveCellName(sf reflect.StructField) string {
	if tt, ok := sf.Tag.Lookup("textrec"); ok {
		name, _, _ := strings.Cut(tt, ",")
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if name, _, _ := strings.Cut(jt, ","); name != "" {
			return name
		}
	}
	return sf.Name
}
