package jsoncover

import (
	"strconv"

	"github.com/ShubhamK2003/JSONCover/pointer"
)

func itoa(i int) string { return strconv.Itoa(i) }

// absoluteLocation renders base#/pointer, or #/pointer without a base.
func absoluteLocation(base string, p pointer.Pointer) string {
	return base + p.URIFragment()
}

func fragmentOf(p string) string {
	ptr, err := pointer.Parse(p)
	if err != nil {
		return "#" + p
	}
	return ptr.URIFragment()
}
