package parser

// Attr is one element attribute
type Attr struct {
	Name  string
	Value string
}

// Element is one markup element with its attributes and children in
// document order. Text is the element's character data with surrounding
// whitespace removed.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element
	Text     string
	Line     int
}

// Attr returns the value of the named attribute
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// ChildrenNamed returns the direct children with the given name, in order
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the first direct child with the given name, or nil
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// IsEmpty reports whether the element carries no attributes, children or text
func (e *Element) IsEmpty() bool {
	return len(e.Attrs) == 0 && len(e.Children) == 0 && e.Text == ""
}
