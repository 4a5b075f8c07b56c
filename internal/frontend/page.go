package frontend

import "sort"

// PageElement is an in-memory Element.
type PageElement struct {
	ID      string
	value   string
	text    string
	visible bool
	classes map[string]bool
}

func (e *PageElement) Value() string { return e.value }
func (e *PageElement) SetValue(value string) { e.value = value }
func (e *PageElement) Text() string { return e.text }
func (e *PageElement) SetText(text string) { e.text = text }
func (e *PageElement) Visible() bool { return e.visible }
func (e *PageElement) SetVisible(visible bool) { e.visible = visible }
func (e *PageElement) AddClass(name string) { e.classes[name] = true }
func (e *PageElement) RemoveClass(name string) { delete(e.classes, name) }
func (e *PageElement) HasClass(name string) bool { return e.classes[name] }

// Classes returns the element's classes in sorted order.
func (e *PageElement) Classes() []string {
	out := make([]string, 0, len(e.classes))
	for name := range e.classes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Page is an in-memory Document holding the form page elements in their
// initial state: the spinner, error message and map start hidden.
type Page struct {
	elements map[string]*PageElement
}

func NewPage() *Page {
	p := &Page{elements: map[string]*PageElement{}}
	for _, id := range []string{FormID, UrlInputID, LoadingSpinnerID, MapID, ErrorMessageID} {
		p.elements[id] = &PageElement{ID: id, classes: map[string]bool{}}
	}
	p.elements[FormID].visible = true
	p.elements[UrlInputID].visible = true
	return p
}

func (p *Page) ElementByID(id string) Element {
	el, ok := p.elements[id]
	if !ok {
		return nil
	}
	return el
}

// Element returns the concrete element for id, or nil.
func (p *Page) Element(id string) *PageElement {
	return p.elements[id]
}

// Remove drops an element, as if the page markup lacked it.
func (p *Page) Remove(id string) {
	delete(p.elements, id)
}
