package frontend

import (
	"fmt"
	"sort"
	"strings"
)

// Element ids the page must provide.
const (
	FormID           = "generateForm"
	UrlInputID       = "urlInput"
	LoadingSpinnerID = "loadingSpinner"
	MapID            = "map"
	ErrorMessageID   = "errorMessage"
)

const loadingClass = "loading"

// Element is the slice of a DOM element the controller touches.
type Element interface {
	Value() string
	SetText(text string)
	SetVisible(visible bool)
	AddClass(name string)
	RemoveClass(name string)
}

// Document resolves elements by id. A nil Element means the id is absent.
type Document interface {
	ElementByID(id string) Element
}

type elements struct {
	form    Element
	input   Element
	spinner Element
	mapEl   Element
	errMsg  Element
}

func lookup(doc Document) (*elements, error) {
	els := &elements{
		form:    doc.ElementByID(FormID),
		input:   doc.ElementByID(UrlInputID),
		spinner: doc.ElementByID(LoadingSpinnerID),
		mapEl:   doc.ElementByID(MapID),
		errMsg:  doc.ElementByID(ErrorMessageID),
	}

	var missing []string
	for id, el := range map[string]Element{
		FormID:           els.form,
		UrlInputID:       els.input,
		LoadingSpinnerID: els.spinner,
		MapID:            els.mapEl,
		ErrorMessageID:   els.errMsg,
	} {
		if el == nil {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("document is missing elements: %s", strings.Join(missing, ", "))
	}
	return els, nil
}
