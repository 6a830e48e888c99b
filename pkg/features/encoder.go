package features

import (
	"errors"
	"fmt"
)

// LabelEncoder is a fitted label encoder: the code of a label is its index
// in the class list.
type LabelEncoder struct {
	classes []string
	codes   map[string]int
}

func NewLabelEncoder(classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, errors.New("encoder has no classes")
	}
	codes := make(map[string]int, len(classes))
	for i, label := range classes {
		if _, dup := codes[label]; dup {
			return nil, fmt.Errorf("duplicate class %q", label)
		}
		codes[label] = i
	}
	return &LabelEncoder{classes: append([]string(nil), classes...), codes: codes}, nil
}

func (e *LabelEncoder) Code(label string) (int, bool) {
	code, ok := e.codes[label]
	return code, ok
}

func (e *LabelEncoder) Label(code int) (string, bool) {
	if code < 0 || code >= len(e.classes) {
		return "", false
	}
	return e.classes[code], true
}

func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}
