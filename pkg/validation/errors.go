package validation

import "strings"

// Machine readable field error codes.
const (
	CodeRequired = "required"
	CodeType     = "type"
	CodeEnum     = "enum"
	CodeRange    = "range"
	CodeLength   = "length"
	CodeFormat   = "format"
	CodeSchema   = "schema"
)

// FieldError describes one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string { return e.Message }

// Error is returned by Registry.Validate for an invalid document.
type Error struct {
	Fields []*FieldError
}

// Error joins the field messages, first field first.
func (e *Error) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// First returns the first field error, or nil.
func (e *Error) First() *FieldError {
	if len(e.Fields) == 0 {
		return nil
	}
	return e.Fields[0]
}

// add appends fe unless the field already has an error.
func (e *Error) add(fe *FieldError) {
	for _, existing := range e.Fields {
		if existing.Field == fe.Field {
			return
		}
	}
	e.Fields = append(e.Fields, fe)
}
