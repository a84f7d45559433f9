package validators

import "strings"

// FieldError describes why a single field of a payload was rejected
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Errors collects every rejected field of a payload. A nil or empty value
// means the payload is valid.
type Errors []FieldError

var rules = map[error]string{
	ErrEmailEmpty:       "required",
	ErrEmailInvalid:     "email",
	ErrPasswordEmpty:    "required",
	ErrPasswordTooShort: "minLength",
	ErrPasswordTooLong:  "maxLength",
	ErrURLEmpty:         "required",
	ErrURLInvalid:       "url",
	ErrRequired:         "required",
	ErrTooLong:          "maxLength",
}

func (e *Errors) Add(field, rule, message string) {
	*e = append(*e, FieldError{Field: field, Rule: rule, Message: message})
}

// Check records err against field. nil errors are ignored.
func (e *Errors) Check(field string, err error) {
	if err == nil {
		return
	}

	rule, ok := rules[err]
	if !ok {
		rule = "invalid"
	}

	e.Add(field, rule, err.Error())
}

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, f := range e {
		msgs[i] = f.Field + ": " + f.Message
	}

	return strings.Join(msgs, "; ")
}
