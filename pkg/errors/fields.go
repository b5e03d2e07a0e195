package errors

import "sort"

// FieldErrors collects every violation per field instead of stopping at the first.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Merge copies all messages from other into f.
func (f FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		for _, msg := range msgs {
			f.Add(field, msg)
		}
	}
}

func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

func (f FieldErrors) Has(field string) bool {
	return len(f[field]) > 0
}

// Fields returns the offending field names in sorted order.
func (f FieldErrors) Fields() []string {
	out := make([]string, 0, len(f))
	for field := range f {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// Err converts the collection into a validation error, or nil when empty.
func (f FieldErrors) Err(message string) error {
	if f.Empty() {
		return nil
	}
	if message == "" {
		message = "validation failed"
	}
	return New(CodeValidation, message).WithDetails(map[string][]string(f))
}
