package activity

// Change is one field's before and after value.
type Change struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// Diff reports the fields whose value differs between before and after.
// Keys present on one side only are reported against nil. Values must be
// comparable scalars.
func Diff(before, after map[string]any) map[string]Change {
	out := map[string]Change{}
	for k, b := range before {
		a, ok := after[k]
		if !ok {
			out[k] = Change{From: b}
			continue
		}
		if a != b {
			out[k] = Change{From: b, To: a}
		}
	}
	for k, a := range after {
		if _, ok := before[k]; !ok {
			out[k] = Change{To: a}
		}
	}
	return out
}
