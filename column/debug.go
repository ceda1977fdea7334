package column

import "fmt"

// DebugString renders a one-line summary of c.
func DebugString(c Column) string {
	s := fmt.Sprintf("%s %s column: rows=%d non_null=%d width=%d align=%d encoding=%s",
		c.Format(), c.Kind(), c.Rows(), c.NonNullRows(), c.TypeLength(), c.TypeAlign(), c.Encoding().Kind)
	if n := c.ToastCount(); n > 0 {
		s += fmt.Sprintf(" toasts=%d external=%d", n, len(c.ExternalToast()))
	}
	return s
}
