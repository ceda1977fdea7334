package toast

// Stats counts toast decisions.
type Stats struct {
	Plain      int
	Compressed int
	External   int
	// ExternalBytes is the payload size moved out of line.
	ExternalBytes int
}

// Record adds one decision. stored is the external payload size and is
// ignored for inline kinds.
func (s *Stats) Record(k Kind, stored int) {
	switch k {
	case KindCompressed:
		s.Compressed++
	case KindExternal:
		s.External++
		s.ExternalBytes += stored
	default:
		s.Plain++
	}
}

// Toasted returns the number of values that were not stored plain.
func (s Stats) Toasted() int {
	return s.Compressed + s.External
}

// IsToasted reports whether b starts with a toast header tag. Plain values
// may start with the same bytes; columns track toasted rows separately.
func IsToasted(b []byte) bool {
	return len(b) > 0 && (b[0] == tagCompressed || b[0] == tagExternal)
}

// HeaderSize returns the inline header size of a toasted value, or 0.
func HeaderSize(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	switch b[0] {
	case tagCompressed:
		return CompressedHeaderSize
	case tagExternal:
		return ExternalHeaderSize
	default:
		return 0
	}
}
