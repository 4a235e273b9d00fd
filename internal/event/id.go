package event

// ID names one logical event. Two IDs with the same string refer to the
// same event; uniqueness is enforced by the Registry at registration time.
type ID string

// String returns the canonical name.
func (id ID) String() string {
	return string(id)
}

// Valid reports whether the ID can be registered.
func (id ID) Valid() bool {
	return id != ""
}
