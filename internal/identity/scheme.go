package identity

import "fmt"

// Scheme fixes the Form of each entity class for one deployment.
type Scheme struct {
	User Form
	Item Form
}

// Validate checks that both forms are known.
func (s Scheme) Validate() error {
	for name, f := range map[string]Form{"user": s.User, "item": s.Item} {
		if f != Numeric && f != Opaque {
			return fmt.Errorf("%s identity form %q is not %q or %q", name, f, Numeric, Opaque)
		}
	}
	return nil
}

// UserKey normalises a caller or author reference.
func (s Scheme) UserKey(raw any) (Key, error) {
	return normalize(raw, s.User, "user id")
}

// ItemKey normalises an album reference.
func (s Scheme) ItemKey(raw any) (Key, error) {
	return normalize(raw, s.Item, "album_id")
}
