package models

// UserProfile maps field ids to validated, normalized values. It is built
// incrementally during the collection phase and echoed back unchanged once
// the Q&A phase begins.
type UserProfile map[string]string

// Clone returns an independent copy of the profile.
func (p UserProfile) Clone() UserProfile {
	out := make(UserProfile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Organization returns the normalized health fund name, if collected.
func (p UserProfile) Organization() string { return p["hmo_name"] }

// Tier returns the normalized membership tier, if collected.
func (p UserProfile) Tier() string { return p["membership_tier"] }

// FullName returns the user's name as given, if collected.
func (p UserProfile) FullName() string { return p["full_name"] }
