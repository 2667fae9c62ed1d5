package types

// AuthLevel is the authorization level derived from an identity and
// bearer token pair.
type AuthLevel int

const (
	// LevelAnonymous is an unauthenticated caller.
	LevelAnonymous AuthLevel = iota

	// LevelRegular is an authenticated non-admin user.
	LevelRegular

	// LevelAdmin is an authenticated administrator.
	LevelAdmin
)

func (l AuthLevel) String() string {
	switch l {
	case LevelRegular:
		return "regular"
	case LevelAdmin:
		return "admin"
	default:
		return "anonymous"
	}
}
