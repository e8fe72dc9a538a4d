package usercontext

// Shared Locals/session keys used across controllers and middlewares
const (
	AuthKey          = "authenticated"
	KeyIdentityKey   = "identity_key"
	KeyDisplayName   = "display_name"
	KeyFromProtected = "from_protected"
)
