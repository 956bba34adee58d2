package contextkeys

// Custom type avoids collisions with other packages' keys.
type contextKey string

// DBContextKey stores the request's *gorm.DB (pool or transaction).
const DBContextKey = contextKey("db")

// PrincipalKey stores the authenticated auth.Principal on the gin context.
const PrincipalKey = "principal"
