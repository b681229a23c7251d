// Package ctxkeys names the fiber.Ctx locals shared by middlewares and handlers.
package ctxkeys

const (
	// IdentityKey holds the auth.Identity bound by the JWT middleware or the WebSocket upgrade.
	IdentityKey = "identity"
	// ParentCtxKey holds the request context handed over to the WebSocket stream.
	ParentCtxKey = "parentCtx"
	// JWTTokenKey is where jwtware stores the parsed *jwt.Token.
	JWTTokenKey = "user"
)
