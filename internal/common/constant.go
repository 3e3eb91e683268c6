// Package common contains shared constants, sentinel errors and typed errors
// used by the authkeeper server, its transports and the CLI client.
package common

// AuthorizationHeaderName is the gRPC metadata key (and, capitalized, the HTTP
// header) that carries the bearer credential.
const AuthorizationHeaderName = "authorization"

// BearerScheme is the only authorization scheme the server accepts.
const BearerScheme = "Bearer"

// TokenTypeBearer is reported to clients alongside an issued access token.
const TokenTypeBearer = "bearer"
