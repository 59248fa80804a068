package common

// AuthorizationHeaderName carries the bearer credential on outbound requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName correlates a client request with server logs.
const RequestIDHeaderName = "X-Request-ID"

// Keys of the durable metadata store.
const (
	MetadataKeyUser      = "user"
	MetadataKeyRole      = "role"
	MetadataKeyToken     = "token"
	MetadataKeyTokenSalt = "token_salt"
)
