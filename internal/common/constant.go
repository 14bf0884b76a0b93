// Package common contains shared constants and sentinel errors used across
// assetvault components.
package common

// AuthorizationHeaderName is the HTTP header carrying the caller's bearer
// credential.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the credential scheme accepted in AuthorizationHeaderName.
const BearerScheme = "Bearer"
