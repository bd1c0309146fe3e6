// Package auth implements the credential and token primitives: bcrypt hashing
// for passwords and secret words, and issuance/verification of HMAC-signed,
// time-limited bearer tokens.
package auth
