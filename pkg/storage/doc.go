// Package storage defines the persistence contracts for users, categories,
// recipes, and the token blacklist, plus the shared record types and sentinel
// errors all backends map their failures onto.
package storage
