// Package address derives validator state addresses.
//
// A family owns the region of global state whose addresses start with its
// namespace: the first 6 hex characters of SHA-512(family name). Entries
// inside the region append 64 hex characters derived from an entry key.
package address

import (
	"crypto/sha512"
	"encoding/hex"
)

const (
	// NamespaceLen is the number of hex characters in a family namespace.
	NamespaceLen = 6
	// Len is the number of hex characters in a full state address.
	Len = 70
)

func hexSHA512(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Namespace returns the address prefix owned by family. Any string is accepted.
func Namespace(family string) string {
	return hexSHA512(family)[:NamespaceLen]
}

// StateAddress returns the full address of key inside family's namespace.
func StateAddress(family, key string) string {
	return Namespace(family) + hexSHA512(key)[:Len-NamespaceLen]
}

// Valid reports whether addr is a well-formed full state address.
func Valid(addr string) bool {
	if len(addr) != Len {
		return false
	}
	return isLowerHex(addr)
}

// InNamespace reports whether addr (full or prefix) lies inside ns.
func InNamespace(addr, ns string) bool {
	return len(addr) >= len(ns) && addr[:len(ns)] == ns
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') {
			continue
		}
		return false
	}
	return true
}
