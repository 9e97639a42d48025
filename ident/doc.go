// Package ident builds and parses composite identifiers.
//
// A composite identifier is one EVM word:
//
//	[0:10]  name field
//	[10:12] index, big-endian uint16
//	[12:22] first 10 bytes of the token address
//	[22:32] first 10 bytes of the product address
//
// Historical layouts remain decodable through named Profiles.
package ident
