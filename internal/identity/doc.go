// Package identity turns a stored, field-encrypted user profile into the
// plaintext IdentityProfile snapshot a scan consumes. Decryption failures are
// tolerated per field: a field that cannot be decrypted is treated as absent
// rather than aborting the scan.
package identity
