// Package confidence scores raw scanner hits against the user's identity
// profile. Each hit gets independent factor scores (name, contact, locality),
// a weighted combined score in [0,100], and a three-way classification used
// to gate automated remediation.
package confidence
