// Package hash hashes and verifies passwords with bcrypt or argon2id.
//
//	h, err := hash.Default("secret")        // bcrypt
//	h, err := hash.Argon2("secret", hash.DefaultArgon2)
//	ok := hash.Verify("secret", h)          // detects the algorithm
//	if hash.NeedsRehash(h) { ... }
package hash
