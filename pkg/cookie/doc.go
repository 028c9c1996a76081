// Package cookie reads and writes HTTP cookies with shared attributes and
// optional HMAC signing.
//
// Plain cookies work without a secret:
//
//	m := cookie.New()
//	m.Set(w, "theme", "dark", 86400)
//	value, err := m.Get(r, "theme")
//
// Signed cookies need a secret of at least 32 bytes. The signature covers the
// cookie name, so a value cannot be replayed under another name:
//
//	m := cookie.New(cookie.WithSecret(os.Getenv("SESSION_SECRET")))
//	if err := m.SetSigned(w, "sid", token, 3600); err != nil {
//		return err
//	}
//	token, err := m.GetSigned(r, "sid") // ErrBadSig on tampering
//
// Without a secret, SetSigned and GetSigned return [ErrNoSecret].
package cookie
