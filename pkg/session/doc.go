// Package session holds server-side session state and the stores that keep it.
//
// A Session is addressed by an opaque token carried in a cookie. Values and
// flash messages are kept in maps; any change marks the session dirty so the
// app persists it before the response is written.
//
//	sess.SetValue("user_id", 42)
//	sess.WithSuccess("Profile saved")
//	id := session.ValueOr(sess, "user_id", 0)
//
// Two stores are provided: [MemoryStore] for development and single-instance
// deployments, and [RedisStore] which keeps JSON documents with a TTL.
package session
