// Package config loads application settings from a YAML file, .env files and
// environment variables, in that order of precedence from lowest to highest.
//
//	# craft.yaml
//	name: demo
//	debug: true
//	database:
//	  url: sqlite://demo.db
//	session:
//	  store: redis
//	  ttl: 2h
//
// Environment variables use the names in the struct tags, for example
// APP_DEBUG, DATABASE_URL and SESSION_TTL.
package config
