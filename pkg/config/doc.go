// Package config loads the server configuration with cleanenv.
//
// Values come from an optional TOML file and the environment, the environment
// winning. Every scalar has a default, so an empty environment yields a
// working server:
//
//	cfg, err := config.Load(os.Getenv(config.PathEnv))
//
// A file adds what the environment cannot express:
//
//	issuer = "https://prima.localauth0.com/"
//	authorization_code_ttl = "PT5M"
//
//	[[audience]]
//	name = "payments"
//	permissions = ["read:payments", "write:payments"]
//
//	[user_info]
//	given_name = "Locie"
//	custom_fields = [
//	    { name = "roles", value = { Vec = ["admin"] } },
//	]
//
//	[access_token]
//	custom_claims = [
//	    { name = "at_custom", value = { String = "value" } },
//	]
//
// Durations accept ISO 8601 ("PT10M") as well as Go syntax ("10m").
package config
