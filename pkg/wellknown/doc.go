// Package wellknown serves the OpenID Connect discovery document and the
// JSON Web Key Set.
//
//   - /.well-known/openid-configuration - OpenID Connect Discovery 1.0
//   - /.well-known/jwks.json - public signing keys (RFC 7517)
//
// Endpoint URLs in the discovery document are the base URL followed by the
// fixed paths declared in this package. When Config.BaseURL is empty the base
// URL is taken from the request, so the same server answers correctly on its
// HTTP and HTTPS listeners.
//
//	handler := wellknown.NewHandler(wellknown.Config{
//	    Issuer: "https://prima.localauth0.com/",
//	}, keyStore)
//	handler.RegisterRoutes(router)
//
// id_token_signing_alg_values_supported reports the algorithm of a current
// signing key, so the document stays correct across key rotations.
package wellknown
