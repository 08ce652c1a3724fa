// Package errors provides structured error handling with error codes for local-idp.
//
// Every fallible operation of the key set, the token issuer and the token
// verifier returns an *Error whose Code tells the caller what went wrong
// without string matching:
//
//	claims, err := verifier.Verify(token, []string{"payments"})
//	switch {
//	case errors.IsCode(err, errors.ErrCodeUnknownKid):
//		// token was signed by a key that has been rotated out
//	case errors.IsCode(err, errors.ErrCodeTokenExpired):
//		// token is past its exp
//	}
//
// HTTP handlers turn codes into responses with MapErrorCodeToHTTPStatus and
// MapErrorCodeToOAuthError:
//
//	status := errors.MapErrorCodeToHTTPStatus(errors.GetCode(err))
//
// Key generation, empty key set, signing and serialization failures map to
// 500. Verification failures map to 401. Malformed requests map to 400.
package errors
