package wellknown

// Endpoint paths served by this server, relative to the base URI
const (
	AuthorizationPath = "/oauth/login"
	TokenPath         = "/oauth/token"
	JWKSPath          = "/.well-known/jwks.json"
	UserInfoPath      = "/userinfo"
	DiscoveryPath     = "/.well-known/openid-configuration"
)

// ResponseTypeTokenIDToken is the only response type this server supports
const ResponseTypeTokenIDToken = "token id_token"

// OpenIDMetadata is the OpenID Connect Discovery 1.0 provider metadata
type OpenIDMetadata struct {
	// REQUIRED: The issuer identifier, copied into the iss claim of every token
	Issuer string `json:"issuer"`

	// REQUIRED: URL of the authorization endpoint
	AuthorizationEndpoint string `json:"authorization_endpoint"`

	// REQUIRED: URL of the token endpoint
	TokenEndpoint string `json:"token_endpoint"`

	// REQUIRED: URL of the JWK Set document
	JwksURI string `json:"jwks_uri"`

	// RECOMMENDED: URL of the userinfo endpoint
	UserinfoEndpoint string `json:"userinfo_endpoint,omitempty"`

	// REQUIRED: Array of response_type values this server supports
	ResponseTypesSupported []string `json:"response_types_supported"`

	// REQUIRED: Array of subject identifier types this server supports
	SubjectTypesSupported []string `json:"subject_types_supported"`

	// REQUIRED: Array of JWS algorithms used to sign ID tokens
	IDTokenSigningAlgValuesSupported []string `json:"id_token_signing_alg_values_supported"`
}

// Config holds configuration for well-known endpoints
type Config struct {
	// Issuer identifier reported in the metadata (e.g. "https://prima.localauth0.com/")
	Issuer string

	// Base URL for constructing endpoint URLs. When empty the handler derives
	// it from the incoming request.
	BaseURL string
}

// AlgorithmSource reports the signing algorithm of a current key
type AlgorithmSource interface {
	SigningAlgorithm() (string, error)
}

// NewOpenIDMetadata builds the discovery document for baseURL. It fails only
// when no signing key is available.
func NewOpenIDMetadata(issuer, baseURL string, keys AlgorithmSource) (*OpenIDMetadata, error) {
	alg, err := keys.SigningAlgorithm()
	if err != nil {
		return nil, err
	}

	return &OpenIDMetadata{
		Issuer:                           issuer,
		AuthorizationEndpoint:            baseURL + AuthorizationPath,
		TokenEndpoint:                    baseURL + TokenPath,
		JwksURI:                          baseURL + JWKSPath,
		UserinfoEndpoint:                 baseURL + UserInfoPath,
		ResponseTypesSupported:           []string{ResponseTypeTokenIDToken},
		SubjectTypesSupported:            []string{"public"},
		IDTokenSigningAlgValuesSupported: []string{alg},
	}, nil
}
