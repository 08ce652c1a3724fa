package jwks

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"time"

	"github.com/tendant/local-idp/pkg/errors"
)

const (
	// RSAKeyBits is the size of every generated signing key.
	RSAKeyBits = 2048

	// CertificateValidity is how long a self-signed certificate stays valid.
	CertificateValidity = 365 * 24 * time.Hour

	certificateOrganization = "LocalAuth0 CA"
	certificateCountry      = "US"
	serialNumberBits        = 159
)

// KeyMaterial is an RSA private key together with a self-signed certificate
// for its public half.
type KeyMaterial struct {
	PrivateKey     *rsa.PrivateKey   `json:"-"`
	Certificate    *x509.Certificate `json:"-"`
	CertificateDER []byte            `json:"-"`
}

// GenerateKeyMaterial creates a fresh RSA key and a self-signed CA certificate
// valid for one year from now.
func GenerateKeyMaterial() (*KeyMaterial, error) {
	privateKey, err := GenerateRSAKeyPair(RSAKeyBits)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeKeyGeneration, "failed to generate RSA key")
	}

	der, err := createSelfSignedCertificate(privateKey, time.Now().UTC())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeKeyGeneration, "failed to create certificate")
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeKeyGeneration, "failed to parse generated certificate")
	}

	return &KeyMaterial{
		PrivateKey:     privateKey,
		Certificate:    cert,
		CertificateDER: der,
	}, nil
}

// TLSCertificate returns the material as a certificate usable by a TLS listener.
func (m *KeyMaterial) TLSCertificate() tls.Certificate {
	return tls.Certificate{
		Certificate: [][]byte{m.CertificateDER},
		PrivateKey:  m.PrivateKey,
		Leaf:        m.Certificate,
	}
}

func createSelfSignedCertificate(privateKey *rsa.PrivateKey, now time.Time) ([]byte, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), serialNumberBits))
	if err != nil {
		return nil, err
	}

	name := pkix.Name{
		Country:      []string{certificateCountry},
		Organization: []string{certificateOrganization},
		CommonName:   certificateOrganization,
	}

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               name,
		Issuer:                name,
		NotBefore:             now,
		NotAfter:              now.Add(CertificateValidity),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
		SubjectKeyId:          subjectKeyIdentifier(&privateKey.PublicKey),
		SignatureAlgorithm:    x509.SHA256WithRSA,
	}

	return x509.CreateCertificate(rand.Reader, template, template, &privateKey.PublicKey, privateKey)
}

// subjectKeyIdentifier is the SHA-1 of the PKCS#1 encoded public key (RFC 5280 4.2.1.2 method 1).
func subjectKeyIdentifier(publicKey *rsa.PublicKey) []byte {
	sum := sha1.Sum(x509.MarshalPKCS1PublicKey(publicKey))
	return sum[:]
}
