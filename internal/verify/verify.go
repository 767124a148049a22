// Package verify issues and checks the tokens behind a certificate's
// verification stamp. Tokens bind a certificate identifier to a digest of the
// composed block sequence, so a presented document can be checked for
// tampering without any issued-certificate store.
package verify

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"

	"vaxcert/internal/compose"
	id "vaxcert/pkg/domain"
	dErrors "vaxcert/pkg/domain-errors"
)

// Claims is the token payload.
type Claims struct {
	CertificateID string `json:"cid"`
	SubjectID     string `json:"sub_id"`
	Digest        string `json:"dig"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 tokens over certificate contents.
type Signer struct {
	key      []byte
	validity time.Duration
}

func NewSigner(key []byte, validity time.Duration) *Signer {
	return &Signer{key: key, validity: validity}
}

// Issue signs a token for a freshly composed document.
func (s *Signer) Issue(certificateID string, subjectID id.SubjectID, doc compose.Document, issuedAt time.Time) (string, error) {
	claims := Claims{
		CertificateID: certificateID,
		SubjectID:     subjectID.String(),
		Digest:        ContentDigest(doc),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "vaxcert",
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.validity)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign verification token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of a presented token and returns its
// claims. Invalid or expired tokens map to validation errors so the transport
// reports them as client-side outcomes.
func (s *Signer) Verify(raw string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return Claims{}, dErrors.Wrap(dErrors.CodeValidation, "verification token rejected", err)
	}
	return claims, nil
}

// ContentDigest hashes the canonical block sequence with BLAKE2b-256. Because
// composition is deterministic, equal documents always digest equally.
func ContentDigest(doc compose.Document) string {
	h, _ := blake2b.New256(nil)
	for _, b := range doc.Blocks {
		fmt.Fprintf(h, "%s|%d|%.1f,%.1f,%.1f,%.1f|%.1f|%s|%t|%t\n",
			b.Role, b.Seq, b.Frame.X, b.Frame.Y, b.Frame.W, b.Frame.H,
			b.Rotation, b.Align, b.Filled, b.Circular)
		for _, line := range b.Lines {
			fmt.Fprintln(h, line)
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
