package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

// Delimiter separates the payload segment from the signature segment.
const Delimiter = "."

var (
	// ErrSecretRequired is returned by NewCodec when no signing secret is configured.
	ErrSecretRequired = errors.New("signing secret required")
	// ErrSubjectRequired is returned by Encode when the claim has an empty subject id.
	ErrSubjectRequired = errors.New("claim subject id required")
	// ErrMalformed is returned by Decode when the credential does not split into
	// exactly two non-empty segments.
	ErrMalformed = errors.New("malformed credential")
	// ErrSignatureInvalid is returned by Decode when re-signing the received
	// payload does not reproduce the signature segment byte-for-byte.
	ErrSignatureInvalid = errors.New("credential signature invalid")
	// ErrPayloadCorrupt is returned by Decode when the signature verifies but the
	// payload cannot be decoded back into a claim.
	ErrPayloadCorrupt = errors.New("credential payload corrupt")
)

// Claim is the identity data bound inside a credential. SubjectID is the
// attendee's ticket identifier and the sole field used for identity decisions;
// the remaining fields are presentational.
//
// The JSON keys match what the registration side signs: uid, name, email, phone.
type Claim struct {
	SubjectID string `json:"uid"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Config defines a public type used by gatepass APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Secret []byte
}

// Codec signs and verifies credentials with a single shared secret. The codec
// never generates or rotates the secret; it is supplied at construction.
//
// Codec instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Codec struct {
	secret []byte
}

// NewCodec describes the newcodec operation and its observable behavior.
//
// NewCodec may return an error when input validation, dependency calls, or security checks fail.
// NewCodec does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrSecretRequired
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	return &Codec{secret: secret}, nil
}

// Encode serializes the claim and returns the signed credential string. It is
// a pure function of the claim and the configured secret.
//
// Encode may return an error when input validation, dependency calls, or security checks fail.
func (c *Codec) Encode(claim Claim) (string, error) {
	if strings.TrimSpace(claim.SubjectID) == "" {
		return "", ErrSubjectRequired
	}

	raw, err := json.Marshal(claim)
	if err != nil {
		return "", err
	}

	payload := base64.StdEncoding.EncodeToString(raw)
	return payload + Delimiter + c.sign(payload), nil
}

// Decode verifies a scanned credential and returns the embedded claim.
// Failures are drawn from a closed set: [ErrMalformed], [ErrSignatureInvalid],
// [ErrPayloadCorrupt]. Decode has no side effects.
func (c *Codec) Decode(credential string) (*Claim, error) {
	parts := strings.Split(credential, Delimiter)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, ErrMalformed
	}
	payload, signature := parts[0], parts[1]

	// Compare over the hex encoding: fixed width, case-sensitive, constant time.
	if !hmac.Equal([]byte(c.sign(payload)), []byte(signature)) {
		return nil, ErrSignatureInvalid
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrPayloadCorrupt
	}

	var claim Claim
	if err := json.Unmarshal(raw, &claim); err != nil {
		return nil, ErrPayloadCorrupt
	}
	if strings.TrimSpace(claim.SubjectID) == "" {
		return nil, ErrPayloadCorrupt
	}

	return &claim, nil
}

func (c *Codec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
