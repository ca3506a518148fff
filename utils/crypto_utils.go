package utils

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"

	"github.com/Luismorlan/scrooge_in_go/model"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
)

const (
	ED25519 = "ed25519"
	RSA_PSS = "rsa-pss"
	SCHNORR = "schnorr"

	DefaultRSAKeyBits = 2048
)

var (
	ErrKeyConstruction       = errors.New("error constructing key from byte slice")
	ErrSignatureConstruction = errors.New("error constructing signature")
	ErrUnknownScheme         = errors.New("unknown signature scheme")
)

// KeyPair is a private key able to authorize spends of outputs paid to its PublicKey.
type KeyPair interface {
	PublicKey() model.Address
	Sign(msg []byte) (model.Signature, error)
	// Bytes is the private key in the scheme's own encoding.
	Bytes() []byte
}

// Scheme bundles key generation, parsing and verification of one signature algorithm.
// Every Scheme is a model.Verifier and is safe for concurrent use.
type Scheme interface {
	model.Verifier
	Name() string
	GenerateKey() (KeyPair, error)
	ParsePrivateKey(b []byte) (KeyPair, error)
	// ParsePublicKey checks that b is a well formed public key.
	ParsePublicKey(b []byte) (model.Address, error)
	// ParseSignature checks that b is a well formed signature.
	ParseSignature(b []byte) (model.Signature, error)
}

// SchemeByName returns one of ED25519, RSA_PSS or SCHNORR. rsaBits only matters for RSA_PSS key
// generation; zero means DefaultRSAKeyBits.
func SchemeByName(name string, rsaBits int) (Scheme, error) {
	switch name {
	case ED25519:
		return Ed25519Scheme{}, nil
	case RSA_PSS:
		if rsaBits == 0 {
			rsaBits = DefaultRSAKeyBits
		}
		return RSAPSSScheme{Bits: rsaBits}, nil
	case SCHNORR:
		return SchnorrScheme{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownScheme, "%q", name)
	}
}

// Ed25519Scheme signs the raw message.
type Ed25519Scheme struct{}

type ed25519KeyPair struct {
	sk ed25519.PrivateKey
}

func (Ed25519Scheme) Name() string {
	return ED25519
}

func (Ed25519Scheme) GenerateKey() (KeyPair, error) {
	_, sk, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return ed25519KeyPair{sk: sk}, nil
}

// ParsePrivateKey takes the 32 byte seed.
func (Ed25519Scheme) ParsePrivateKey(b []byte) (KeyPair, error) {
	if len(b) != ed25519.SeedSize {
		return nil, errors.Wrapf(ErrKeyConstruction, "ed25519 seed has %d bytes, want %d", len(b), ed25519.SeedSize)
	}
	return ed25519KeyPair{sk: ed25519.NewKeyFromSeed(b)}, nil
}

func (Ed25519Scheme) ParsePublicKey(b []byte) (model.Address, error) {
	if len(b) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(ErrKeyConstruction, "ed25519 public key has %d bytes, want %d", len(b), ed25519.PublicKeySize)
	}
	return model.Address(b), nil
}

func (Ed25519Scheme) ParseSignature(b []byte) (model.Signature, error) {
	if len(b) != ed25519.SignatureSize {
		return nil, errors.Wrapf(ErrSignatureConstruction, "ed25519 signature has %d bytes, want %d", len(b), ed25519.SignatureSize)
	}
	return model.Signature(b), nil
}

func (Ed25519Scheme) Verify(pub model.Address, msg []byte, sig model.Signature) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), msg, sig)
}

func (k ed25519KeyPair) PublicKey() model.Address {
	return model.Address(k.sk.Public().(ed25519.PublicKey))
}

func (k ed25519KeyPair) Sign(msg []byte) (model.Signature, error) {
	return ed25519.Sign(k.sk, msg), nil
}

func (k ed25519KeyPair) Bytes() []byte {
	return k.sk.Seed()
}

// RSAPSSScheme signs the SHA256 digest of the message with RSASSA-PSS. Public keys are PKIX DER
// and private keys PKCS1 DER.
type RSAPSSScheme struct {
	Bits int
}

type rsaKeyPair struct {
	sk *rsa.PrivateKey
}

func (RSAPSSScheme) Name() string {
	return RSA_PSS
}

func (s RSAPSSScheme) GenerateKey() (KeyPair, error) {
	sk, err := rsa.GenerateKey(rand.Reader, s.Bits)
	if err != nil {
		return nil, err
	}
	return rsaKeyPair{sk: sk}, nil
}

func (RSAPSSScheme) ParsePrivateKey(b []byte) (KeyPair, error) {
	sk, err := x509.ParsePKCS1PrivateKey(b)
	if err != nil {
		return nil, errors.Wrap(ErrKeyConstruction, err.Error())
	}
	return rsaKeyPair{sk: sk}, nil
}

func (RSAPSSScheme) ParsePublicKey(b []byte) (model.Address, error) {
	if BytesToPublicKey(b) == nil {
		return nil, errors.Wrap(ErrKeyConstruction, "not a PKIX encoded rsa public key")
	}
	return model.Address(b), nil
}

func (RSAPSSScheme) ParseSignature(b []byte) (model.Signature, error) {
	if len(b) == 0 {
		return nil, errors.Wrap(ErrSignatureConstruction, "empty rsa signature")
	}
	return model.Signature(b), nil
}

func (RSAPSSScheme) Verify(pub model.Address, msg []byte, sig model.Signature) bool {
	pk := BytesToPublicKey(pub)
	if pk == nil {
		return false
	}
	return Verify(msg, pk, sig)
}

func (k rsaKeyPair) PublicKey() model.Address {
	return model.Address(PublicKeyToBytes(&k.sk.PublicKey))
}

func (k rsaKeyPair) Sign(msg []byte) (model.Signature, error) {
	return Sign(msg, k.sk)
}

func (k rsaKeyPair) Bytes() []byte {
	return x509.MarshalPKCS1PrivateKey(k.sk)
}

// PublicKeyToBytes public key to bytes
func PublicKeyToBytes(pub *rsa.PublicKey) []byte {
	pubASN1, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil
	}
	return pubASN1
}

// BytesToPublicKey bytes to public key, nil if the bytes are not an rsa public key.
func BytesToPublicKey(pub []byte) *rsa.PublicKey {
	ifc, err := x509.ParsePKIXPublicKey(pub)
	if err != nil {
		return nil
	}
	key, ok := ifc.(*rsa.PublicKey)
	if !ok {
		return nil
	}
	return key
}

// Sign a message's SHA256 digest with provided private key.
func Sign(msg []byte, sk *rsa.PrivateKey) (model.Signature, error) {
	digest := chainhash.HashB(msg)

	var opts rsa.PSSOptions
	opts.SaltLength = rsa.PSSSaltLengthAuto
	signature, err := rsa.SignPSS(rand.Reader, sk, crypto.SHA256, digest, &opts)
	if err != nil {
		return nil, err
	}
	return signature, nil
}

// Verify the given signature matches the message.
func Verify(msg []byte, pk *rsa.PublicKey, signature []byte) bool {
	digest := chainhash.HashB(msg)

	var opts rsa.PSSOptions
	opts.SaltLength = rsa.PSSSaltLengthAuto
	return rsa.VerifyPSS(pk, crypto.SHA256, digest, signature, &opts) == nil
}

// SchnorrScheme is BIP-340 over secp256k1. The signed message is the SHA256 digest of the
// payload; public keys are 32 byte x-only keys.
type SchnorrScheme struct{}

type schnorrKeyPair struct {
	sk *btcec.PrivateKey
}

func (SchnorrScheme) Name() string {
	return SCHNORR
}

func (SchnorrScheme) GenerateKey() (KeyPair, error) {
	sk, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return schnorrKeyPair{sk: sk}, nil
}

func (SchnorrScheme) ParsePrivateKey(b []byte) (KeyPair, error) {
	if len(b) != btcec.PrivKeyBytesLen {
		return nil, errors.Wrapf(ErrKeyConstruction, "secp256k1 private key has %d bytes, want %d", len(b), btcec.PrivKeyBytesLen)
	}
	sk, _ := btcec.PrivKeyFromBytes(b)
	return schnorrKeyPair{sk: sk}, nil
}

func (SchnorrScheme) ParsePublicKey(b []byte) (model.Address, error) {
	if _, err := schnorr.ParsePubKey(b); err != nil {
		return nil, errors.Wrap(ErrKeyConstruction, err.Error())
	}
	return model.Address(b), nil
}

func (SchnorrScheme) ParseSignature(b []byte) (model.Signature, error) {
	if _, err := schnorr.ParseSignature(b); err != nil {
		return nil, errors.Wrap(ErrSignatureConstruction, err.Error())
	}
	return model.Signature(b), nil
}

func (SchnorrScheme) Verify(pub model.Address, msg []byte, sig model.Signature) bool {
	pk, err := schnorr.ParsePubKey(pub)
	if err != nil {
		return false
	}
	s, err := schnorr.ParseSignature(sig)
	if err != nil {
		return false
	}
	return s.Verify(chainhash.HashB(msg), pk)
}

func (k schnorrKeyPair) PublicKey() model.Address {
	return model.Address(schnorr.SerializePubKey(k.sk.PubKey()))
}

func (k schnorrKeyPair) Sign(msg []byte) (model.Signature, error) {
	sig, err := schnorr.Sign(k.sk, chainhash.HashB(msg))
	if err != nil {
		return nil, err
	}
	return model.Signature(sig.Serialize()), nil
}

func (k schnorrKeyPair) Bytes() []byte {
	return k.sk.Serialize()
}
