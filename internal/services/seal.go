package services

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// sealer encrypts bearer tokens before they are written to SQLite.
type sealer struct {
	key [32]byte
}

func newSealer(secret string) (*sealer, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}
	s := &sealer{}
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("mbaayadmin session token v1"))
	if _, err := io.ReadFull(r, s.key[:]); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *sealer) seal(plain string) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key), nil
}

func (s *sealer) open(box []byte) (string, error) {
	if len(box) < nonceSize+secretbox.Overhead {
		return "", errors.New("sealed token too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	out, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", errors.New("sealed token does not open with this secret")
	}
	return string(out), nil
}
