package signer

import (
	"fmt"
	"os"

	"github.com/sigmaSd/rustman-database/internal/utils"
)

// SignatureSuffix is appended to a database path to name its signature
const SignatureSuffix = ".asc"

// Signer interface for signing database snapshots
type Signer interface {
	// SignDetached creates an armored detached signature of data
	SignDetached(data []byte) ([]byte, error)

	// VerifyDetached checks an armored detached signature of data
	VerifyDetached(data, signature []byte) error

	// GetPublicKey returns the public key
	GetPublicKey() ([]byte, error)
}

// SignFile writes a detached signature of path next to it and returns the
// signature path
func SignFile(s Signer, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	sig, err := s.SignDetached(data)
	if err != nil {
		return "", err
	}

	sigPath := path + SignatureSuffix
	if err := utils.WriteFileAtomic(sigPath, sig, 0644); err != nil {
		return "", fmt.Errorf("failed to write signature: %w", err)
	}
	return sigPath, nil
}

// VerifyFile checks path against its detached signature
func VerifyFile(s Signer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	sig, err := os.ReadFile(path + SignatureSuffix)
	if err != nil {
		return err
	}
	return s.VerifyDetached(data, sig)
}
