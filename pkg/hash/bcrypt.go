package hash

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost is fixed so stored hashes stay comparable across deployments.
const Cost = bcrypt.DefaultCost

func HashPassword(p string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(p), Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(bytes), nil
}

func CheckPassword(hashed, plain string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
