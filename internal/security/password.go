package security

import "golang.org/x/crypto/bcrypt"

// bcrypt ignores everything past 72 bytes, longer inputs are rejected before hashing
const MaxPasswordBytes = 72

// HashPasswordWithCost hashes a plain text password with bcrypt.
// Costs below bcrypt.MinCost are raised to bcrypt.DefaultCost by the library.
func HashPasswordWithCost(plain string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// helper that compares a bcrypt hash with a plaintext password.

func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
