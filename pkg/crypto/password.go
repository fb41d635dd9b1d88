package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12
	// ReferralCodeLength is the length of generated referral codes
	ReferralCodeLength = 8
)

// unambiguous uppercase alphabet, no 0/O or 1/I
const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var (
	bcryptGenerateFromPassword = bcrypt.GenerateFromPassword
	randomRead                 = rand.Read
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcryptGenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword compares a password with a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateReferralCode returns a random uppercase referral code
func GenerateReferralCode() (string, error) {
	buf := make([]byte, ReferralCodeLength)
	if _, err := randomRead(buf); err != nil {
		return "", fmt.Errorf("failed to generate referral code: %w", err)
	}
	for i, b := range buf {
		buf[i] = referralAlphabet[int(b)%len(referralAlphabet)]
	}
	return string(buf), nil
}
