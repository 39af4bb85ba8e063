package util

import (
	"golang.org/x/crypto/bcrypt"
)

// Cost 12 keeps a single hash noticeably slow, which is the point.
const bcryptCost = 12

// HashPassword derives the bcrypt hash stored on the account. The plain
// password never reaches the database.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword reports whether the candidate password matches the
// stored hash. Any bcrypt error counts as a mismatch.
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
