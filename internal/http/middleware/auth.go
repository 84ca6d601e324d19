package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/Nixie-Tech-LLC/lineup/internal/model"
)

const currentUserKey = "currentUser"

// uses bcrypt to hash a plaintext password.
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// compares a bcrypt hash with the plaintext.
func CheckPassword(hash, plain string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	return err == nil
}

// Credentials is the single static operator login. The password is kept only
// as a bcrypt hash.
type Credentials struct {
	Username     string
	PasswordHash string
}

func NewCredentials(username, password string) (Credentials, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Username: username, PasswordHash: hash}, nil
}

// Check reports whether username and password match.
func (c Credentials) Check(username, password string) bool {
	return username == c.Username && CheckPassword(c.PasswordHash, password)
}

// retrieves *model.Session from Gin context (after JWTMiddleware has run).
func GetCurrentUser(c *gin.Context) (*model.Session, bool) {
	u, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := u.(*model.Session)
	return user, ok
}
