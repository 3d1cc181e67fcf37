package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

func IsProd() bool {
	return os.Getenv("API_ENV") == "production"
}

// TicketCodeKey is the AES key for e-ticket codes. API_QRC_SECRET holds a
// hex key; without one the key is derived from JWT_SECRET.
func TicketCodeKey() []byte {
	if key, err := hex.DecodeString(os.Getenv("API_QRC_SECRET")); err == nil {
		switch len(key) {
		case 16, 24, 32:
			return key
		}
	}
	sum := sha256.Sum256([]byte(os.Getenv("JWT_SECRET")))
	return sum[:]
}

func EncryptMessage(key []byte, message string) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	return hex.EncodeToString(gcm.Seal(nonce, nonce, []byte(message), nil)), nil
}

func DecryptMessage(key []byte, message string) (*string, error) {
	cipherText, err := hex.DecodeString(message)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(cipherText) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	plain, err := gcm.Open(nil, cipherText[:gcm.NonceSize()], cipherText[gcm.NonceSize():], nil)
	if err != nil {
		return nil, err
	}
	decoded := string(plain)
	return &decoded, nil
}

// EncodeTicketCode produces the opaque reference printed on a paid e-ticket.
func EncodeTicketCode(bookingID, userID uint) (string, error) {
	return EncryptMessage(TicketCodeKey(), fmt.Sprintf("booking:%d:%d", bookingID, userID))
}

func DecodeTicketCode(code string) (bookingID uint, userID uint, err error) {
	msg, err := DecryptMessage(TicketCodeKey(), code)
	if err != nil {
		return 0, 0, err
	}
	parts := strings.Split(*msg, ":")
	if len(parts) != 3 || parts[0] != "booking" {
		return 0, 0, fmt.Errorf("malformed ticket code")
	}
	b, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	u, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return uint(b), uint(u), nil
}
