package services

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/palaver-im/palaver/pkg/internal/database"
	"github.com/palaver-im/palaver/pkg/internal/models"
)

func GetAccount(id uint) (models.Account, error) {
	var account models.Account
	if err := database.C.Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account, fmt.Errorf("%w: account %d", ErrNotFound, id)
		}
		return account, err
	}
	return account, nil
}

func GetAccountWithName(name string) (models.Account, error) {
	var account models.Account
	if err := database.C.Where("name = ?", name).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account, fmt.Errorf("%w: account %s", ErrNotFound, name)
		}
		return account, err
	}
	return account, nil
}

// Authenticate resolves a bearer credential into an account. Token issuance
// belongs to the identity provider; only verification happens here.
func Authenticate(token string) (models.Account, error) {
	var account models.Account
	var claims jwt.RegisteredClaims

	out, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(viper.GetString("security.jwt_secret")), nil
	})
	if err != nil || !out.Valid {
		return account, fmt.Errorf("%w: invalid credential", ErrUnauthorized)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return account, fmt.Errorf("%w: malformed subject", ErrUnauthorized)
	}

	return GetAccount(uint(id))
}
