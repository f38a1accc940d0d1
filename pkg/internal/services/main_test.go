package services_test

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/palaver-im/palaver/pkg/internal/database"
	"github.com/palaver-im/palaver/pkg/internal/models"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	database.C = db
	if err := database.RunMigration(db); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

var accountSerial atomic.Uint64

func newAccount(t *testing.T, name string) models.Account {
	t.Helper()

	account := models.Account{
		Name:  fmt.Sprintf("%s-%d", name, accountSerial.Add(1)),
		Nick:  name,
		Email: fmt.Sprintf("%s@example.com", name),
	}
	require.NoError(t, database.C.Create(&account).Error)

	return account
}
