package database

import (
	"bytes"
	"context"
	stdlog "log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type lookupRow struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLogLevel("info"))
	assert.Equal(t, gormlogger.Warn, GormLogLevel(""))
	assert.Equal(t, gormlogger.Error, GormLogLevel("error"))
}

func TestGormLoggerConfig_IgnoresRecordNotFound(t *testing.T) {
	cfg := GormLoggerConfig("debug")
	assert.True(t, cfg.IgnoreRecordNotFoundError)
	assert.Equal(t, gormlogger.Info, cfg.LogLevel)

	var buf bytes.Buffer
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.New(stdlog.New(&buf, "", 0), GormLoggerConfig("error")),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&lookupRow{}))

	var row lookupRow
	err = db.WithContext(context.Background()).First(&row, 42).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NotContains(t, buf.String(), "record not found")
}
