package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"announcements/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db.local",
		Port:     3307,
		User:     "humhub",
		Password: "secret",
		DBName:   "humhub",
	})

	assert.Equal(t, "humhub:secret@tcp(db.local:3307)/humhub?charset=utf8mb4&parseTime=true&loc=Local&clientFoundRows=true", dsn)
}
