package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchema(t *testing.T) {
	assert.Contains(t, Schema, "CREATE TABLE IF NOT EXISTS candidates")
	for _, column := range []string{"seq", "final_score", "resume_meta", "questions", "answers", "scores", "messages"} {
		assert.Contains(t, Schema, column)
	}
	assert.Contains(t, Schema, "CREATE UNIQUE INDEX IF NOT EXISTS candidates_email_key ON candidates (email) WHERE email <> ''")
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://%zz")
	assert.ErrorContains(t, err, "failed to connect to database")
}

func TestClose_NilPool(t *testing.T) {
	db := &DB{}
	assert.NotPanics(t, db.Close)
}
