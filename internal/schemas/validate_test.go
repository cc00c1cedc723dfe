package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Questions(t *testing.T) {
	valid := `[{"id":"q1","difficulty":"easy","text":"What is a closure?"},{"difficulty":"hard","text":"Design a cache."}]`
	assert.NoError(t, Validate(QuestionsSchema, valid))

	err := Validate(QuestionsSchema, `[{"id":"q1","difficulty":"easy"}]`)
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, QuestionsSchema, verr.Schema)
	assert.NotEmpty(t, verr.Errors)

	assert.Error(t, Validate(QuestionsSchema, `{"questions": []}`), "object is not an array")
}

func TestValidate_Scoring(t *testing.T) {
	assert.NoError(t, Validate(ScoringSchema, `{"scores":[{"questionId":"q1","score":"seven","feedback":null}],"summary":"ok"}`),
		"non-numeric scores are coerced later, not rejected")
	assert.NoError(t, Validate(ScoringSchema, `{}`))

	err := Validate(ScoringSchema, `{"scores":[{"score":5}]}`)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Error(), "questionId")
}

func TestValidate_MalformedDocument(t *testing.T) {
	err := Validate(ScoringSchema, `{"scores": [`)
	var lerr *SchemaLoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, ScoringSchema, lerr.Name)
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("missing.schema.json", `{}`)
	var lerr *SchemaLoadError
	assert.True(t, errors.As(err, &lerr))
}
