package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-assistant/internal/fields"
	"github.com/jonathan/interview-assistant/internal/types"
)

func lastMessages(s *Session, n int) []string {
	msgs := s.State().Messages
	out := make([]string, 0, n)
	for _, m := range msgs[len(msgs)-n:] {
		out = append(out, m.Text)
	}
	return out
}

func TestExtractedMessage(t *testing.T) {
	assert.Equal(t, "I found — Name: Jane Doe, Email: —, Phone: —.", ExtractedMessage("Jane Doe", "", ""))
}

func TestSaveProfile_EmptyExtractionPromptsForName(t *testing.T) {
	s := NewSession(Options{})
	s.RecordExtraction("", "", "")

	missing := s.SaveProfile(types.CandidateProfile{})

	assert.Equal(t, []string{types.FieldName, types.FieldEmail, types.FieldPhone}, missing)
	assert.Equal(t, []string{
		ExtractedMessage("", "", ""),
		"Saved. I still need: name, email, phone.",
		fields.PromptFor(types.FieldName),
	}, lastMessages(s, 3))
}

func TestSaveProfile_AllCaptured(t *testing.T) {
	s := NewSession(Options{})
	missing := s.SaveProfile(completeProfile())

	assert.Empty(t, missing)
	assert.Equal(t, []string{AllCapturedMessage}, lastMessages(s, 1))
}

func TestSaveProfile_DoesNotOverwriteCapturedFields(t *testing.T) {
	s := NewSession(Options{})
	s.SaveProfile(types.CandidateProfile{Name: "Jane Doe"})
	s.SaveProfile(types.CandidateProfile{Name: "Someone Else", Email: "jane@example.com"})

	p := s.State().Profile
	assert.Equal(t, "Jane Doe", p.Name)
	assert.Equal(t, "jane@example.com", p.Email)
	assert.Equal(t, []string{types.FieldPhone}, s.State().MissingFields)
}

func TestSendChat_InvalidEmailReprompts(t *testing.T) {
	s := NewSession(Options{})
	s.SaveProfile(types.CandidateProfile{Name: "Jane Doe"})
	before := s.State().Profile

	accepted := s.SendChat("jane@example")

	assert.False(t, accepted)
	assert.Equal(t, before, s.State().Profile)
	assert.Equal(t, []string{types.FieldEmail, types.FieldPhone}, s.State().MissingFields)
	assert.Equal(t, []string{
		"jane@example",
		"That doesn't look like a valid email. " + fields.PromptFor(types.FieldEmail),
	}, lastMessages(s, 2))
}

func TestSendChat_ValidEmailAccepted(t *testing.T) {
	s := NewSession(Options{})
	s.SaveProfile(types.CandidateProfile{Name: "Jane Doe"})

	accepted := s.SendChat("jane@example.com")

	assert.True(t, accepted)
	st := s.State()
	assert.Equal(t, "jane@example.com", st.Profile.Email)
	assert.Equal(t, []string{types.FieldPhone}, st.MissingFields)
	assert.Equal(t, []string{
		"Got it. Still need: phone.",
		fields.PromptFor(types.FieldPhone),
	}, lastMessages(s, 2))
}

func TestSendChat_CompletesLoop(t *testing.T) {
	s := NewSession(Options{})
	s.SaveProfile(types.CandidateProfile{})

	assert.False(t, s.SendChat("Jo"))
	assert.True(t, s.SendChat("  Jane Doe "))
	assert.True(t, s.SendChat("jane@example.com"))
	assert.False(t, s.SendChat("call me"))
	assert.True(t, s.SendChat("my number is +44 207 183 8750"))

	st := s.State()
	assert.Equal(t, "Jane Doe", st.Profile.Name)
	assert.Empty(t, st.MissingFields)
	assert.True(t, st.Profile.Complete())
	assert.Equal(t, []string{DetailsDoneMessage}, lastMessages(s, 1))
}

func TestSendChat_NothingMissing(t *testing.T) {
	s := NewSession(Options{})
	s.SaveProfile(completeProfile())
	count := len(s.State().Messages)

	assert.False(t, s.SendChat("hello"))

	msgs := s.State().Messages
	require.Len(t, msgs, count+1)
	assert.Equal(t, types.ChatMessage{Role: types.RoleUser, Text: "hello"}, msgs[count])
}
