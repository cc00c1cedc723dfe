package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticClaims string

func (c staticClaims) GetSubject() (string, error) { return string(c), nil }

type mockValidator struct {
	valid map[string]string
}

func (m *mockValidator) ValidateToken(token string) (SubjectGetter, error) {
	subject, ok := m.valid[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return staticClaims(subject), nil
}

func TestAuthMiddleware(t *testing.T) {
	validator := &mockValidator{valid: map[string]string{"good": "interviewer", "anon": ""}}

	var gotSubject string
	handler := AuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := GetSubject(r)
		require.NoError(t, err)
		gotSubject = subject
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer good", http.StatusNoContent},
		{"lowercase scheme", "bearer good", http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"extra parts", "Bearer good extra", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
		{"empty subject", "Bearer anon", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSubject = ""
			req := httptest.NewRequest(http.MethodGet, "/roster", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, "interviewer", gotSubject)
			} else {
				assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestGetSubject_Missing(t *testing.T) {
	_, err := GetSubject(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Error(t, err)
}
