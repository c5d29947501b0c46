package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     SignupRequest
		wantErr bool
	}{
		{"valid", SignupRequest{Email: "jane@example.com", Password: "password123", FullName: "Jane"}, false},
		{"no name", SignupRequest{Email: "jane@example.com", Password: "password123"}, false},
		{"bad email", SignupRequest{Email: "jane", Password: "password123"}, true},
		{"short password", SignupRequest{Email: "jane@example.com", Password: "short"}, true},
		{"long password", SignupRequest{Email: "jane@example.com", Password: strings.Repeat("a", 73)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoginRequest_Validate(t *testing.T) {
	assert.NoError(t, (&LoginRequest{Email: "a@b.co", Password: "x"}).Validate())
	assert.Error(t, (&LoginRequest{Email: "a@b.co"}).Validate())
}

func TestProfileRequest_Validate(t *testing.T) {
	valid := ProfileRequest{Email: "a@b.co", Phone: "555", LinkedIn: "https://linkedin.com/in/a"}
	assert.NoError(t, valid.Validate())

	missing := valid
	missing.LinkedIn = ""
	assert.Error(t, missing.Validate())
}

func TestWatchRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     WatchRequest
		wantErr bool
	}{
		{"start", WatchRequest{Action: WatchStart, YAMLContent: "cv: {}"}, false},
		{"update", WatchRequest{Action: WatchUpdate, YAMLContent: "cv: {}"}, false},
		{"stop without content", WatchRequest{Action: WatchStop}, false},
		{"start without content", WatchRequest{Action: WatchStart}, true},
		{"unknown action", WatchRequest{Action: "restart", YAMLContent: "cv: {}"}, true},
		{"missing action", WatchRequest{YAMLContent: "cv: {}"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRenderRequest_Validate(t *testing.T) {
	assert.NoError(t, (&RenderRequest{YAMLContent: "cv: {}"}).Validate())
	assert.NoError(t, (&RenderRequest{YAMLContent: "cv: {}", Theme: "sb2nov"}).Validate())
	assert.Error(t, (&RenderRequest{YAMLContent: "cv: {}", Theme: "../etc"}).Validate())
	assert.Error(t, (&RenderRequest{}).Validate())
}

func TestRenderRequest_JSONNames(t *testing.T) {
	var req RenderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"yamlContent":"cv: {}","theme":"classic"}`), &req))
	assert.Equal(t, "cv: {}", req.YAMLContent)
	assert.Equal(t, "classic", req.Theme)
}

func TestAuthResponse_JSON(t *testing.T) {
	data, err := json.Marshal(AuthResponse{AccessToken: "t", TokenType: TokenTypeBearer, User: &UserResponse{Email: "a@b.co"}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"access_token":"t"`)
	assert.Contains(t, string(data), `"token_type":"bearer"`)
	assert.Contains(t, string(data), `"email_confirmed":false`)
}

func TestRevampForm_Validate(t *testing.T) {
	valid := RevampForm{
		Email:    "jane@example.com",
		Phone:    "+1 555 0100",
		LinkedIn: "https://linkedin.com/in/jane",
		JobRole:  "Backend Engineer",
	}
	assert.NoError(t, valid.Validate())

	noRole := valid
	noRole.JobRole = ""
	assert.Error(t, noRole.Validate())

	badEmail := valid
	badEmail.Email = "jane"
	assert.Error(t, badEmail.Validate())
}

func TestWatchResponse_JSON(t *testing.T) {
	pid := 4242
	data, err := json.Marshal(WatchResponse{Status: "Watch started", ProcessID: &pid, OutputDir: "/tmp/x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"Watch started","processId":4242,"outputDir":"/tmp/x"}`, string(data))

	data, err = json.Marshal(WatchResponse{Status: "Watch stopped"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"Watch stopped"}`, string(data))
}
