package v1

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.request(http.MethodGet, "/api/v1/settings/model-preferences", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), msgSettingNotFound)
}

func TestSettingRoundTrip(t *testing.T) {
	env := newTestEnv(t, nil)

	value := `{"defaultModel":"gemini","enabledModels":{"openai":true,"groq":false}}`
	rec := env.request(http.MethodPut, "/api/v1/settings/model-preferences", value, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(http.MethodGet, "/api/v1/settings/model-preferences", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := &settingPayload{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), payload))
	assert.Equal(t, "model-preferences", payload.Key)
	assert.JSONEq(t, value, string(payload.Value))
}

func TestSettingLastWriteWins(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.request(http.MethodPut, "/api/v1/settings/model-preferences", `{"defaultModel":"openai"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.request(http.MethodPut, "/api/v1/settings/model-preferences", `{"defaultModel":"cohere"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(http.MethodGet, "/api/v1/settings/model-preferences", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := &settingPayload{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), payload))
	assert.JSONEq(t, `{"defaultModel":"cohere"}`, string(payload.Value))
}

func TestSettingValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	// Malformed JSON is rejected for any key.
	rec := env.request(http.MethodPut, "/api/v1/settings/anything", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// model-preferences must reference known providers.
	rec = env.request(http.MethodPut, "/api/v1/settings/model-preferences", `{"defaultModel":"anthropic"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(http.MethodPut, "/api/v1/settings/model-preferences", `{"enabledModels":{"openai":true,"nope":true}}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// enabledModels is a provider->bool map, not a list.
	rec = env.request(http.MethodPut, "/api/v1/settings/model-preferences", `{"enabledModels":["openai"]}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingEnabledModelsMapShape(t *testing.T) {
	env := newTestEnv(t, nil)

	value := `{"enabledModels":{"openai":true,"gemini":false,"cerebras":true}}`
	rec := env.request(http.MethodPut, "/api/v1/settings/model-preferences", value, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(http.MethodGet, "/api/v1/settings/model-preferences", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := &settingPayload{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), payload))
	assert.JSONEq(t, value, string(payload.Value))
}

func TestSettingOpaqueKey(t *testing.T) {
	env := newTestEnv(t, nil)

	// Other keys are stored verbatim with no shape validation. The UI keeps
	// its API-key bundle here; values are never logged.
	value := `{"theme":"dark","fontSize":14}`
	rec := env.request(http.MethodPut, "/api/v1/settings/ui-preferences", value, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(http.MethodGet, "/api/v1/settings/ui-preferences", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := &settingPayload{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), payload))
	assert.JSONEq(t, value, string(payload.Value))
}
