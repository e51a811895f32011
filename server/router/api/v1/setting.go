package v1

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/polychat/polychat/ai/llm"
	"github.com/polychat/polychat/store"
)

// SettingKeyModelPreferences is the key the UI uses for its model selection.
// It is the only key with a validated shape; everything else is opaque JSON.
const SettingKeyModelPreferences = "model-preferences"

type SettingService struct {
	Store *store.Store
}

type settingPayload struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// ModelPreferences mirrors the UI's model selection setting. EnabledModels
// maps a provider name to whether the UI offers it.
type ModelPreferences struct {
	DefaultModel     string          `json:"defaultModel,omitempty"`
	SuggestionsModel string          `json:"suggestionsModel,omitempty"`
	FollowUpModel    string          `json:"followUpModel,omitempty"`
	EnabledModels    map[string]bool `json:"enabledModels,omitempty"`
}

func (s *SettingService) GetSetting(c echo.Context) error {
	setting, err := s.Store.GetSetting(c.Request().Context(), &store.FindSetting{Key: c.Param("key")})
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, &settingPayload{
		Key:   setting.Key,
		Value: json.RawMessage(setting.Value),
	})
}

// UpsertSetting stores the request body verbatim under the key, last write
// wins. Values are opaque apart from a JSON well-formedness check; setting
// values are never logged, the UI keeps its API-key bundle here.
func (s *SettingService) UpsertSetting(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil || !json.Valid(body) {
		return c.JSON(http.StatusBadRequest, &errorResponse{Error: msgInvalidRequest})
	}

	key := c.Param("key")
	if key == SettingKeyModelPreferences {
		if err := validateModelPreferences(body); err != nil {
			return c.JSON(http.StatusBadRequest, &errorResponse{Error: msgInvalidRequest})
		}
	}

	setting, err := s.Store.UpsertSetting(c.Request().Context(), &store.Setting{
		Key:   key,
		Value: string(body),
	})
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, &settingPayload{
		Key:   setting.Key,
		Value: json.RawMessage(setting.Value),
	})
}

func validateModelPreferences(body []byte) error {
	preferences := &ModelPreferences{}
	if err := json.Unmarshal(body, preferences); err != nil {
		return err
	}

	check := func(name string) error {
		if name == "" {
			return nil
		}
		if !llm.Supported(llm.NormalizeProvider(name)) {
			return llm.ErrUnsupportedProvider
		}
		return nil
	}
	if err := check(preferences.DefaultModel); err != nil {
		return err
	}
	if err := check(preferences.SuggestionsModel); err != nil {
		return err
	}
	if err := check(preferences.FollowUpModel); err != nil {
		return err
	}
	for name := range preferences.EnabledModels {
		if err := check(name); err != nil {
			return err
		}
	}
	return nil
}
