package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/polychat/polychat/store"
)

type ThreadService struct {
	Store *store.Store
}

type threadPayload struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CreatedAt    int64  `json:"createdAt"`
	UpdatedAt    int64  `json:"updatedAt"`
	MessageCount int64  `json:"messageCount"`
}

type messagePayload struct {
	ID        string `json:"id"`
	ThreadID  string `json:"threadId"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
}

type createThreadRequest struct {
	Title string `json:"title,omitempty"`
}

type updateThreadRequest struct {
	Title string `json:"title"`
}

type appendMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (s *ThreadService) CreateThread(c echo.Context) error {
	request := &createThreadRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest, &errorResponse{Error: msgInvalidRequest})
	}

	thread, err := s.Store.CreateThread(c.Request().Context(), &store.Thread{Title: request.Title})
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, convertThread(thread))
}

func (s *ThreadService) ListThreads(c echo.Context) error {
	threads, err := s.Store.ListThreads(c.Request().Context(), &store.FindThread{})
	if err != nil {
		return replyError(c, err)
	}

	payload := make([]*threadPayload, len(threads))
	for i, thread := range threads {
		payload[i] = convertThread(thread)
	}
	return c.JSON(http.StatusOK, payload)
}

func (s *ThreadService) GetThread(c echo.Context) error {
	thread, err := s.Store.GetThread(c.Request().Context(), c.Param("id"))
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, convertThread(thread))
}

func (s *ThreadService) UpdateThread(c echo.Context) error {
	request := &updateThreadRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest, &errorResponse{Error: msgInvalidRequest})
	}
	if request.Title == "" {
		return c.JSON(http.StatusBadRequest, &errorResponse{Error: msgInvalidRequest})
	}

	thread, err := s.Store.UpdateThread(c.Request().Context(), &store.UpdateThread{
		ID:    c.Param("id"),
		Title: &request.Title,
	})
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, convertThread(thread))
}

func (s *ThreadService) DeleteThread(c echo.Context) error {
	if err := s.Store.DeleteThread(c.Request().Context(), &store.DeleteThread{ID: c.Param("id")}); err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"deleted": true})
}

func (s *ThreadService) ListMessages(c echo.Context) error {
	ctx := c.Request().Context()
	threadID := c.Param("id")

	// History for an unknown thread is a 404, not an empty list.
	if _, err := s.Store.GetThread(ctx, threadID); err != nil {
		return replyError(c, err)
	}

	messages, err := s.Store.ListMessages(ctx, &store.FindMessage{ThreadID: &threadID})
	if err != nil {
		return replyError(c, err)
	}

	payload := make([]*messagePayload, len(messages))
	for i, message := range messages {
		payload[i] = convertMessage(message)
	}
	return c.JSON(http.StatusOK, payload)
}

// AppendMessage persists one message; the UI uses it to record the user's
// prompt before the streamed turn starts.
func (s *ThreadService) AppendMessage(c echo.Context) error {
	request := &appendMessageRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest, &errorResponse{Error: msgInvalidRequest})
	}
	role := store.Role(request.Role)
	if !role.IsValid() || request.Content == "" {
		return c.JSON(http.StatusBadRequest, &errorResponse{Error: msgInvalidRequest})
	}

	message, err := s.Store.AppendMessage(c.Request().Context(), &store.Message{
		ThreadID: c.Param("id"),
		Role:     role,
		Content:  request.Content,
	})
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, convertMessage(message))
}

func convertThread(thread *store.Thread) *threadPayload {
	return &threadPayload{
		ID:           thread.ID,
		Title:        thread.Title,
		CreatedAt:    thread.CreatedTs,
		UpdatedAt:    thread.UpdatedTs,
		MessageCount: thread.MessageCount,
	}
}

func convertMessage(message *store.Message) *messagePayload {
	return &messagePayload{
		ID:        message.ID,
		ThreadID:  message.ThreadID,
		Role:      string(message.Role),
		Content:   message.Content,
		CreatedAt: message.CreatedTs,
	}
}
