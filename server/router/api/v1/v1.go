package v1

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/semaphore"

	"github.com/polychat/polychat/ai/llm"
	"github.com/polychat/polychat/internal/profile"
	"github.com/polychat/polychat/store"
)

// maxConcurrentStreams caps in-flight upstream provider streams. Each stream
// holds an outbound connection for up to the full turn budget.
const maxConcurrentStreams = 32

type APIV1Service struct {
	// Domain Services
	ChatService    *ChatService
	ThreadService  *ThreadService
	SettingService *SettingService

	// Shared Infra
	Profile *profile.Profile
	Store   *store.Store
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store) *APIV1Service {
	service := &APIV1Service{
		Profile: profile,
		Store:   store,
	}

	service.ChatService = &ChatService{
		Store:           store,
		Profile:         profile,
		Streamer:        llm.NewStreamer(llm.StreamerConfig{}),
		streamSemaphore: semaphore.NewWeighted(maxConcurrentStreams),
	}
	service.ThreadService = &ThreadService{Store: store}
	service.SettingService = &SettingService{Store: store}

	return service
}

// RegisterRoutes mounts the REST surface on the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	apiGroup := echoServer.Group("/api/v1")
	apiGroup.Use(middleware.CORS())

	apiGroup.POST("/chat", s.ChatService.Chat)

	apiGroup.POST("/threads", s.ThreadService.CreateThread)
	apiGroup.GET("/threads", s.ThreadService.ListThreads)
	apiGroup.GET("/threads/:id", s.ThreadService.GetThread)
	apiGroup.PATCH("/threads/:id", s.ThreadService.UpdateThread)
	apiGroup.DELETE("/threads/:id", s.ThreadService.DeleteThread)
	apiGroup.GET("/threads/:id/messages", s.ThreadService.ListMessages)
	apiGroup.POST("/threads/:id/messages", s.ThreadService.AppendMessage)

	apiGroup.GET("/settings/:key", s.SettingService.GetSetting)
	apiGroup.PUT("/settings/:key", s.SettingService.UpsertSetting)
}
