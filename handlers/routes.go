package handlers

import (
	"net/http"

	"github.com/abhissng/nhwr-mediator/adapters/gin/server"
	"github.com/abhissng/nhwr-mediator/utils/constant"
	"github.com/abhissng/nhwr-mediator/utils/helpers"
	"github.com/gin-gonic/gin"
)

// Routes is the route table of the mediator. The optional :field and :value
// segments of getPractitioners are registered as three routes.
func (h *Handlers) Routes(middlewares ...gin.HandlerFunc) []server.RouteGroupConfig {
	return []server.RouteGroupConfig{
		server.NewRouteGroupConfig(constant.APIVersion1Group, middlewares, []server.RouteConfig{
			server.NewRouteConfig(http.MethodPost, constant.UpdatePractitioner, h.ForwardUpdate),
			server.NewRouteConfig(http.MethodGet, constant.GetPractitioners, h.FetchRecords),
			server.NewRouteConfig(http.MethodGet, constant.GetPractitioners+"/:field", h.FetchRecords),
			server.NewRouteConfig(http.MethodGet, constant.GetPractitioners+"/:field/:value", h.FetchRecords),
		}),
		server.NewRouteGroupConfig("", nil, []server.RouteConfig{
			server.NewRouteConfig(http.MethodGet, constant.HealthEndpoint, h.Health),
		}),
	}
}

// Health reports liveness, the lifecycle state and the configuration version.
func (h *Handlers) Health(c *gin.Context) {
	state := "unknown"
	if h.state != nil {
		state = h.state()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"service":       helpers.GetServiceName(),
		"state":         state,
		"configVersion": h.store.Version(),
	})
}
