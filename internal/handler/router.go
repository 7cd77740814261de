package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/anyulbade/quota-settlement/internal/middleware"
)

// NewRouter wires the HTTP routes onto a gin engine with the request logger
// and error mapper installed.
func NewRouter(health *HealthHandler, settlements *SettlementHandler, periods *PeriodHandler) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(gin.Recovery())

	router.GET("/health", health.Health)

	api := router.Group("/api/v1")
	{
		api.GET("/settlement-periods", periods.List)
		api.GET("/settlements/:periodKey/summary", settlements.GetSummary)
		api.GET("/settlements/:periodKey/report", settlements.GetReport)
	}
	return router
}
