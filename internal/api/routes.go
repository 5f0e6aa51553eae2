package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.POST("/import", handler.ImportCSV)
		api.GET("/search", handler.GetSearchState)
		api.PUT("/search", handler.UpdateSearchState)
		api.GET("/projects", handler.GetProjects)
		api.GET("/projects/geojson", handler.GetProjectsGeoJSON)
		api.GET("/stats", handler.GetStats)
		api.GET("/places", handler.GetPlaces)
		api.GET("/places/geojson", handler.GetPlacesGeoJSON)
		api.GET("/export/csv", handler.ExportCSV)
	}
}
