package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/selimozcann/StoreHunter/internal/devices"
	"github.com/selimozcann/StoreHunter/internal/model"
	"github.com/selimozcann/StoreHunter/internal/store"
)

type builtInDevice struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Platform      model.Platform `json:"platform"`
	ExpectedStore model.Store    `json:"expectedStore"`
}

type customDevice struct {
	model.DeviceProfile
	ExpectedStore model.Store `json:"expectedStore"`
}

func toCustom(p model.DeviceProfile) customDevice {
	return customDevice{DeviceProfile: p, ExpectedStore: p.ExpectedStore()}
}

func (s *Server) listDevicesHandler(c *gin.Context) {
	all := devices.All()
	builtIn := make([]builtInDevice, len(all))
	for i, d := range all {
		builtIn[i] = builtInDevice{ID: d.ID, Name: d.Name, Platform: d.Platform, ExpectedStore: d.ExpectedStore()}
	}

	entries, err := s.custom.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	custom := make([]customDevice, len(entries))
	for i, e := range entries {
		custom[i] = toCustom(e.Value)
	}

	c.JSON(http.StatusOK, gin.H{
		"builtIn": builtIn,
		"custom":  custom,
		"total":   len(builtIn) + len(custom),
	})
}

func (s *Server) addCustomDeviceHandler(c *gin.Context) {
	var req devices.CustomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	p, err := devices.NewCustom(req)
	if errors.Is(err, devices.ErrMissingFields) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingFields})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.custom.Set(c.Request.Context(), p.ID, p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.logger.Info("custom device added", "id", p.ID, "name", p.Name, "platform", p.Platform)
	c.JSON(http.StatusOK, gin.H{"success": true, "device": toCustom(p)})
}

func (s *Server) deleteCustomDeviceHandler(c *gin.Context) {
	err := s.custom.Delete(c.Request.Context(), c.Param("deviceId"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": errDeviceNotFound})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
