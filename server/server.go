package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/skyvolt/fleetmon/api"
	"github.com/skyvolt/fleetmon/model"
	"github.com/skyvolt/fleetmon/pkg/logger"
	"github.com/skyvolt/fleetmon/repo"
	syncer "github.com/skyvolt/fleetmon/sync"
)

// Server exposes the read surface over the fleet plus sync and alert
// lifecycle operations. All heavy work stays in the background jobs; the
// sync trigger only kicks them off.
type Server struct {
	router       *gin.Engine
	server       *http.Server
	port         int
	credRepo     repo.CredentialRepo
	stationRepo  repo.StationRepo
	inverterRepo repo.InverterRepo
	telemetry    repo.TelemetryRepo
	alertRepo    repo.AlertRepo
	synchronizer *syncer.Synchronizer
	logger       zerolog.Logger
}

type Config struct {
	Port         int
	CredRepo     repo.CredentialRepo
	StationRepo  repo.StationRepo
	InverterRepo repo.InverterRepo
	Telemetry    repo.TelemetryRepo
	AlertRepo    repo.AlertRepo
	Synchronizer *syncer.Synchronizer
}

func New(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:       router,
		port:         cfg.Port,
		credRepo:     cfg.CredRepo,
		stationRepo:  cfg.StationRepo,
		inverterRepo: cfg.InverterRepo,
		telemetry:    cfg.Telemetry,
		alertRepo:    cfg.AlertRepo,
		synchronizer: cfg.Synchronizer,
		logger:       zerolog.New(logger.NewWriter("server.log")).With().Timestamp().Caller().Logger(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/brands", s.brandsHandler)

		v1.GET("/credentials", s.listCredentialsHandler)
		v1.POST("/credentials", s.createCredentialHandler)
		v1.DELETE("/credentials/:id", s.deleteCredentialHandler)
		v1.POST("/credentials/:id/sync", s.syncCredentialHandler)

		v1.GET("/stations", s.listStationsHandler)
		v1.GET("/stations/:id", s.getStationHandler)
		v1.GET("/stations/:id/inverters", s.listStationInvertersHandler)

		v1.GET("/inverters/:id", s.getInverterHandler)
		v1.GET("/inverters/:id/datapoints", s.listDataPointsHandler)
		v1.GET("/inverters/:id/daily-stats", s.listDailyStatsHandler)

		v1.GET("/alerts", s.listAlertsHandler)
		v1.POST("/alerts/:id/acknowledge", s.acknowledgeAlertHandler)
		v1.POST("/alerts/:id/resolve", s.resolveAlertHandler)

		v1.POST("/sync", s.syncAllHandler)
	}
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.router,
	}

	s.logger.Info().Int("port", s.port).Msg("Server::Start() - listening")
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

func (s *Server) brandsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"brands": api.Brands()})
}

func (s *Server) listCredentialsHandler(c *gin.Context) {
	credentials, err := s.credRepo.FindAllActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, credentials)
}

type createCredentialRequest struct {
	BrandCode string `json:"brand_code" binding:"required"`
	AccountID string `json:"account_id" binding:"required"`
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	Owner     string `json:"owner"`
}

func (s *Server) createCredentialHandler(c *gin.Context) {
	var req createCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	credential := &model.Credential{
		BrandCode: req.BrandCode,
		AccountID: req.AccountID,
		APIKey:    req.APIKey,
		APISecret: req.APISecret,
		Owner:     req.Owner,
		Active:    true,
	}
	if _, err := api.NewAdapter(credential); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.credRepo.Create(credential); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, credential)
}

func (s *Server) deleteCredentialHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := s.credRepo.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) syncCredentialHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	credential, err := s.credRepo.FindOne(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	go func() {
		if err := s.synchronizer.SyncCredential(credential, time.Now()); err != nil {
			s.logger.Error().Err(err).Int64("credential_id", credential.ID).Msg("Server::syncCredentialHandler() - sync failed")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "sync started"})
}

func (s *Server) syncAllHandler(c *gin.Context) {
	go func() {
		if err := s.synchronizer.Run(); err != nil {
			s.logger.Error().Err(err).Msg("Server::syncAllHandler() - sync cycle failed")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "sync cycle started"})
}

func (s *Server) listStationsHandler(c *gin.Context) {
	if credentialIDStr := c.Query("credential_id"); credentialIDStr != "" {
		credentialID, err := strconv.ParseInt(credentialIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credential_id"})
			return
		}

		stations, err := s.stationRepo.FindByCredential(credentialID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stations)
		return
	}

	stations, err := s.stationRepo.FindAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stations)
}

func (s *Server) getStationHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	station, err := s.stationRepo.FindOne(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, station)
}

func (s *Server) listStationInvertersHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	inverters, err := s.inverterRepo.FindByStation(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, inverters)
}

func (s *Server) getInverterHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	inverter, err := s.inverterRepo.FindOne(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, inverter)
}

func (s *Server) listDataPointsHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	to := time.Now().UTC()
	from := to.Add(-24 * time.Hour)

	if fromStr := c.Query("from"); fromStr != "" {
		parsed, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' timestamp"})
			return
		}
		from = parsed
	}
	if toStr := c.Query("to"); toStr != "" {
		parsed, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' timestamp"})
			return
		}
		to = parsed
	}

	points, err := s.telemetry.FindRange(id, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, points)
}

func (s *Server) listDailyStatsHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -30)

	if fromStr := c.Query("from"); fromStr != "" {
		parsed, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' date"})
			return
		}
		from = parsed
	}
	if toStr := c.Query("to"); toStr != "" {
		parsed, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' date"})
			return
		}
		to = parsed
	}

	stats, err := s.telemetry.FindDailyStats(id, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) listAlertsHandler(c *gin.Context) {
	filter := &repo.AlertFilter{
		Type:       c.Query("type"),
		Severity:   c.Query("severity"),
		ActiveOnly: c.Query("active") == "true",
	}

	if stationIDStr := c.Query("station_id"); stationIDStr != "" {
		stationID, err := strconv.ParseInt(stationIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid station_id"})
			return
		}
		filter.StationID = &stationID
	}
	if inverterIDStr := c.Query("inverter_id"); inverterIDStr != "" {
		inverterID, err := strconv.ParseInt(inverterIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inverter_id"})
			return
		}
		filter.InverterID = &inverterID
	}

	alerts, err := s.alertRepo.FindAll(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, alerts)
}

type acknowledgeRequest struct {
	By string `json:"by" binding:"required"`
}

func (s *Server) acknowledgeAlertHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req acknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.alertRepo.Acknowledge(id, req.By, time.Now()); err != nil {
		if err == repo.ErrAlertNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "alert acknowledged"})
}

type resolveRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) resolveAlertHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.alertRepo.Resolve(id, req.Notes, time.Now()); err != nil {
		if err == repo.ErrAlertNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "alert resolved"})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
