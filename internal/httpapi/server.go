package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MarkoPoloResearchLab/roomdesk/pkg/booking"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Run boots the HTTP boundary and blocks until ctx is cancelled or the
// server fails.
func Run(ctx context.Context, cfg Config, service *booking.Service, logger *zap.Logger) error {
	handler := &httpHandler{
		logger:  logger,
		service: service,
		cfg:     cfg,
	}

	router := setupRouter(cfg, handler)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("roomdesk listening", zap.String("addr", cfg.ListenAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func setupRouter(cfg Config, handler *httpHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg)))

	router.GET("/", handler.handleGreeting)
	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/rooms", handler.handleListRooms)
	router.POST("/rooms", handler.handleCreateRoom)
	router.PUT("/rooms/:id", handler.handleReserve)
	router.PUT("/rooms/:id/cancel", handler.handleCancel)

	return router
}

func corsConfig(cfg Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Origin", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}
	corsCfg.AllowOrigins = cfg.AllowedOrigins
	corsCfg.AllowCredentials = true
	return corsCfg
}

type httpHandler struct {
	logger  *zap.Logger
	service *booking.Service
	cfg     Config
}

type createRoomRequest struct {
	Name       string `json:"name"`
	PriceCents *int64 `json:"price_cents"`
}

// reserveRequest keeps the original wire contract: the guest travels in a
// field called "name". It only ever names the guest, never renames the room.
type reserveRequest struct {
	Name string `json:"name"`
}

func (handler *httpHandler) handleGreeting(ctx *gin.Context) {
	ctx.String(http.StatusOK, handler.cfg.Greeting)
}

func (handler *httpHandler) handleListRooms(ctx *gin.Context) {
	rooms, err := handler.service.ListRooms(ctx.Request.Context())
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	payload := make([]roomPayload, 0, len(rooms))
	for _, room := range rooms {
		payload = append(payload, toRoomPayload(room))
	}
	ctx.JSON(http.StatusOK, payload)
}

func (handler *httpHandler) handleCreateRoom(ctx *gin.Context) {
	var request createRoomRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "expected JSON body"})
		return
	}
	name, err := booking.NewRoomName(request.Name)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "name is required"})
		return
	}
	if request.PriceCents == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "price_cents is required"})
		return
	}
	price, err := booking.NewPriceCents(*request.PriceCents)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "price_cents must not be negative"})
		return
	}

	room, err := handler.service.CreateRoom(ctx.Request.Context(), name, price)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message": "room created",
		"room":    toRoomPayload(room),
	})
}

func (handler *httpHandler) handleReserve(ctx *gin.Context) {
	roomID, err := booking.NewRoomID(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"message": "room not found"})
		return
	}
	var request reserveRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "expected JSON body"})
		return
	}
	guest, err := booking.NewGuestName(request.Name)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "guest name is required"})
		return
	}

	room, err := handler.service.Reserve(ctx.Request.Context(), roomID, guest)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "room reserved for " + guest.String(),
		"room":    toRoomPayload(room),
	})
}

func (handler *httpHandler) handleCancel(ctx *gin.Context) {
	roomID, err := booking.NewRoomID(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"message": "room not found"})
		return
	}

	room, err := handler.service.Cancel(ctx.Request.Context(), roomID)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "reservation cancelled",
		"room":    toRoomPayload(room),
	})
}

func (handler *httpHandler) respondError(ctx *gin.Context, err error) {
	var conflict *booking.ConflictError
	switch {
	case errors.As(err, &conflict):
		ctx.JSON(http.StatusConflict, gin.H{"message": conflict.Error()})
	case errors.Is(err, booking.ErrRoomNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"message": "room not found"})
	default:
		handler.logger.Error("request failed",
			zap.String("path", ctx.FullPath()),
			zap.Error(err),
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

type roomPayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Guest      string `json:"guest"`
	IsBooked   bool   `json:"is_booked"`
}

func toRoomPayload(room booking.Room) roomPayload {
	return roomPayload{
		ID:         room.ID.String(),
		Name:       room.Name.String(),
		PriceCents: room.Price.Int64(),
		Guest:      room.Occupancy.GuestLabel(),
		IsBooked:   room.Occupancy.Occupied(),
	}
}
