package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/scythe504/wordsearch-backend/internal/database"
	"github.com/scythe504/wordsearch-backend/internal/game"
	"github.com/scythe504/wordsearch-backend/internal/websocket"
)

type Server struct {
	port int

	manager *game.Manager
	hub     *websocket.Hub
	// db is nil when the results archive is disabled
	db database.Service
}

func NewServer(port int, manager *game.Manager, hub *websocket.Hub, db database.Service) *http.Server {
	s := &Server{
		port:    port,
		manager: manager,
		hub:     hub,
		db:      db,
	}

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.RegisterRoutes(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
