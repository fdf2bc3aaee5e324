// Package api exposes the order book over HTTP: REST endpoints for snapshots
// and lookups, plus a WebSocket stream that broadcasts the depth-limited
// market data on a fixed interval. The in-process book stays the source of
// truth; this layer only reads it.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"orderbook_go/internal/book"
	"orderbook_go/internal/domain"
	"orderbook_go/internal/infra"
)

// Server serves market data over REST and WebSocket.
type Server struct {
	book     *book.OrderBook
	hub      *Hub
	router   *mux.Router
	srv      *http.Server
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer wires the routes. broadcastInterval controls how often the
// WebSocket stream pushes a fresh snapshot.
func NewServer(addr string, b *book.OrderBook, broadcastInterval time.Duration) *Server {
	s := &Server{
		book:     b,
		hub:      NewHub(),
		interval: broadcastInterval,
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/marketdata", s.handleMarketData).Methods(http.MethodGet)
	router.HandleFunc("/api/orders/{id}", s.handleOrder).Methods(http.MethodGet)
	router.HandleFunc("/api/metrics", s.handleMetrics).Methods(http.MethodGet)
	router.HandleFunc("/ws", s.hub.HandleWS)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           cors.Default().Handler(router),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.router = router
	return s
}

// Start launches the HTTP listener and the broadcast loop.
func (s *Server) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		slog.Info("api server listening", slog.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api server failed", slog.Any("error", err))
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.hub.Broadcast(s.book.GetMarketData())
			}
		}
	}()
}

// Shutdown stops broadcasting, disconnects clients and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	s.hub.Close()
	err := s.srv.Shutdown(ctx)
	s.wg.Wait()
	return err
}

func (s *Server) handleMarketData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.book.GetMarketData())
}

// orderResponse is the read-only wire view of an order.
type orderResponse struct {
	ID         string        `json:"id"`
	Instrument string        `json:"instrument"`
	Side       domain.Side   `json:"side"`
	Kind       domain.Kind   `json:"kind"`
	Price      string        `json:"price"`
	Quantity   string        `json:"quantity"`
	Status     domain.Status `json:"status"`
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	order := s.book.GetOrderByID(id)
	if order == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{
		ID:         order.ID().String(),
		Instrument: order.Instrument().Name,
		Side:       order.Side(),
		Kind:       order.Kind(),
		Price:      order.Price().String(),
		Quantity:   order.Quantity().String(),
		Status:     order.Status(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infra.GlobalMetrics.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("response encode failed", slog.Any("error", err))
	}
}
