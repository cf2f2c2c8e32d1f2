package report

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/ipastusi/dhcpreact/history"
	"github.com/ipastusi/dhcpreact/state"
)

// DeviceSource gives read access to the persisted device state.
type DeviceSource interface {
	Load() (state.Devices, error)
}

type HistorySource interface {
	Recent(n int) ([]history.Entry, error)
}

type sortOrder struct {
	label string
	sort  func([]Row)
}

var sortOrders = map[string]sortOrder{
	"reconnect": {"reconnect count (desc)", SortByReconnect},
	"datetime":  {"datetime (desc)", SortByDatetime},
	"ip":        {"IP (asc)", SortByIp},
}

// Server serves read-only device and notification history pages. It never writes the state.
type Server struct {
	logger  *slog.Logger
	devices DeviceSource
	history HistorySource
	router  *mux.Router
}

func NewServer(logger *slog.Logger, devices DeviceSource, history HistorySource) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		logger:  logger,
		devices: devices,
		history: history,
		router:  mux.NewRouter(),
	}

	s.router.HandleFunc("/", s.devicePage("reconnect")).Methods("GET")
	s.router.HandleFunc("/reconnect", s.devicePage("reconnect")).Methods("GET")
	s.router.HandleFunc("/datetime", s.devicePage("datetime")).Methods("GET")
	s.router.HandleFunc("/ip", s.devicePage("ip")).Methods("GET")
	s.router.HandleFunc("/notifications", s.notificationPage).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/devices", s.deviceList).Methods("GET")
	api.HandleFunc("/notifications", s.notificationList).Methods("GET")
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe blocks until ctx is done, then shuts the server down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("report server listening", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (s *Server) rows(order string) ([]Row, error) {
	devices, err := s.devices.Load()
	if err != nil {
		return nil, err
	}
	rows := RowsFrom(devices)
	sortOrders[order].sort(rows)
	return rows, nil
}

func (s *Server) devicePage(order string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := s.rows(order)
		if err != nil {
			s.fail(w, "unable to load devices", err)
			return
		}
		s.render(w, devicesTemplate, devicesView{Rows: rows, Sorted: sortOrders[order].label})
	}
}

func (s *Server) deviceList(w http.ResponseWriter, r *http.Request) {
	order := r.URL.Query().Get("sort")
	if order == "" {
		order = "reconnect"
	}
	if _, ok := sortOrders[order]; !ok {
		writeJson(w, http.StatusBadRequest, map[string]string{"error": "unknown sort order: " + order})
		return
	}

	rows, err := s.rows(order)
	if err != nil {
		s.logger.Error("unable to load devices", slog.Any("error", err))
		writeJson(w, http.StatusInternalServerError, map[string]string{"error": "unable to load devices"})
		return
	}
	writeJson(w, http.StatusOK, rows)
}

func (s *Server) notifications(r *http.Request) ([]history.Entry, int, error) {
	all, err := s.history.Recent(0)
	if err != nil {
		return nil, 0, err
	}
	entries := all
	// a non numeric value means no limit
	if last, err := strconv.Atoi(r.URL.Query().Get("last")); err == nil && last >= 0 && last < len(all) {
		entries = all[:last]
	}
	return entries, len(all), nil
}

func (s *Server) notificationPage(w http.ResponseWriter, r *http.Request) {
	entries, total, err := s.notifications(r)
	if err != nil {
		s.fail(w, "unable to load notification history", err)
		return
	}
	view := notificationsView{Total: total}
	for _, e := range entries {
		view.Entries = append(view.Entries, notificationRow{
			Ts:       e.Ts.Format(history.KeyLayout),
			Message:  e.Message,
			Notified: e.Notified,
		})
	}
	s.render(w, notificationsTemplate, view)
}

func (s *Server) notificationList(w http.ResponseWriter, r *http.Request) {
	entries, _, err := s.notifications(r)
	if err != nil {
		s.logger.Error("unable to load notification history", slog.Any("error", err))
		writeJson(w, http.StatusInternalServerError, map[string]string{"error": "unable to load notification history"})
		return
	}
	rows := make([]notificationRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, notificationRow{Ts: e.Ts.Format(history.KeyLayout), Message: e.Message, Notified: e.Notified})
	}
	writeJson(w, http.StatusOK, rows)
}

func (s *Server) render(w http.ResponseWriter, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("unable to render page", slog.Any("error", err))
	}
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, slog.Any("error", err))
	http.Error(w, msg, http.StatusInternalServerError)
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
