package server

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

type statusResp struct {
	Service   string   `json:"service"`
	Status    string   `json:"status"`
	Endpoints []string `json:"endpoints"`
}

func (s *Server) handleGetRoot(c echo.Context) error {
	var endpoints []string
	for _, r := range s.Echo.Routes() {
		if r.Method == http.MethodPost {
			endpoints = append(endpoints, r.Method+" "+r.Path)
		}
	}
	slices.Sort(endpoints)
	return c.JSON(http.StatusOK, statusResp{
		Service:   "Interplay Analysis API",
		Status:    "ok",
		Endpoints: endpoints,
	})
}
