package server

//go:generate swag init -g internal/server/swagger.go -o docs/swagger

// @title codeprobe API
// @version 0.1
// @description Dashboard API for submitting code to a remote analysis service.
// @contact.name codeprobe Maintainers
// @contact.url https://github.com/raysh454/codeprobe
// @BasePath /

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/raysh454/codeprobe/docs/swagger" // registers the generated spec
)

func (s *Server) mountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}
