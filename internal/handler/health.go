package handler

import (
	"context"

	"github.com/pkordes/libris/internal/handler/gen"
)

// GetHealth reports liveness only. It touches no service, so it answers even
// on a Server built by NewHealthHandler.
func (s *Server) GetHealth(context.Context, gen.GetHealthRequestObject) (gen.GetHealthResponseObject, error) {
	return gen.GetHealth200JSONResponse{Status: "ok"}, nil
}
