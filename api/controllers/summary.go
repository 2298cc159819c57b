package controllers

import (
	"net/http"

	"github.com/teoalvarez/cartline-backend/api/responses"
	"github.com/teoalvarez/cartline-backend/api/validators"
	"github.com/teoalvarez/cartline-backend/internal/summary"
	pkgerrors "github.com/teoalvarez/cartline-backend/pkg/errors"
	"github.com/teoalvarez/cartline-backend/pkg/logger"
)

// AdminSummary returns the aggregated dashboard report.
func AdminSummary(svc summary.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "summary service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req summary.Request
		if req.DateFrom, err = validators.ParseQueryTime(r, "date_from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if req.DateTo, err = validators.ParseQueryTime(r, "date_to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Report(r.Context(), req, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
