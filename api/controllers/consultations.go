package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/agriops/plantops-backend/api/middleware"
	"github.com/agriops/plantops-backend/api/responses"
	"github.com/agriops/plantops-backend/api/validators"
	consultsvc "github.com/agriops/plantops-backend/internal/consultations"
	"github.com/agriops/plantops-backend/pkg/enums"
	pkgerrors "github.com/agriops/plantops-backend/pkg/errors"
	"github.com/agriops/plantops-backend/pkg/logger"
	"github.com/agriops/plantops-backend/pkg/pagination"
)

type createConsultationRequest struct {
	Topic   string `json:"topic" validate:"required"`
	Details string `json:"details" validate:"required"`
}

type scheduleConsultationRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
}

// ConsultationCreate files a new consultation request for the calling farmer.
func ConsultationCreate(svc consultsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "consultations service unavailable"))
			return
		}

		farmerID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createConsultationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		consultation, err := svc.Create(r.Context(), farmerID, consultsvc.CreateInput{
			Topic:   payload.Topic,
			Details: payload.Details,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, consultation)
	}
}

// ConsultationSchedule lets an expert take a pending consultation.
func ConsultationSchedule(svc consultsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "consultations service unavailable"))
			return
		}

		id, err := parseConsultationID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expertID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload scheduleConsultationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		consultation, err := svc.Schedule(r.Context(), id, expertID, payload.ScheduledAt)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, consultation)
	}
}

// ConsultationComplete marks a scheduled consultation finished.
func ConsultationComplete(svc consultsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "consultations service unavailable"))
			return
		}

		id, err := parseConsultationID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		consultation, err := svc.Complete(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, consultation)
	}
}

// ConsultationCancel cancels a pending or scheduled consultation.
func ConsultationCancel(svc consultsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "consultations service unavailable"))
			return
		}

		id, err := parseConsultationID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		consultation, err := svc.Cancel(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, consultation)
	}
}

// ConsultationDetail returns a single consultation by id.
func ConsultationDetail(svc consultsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "consultations service unavailable"))
			return
		}

		id, err := parseConsultationID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		consultation, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, consultation)
	}
}

// ConsultationList returns a paginated consultation page. Farmers only see
// their own requests; experts see those assigned to them plus pending ones.
func ConsultationList(svc consultsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "consultations service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query := consultsvc.ListQuery{
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
		}

		switch middleware.RoleFromContext(r.Context()) {
		case string(enums.UserRoleFarmer):
			uid, err := callerID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			query.FarmerID = &uid
		case string(enums.UserRoleExpert):
			if query.Status != string(enums.ConsultationStatusPending) {
				uid, err := callerID(r)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				query.ExpertID = &uid
			}
		}

		result, err := svc.List(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseConsultationID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "consultationId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "consultation id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid consultation id")
	}
	return id, nil
}

func callerID(r *http.Request) (uuid.UUID, error) {
	uid, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return uid, nil
}
