package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/taxconfig"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type TaxConfigurationHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
}

type taxConfigurationHandlerImpl struct {
	taxConfigService taxconfig.TaxConfigurationService
}

func NewTaxConfigurationHandler(taxConfigService taxconfig.TaxConfigurationService) TaxConfigurationHandler {
	return &taxConfigurationHandlerImpl{taxConfigService: taxConfigService}
}

func (h *taxConfigurationHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req taxconfig.CreateTaxConfigurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.taxConfigService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Tax configuration created", result)
}

func (h *taxConfigurationHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Tax configuration ID is required", nil)
		return
	}

	result, err := h.taxConfigService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *taxConfigurationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter taxconfig.TaxConfigurationFilter
	if country := r.URL.Query().Get("country"); country != "" {
		filter.Country = &country
	}
	if financialYear := r.URL.Query().Get("financial_year"); financialYear != "" {
		filter.FinancialYear = &financialYear
	}

	result, err := h.taxConfigService.ListByCompany(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *taxConfigurationHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Tax configuration ID is required", nil)
		return
	}

	var req taxconfig.UpdateTaxConfigurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	if err := h.taxConfigService.Update(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, nil)
}
