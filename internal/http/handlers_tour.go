package http

import (
	"encoding/json"
	"net/http"
	"time"

	"tourbook/internal/core"
	"tourbook/internal/log"
	"tourbook/internal/services"
)

// tourPatch is the PUT body. Absent fields keep their stored value;
// collections present in the body replace the stored ones whole.
type tourPatch struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Destinations *[]string        `json:"destinations"`
	Members      *[]core.Member   `json:"members"`
	Expenses     *[]core.Expense  `json:"expenses"`
	TotalBudget  *core.Money      `json:"totalBudget"`
	Currency     *string          `json:"currency"`
	Status       *core.TourStatus `json:"status"`
	StartDate    *time.Time       `json:"startDate"`
	EndDate      *time.Time       `json:"endDate"`
	ImageURL     *string          `json:"imageUrl"`
}

func (p tourPatch) toUpdate() services.TourUpdate {
	return services.TourUpdate{
		Name:         p.Name,
		Description:  p.Description,
		Destinations: p.Destinations,
		Members:      p.Members,
		Expenses:     p.Expenses,
		TotalBudget:  p.TotalBudget,
		Currency:     p.Currency,
		Status:       p.Status,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		ImageURL:     p.ImageURL,
	}
}

func (s *Server) handleListTours(w http.ResponseWriter, r *http.Request) {
	if s.writeCached(w, "tours") {
		return
	}

	tours, err := s.tours.ListTours(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if tours == nil {
		tours = []*core.Tour{}
	}

	s.respondAndCache(w, r, "tours", tours)
}

func (s *Server) handleCreateTour(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var t core.Tour
	if err := decodeJSON(r, &t); err != nil {
		respondError(w, r, err)
		return
	}

	created, err := s.tours.CreateTour(r.Context(), &t, user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateTour(created.ID)

	logger := log.FromContext(r.Context())
	logger.InfoContext(r.Context(), "Tour created",
		log.FieldTourID, created.ID,
		log.FieldTourName, created.Name,
		log.FieldUserID, user.ID,
		log.FieldOperation, log.OpCreate)

	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetTour(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s.writeCached(w, "tour:"+id) {
		return
	}

	tour, err := s.tours.GetTour(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.respondAndCache(w, r, "tour:"+id, tour)
}

func (s *Server) handleUpdateTour(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch tourPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := s.tours.UpdateTour(r.Context(), id, patch.toUpdate())
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateTour(id)

	logger := log.FromContext(r.Context())
	logger.InfoContext(r.Context(), "Tour updated",
		log.FieldTourID, id,
		log.FieldOperation, log.OpUpdate)

	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTour(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.tours.DeleteTour(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateTour(id)

	logger := log.FromContext(r.Context())
	logger.InfoContext(r.Context(), "Tour deleted",
		log.FieldTourID, id,
		log.FieldOperation, log.OpDelete)

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	tourID := r.PathValue("id")

	var e core.Expense
	if err := decodeJSON(r, &e); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := s.tours.AddExpense(r.Context(), tourID, e)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateTour(tourID)

	logger := log.FromContext(r.Context())
	logger.InfoContext(r.Context(), "Expense added",
		log.FieldTourID, tourID,
		log.FieldAmountCents, e.Price.Cents,
		log.FieldCategory, e.Category,
		log.FieldOperation, log.OpCreate)

	respondJSON(w, http.StatusCreated, updated)
}

func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	tourID := r.PathValue("id")
	expenseID := r.PathValue("expenseID")

	var e core.Expense
	if err := decodeJSON(r, &e); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := s.tours.EditExpense(r.Context(), tourID, expenseID, e)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateTour(tourID)

	logger := log.FromContext(r.Context())
	logger.InfoContext(r.Context(), "Expense updated",
		log.FieldTourID, tourID,
		log.FieldExpenseID, expenseID,
		log.FieldOperation, log.OpUpdate)

	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	tourID := r.PathValue("id")
	expenseID := r.PathValue("expenseID")

	updated, err := s.tours.DeleteExpense(r.Context(), tourID, expenseID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateTour(tourID)

	logger := log.FromContext(r.Context())
	logger.InfoContext(r.Context(), "Expense deleted",
		log.FieldTourID, tourID,
		log.FieldExpenseID, expenseID,
		log.FieldOperation, log.OpDelete)

	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	tourID := r.PathValue("id")
	key := "tour:" + tourID + ":report"
	if s.writeCached(w, key) {
		return
	}

	report, err := s.tours.Report(r.Context(), tourID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.respondAndCache(w, r, key, report)
}

// writeCached serves a cached GET response, reporting whether it hit.
func (s *Server) writeCached(w http.ResponseWriter, key string) bool {
	body, ok := s.respCache.Get(key)
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
	return true
}

func (s *Server) respondAndCache(w http.ResponseWriter, r *http.Request, key string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.respCache.Set(key, body)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
