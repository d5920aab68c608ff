package scorecard

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/identity"
	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard/period"
	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard/scoring"
)

// -- scorecard handlers --

type createScorecardRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	OwnerUserID string `json:"ownerUserId"`
}

func createScorecardHandler(store *ScorecardStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createScorecardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		record, err := store.Create(req.Name, req.Type, req.OwnerUserID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, record)
	}
}

func listScorecardsHandler(store *ScorecardStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := store.ListActive()
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": records})
	}
}

func loadScorecardHandler(loader *Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := loader.Load(r.Context(), chi.URLParam(r, "scorecardId"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func loadArchivedHandler(loader *Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := loader.LoadArchived(r.Context(), chi.URLParam(r, "scorecardId"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": views})
	}
}

func deactivateScorecardHandler(store *ScorecardStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Deactivate(chi.URLParam(r, "scorecardId")); err != nil {
			writeEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// -- metric handlers --

type metricRequest struct {
	ScorecardID string   `json:"scorecardId"`
	Name        string   `json:"name"`
	Cadence     string   `json:"cadence"`
	ScoringMode string   `json:"scoringMode"`
	Unit        string   `json:"unit"`
	OwnerUserID string   `json:"ownerUserId"`
	TargetValue *float64 `json:"targetValue"`
	TargetMin   *float64 `json:"targetMin"`
	TargetMax   *float64 `json:"targetMax"`
	TargetWant  *bool    `json:"targetWant"`
}

// definition converts the wire request into a MetricDefinition. Target
// shape errors surface as validation errors before any store call.
func (req *metricRequest) definition() (MetricDefinition, error) {
	mode, err := scoring.ParseMode(req.ScoringMode)
	if err != nil {
		return MetricDefinition{}, validationErrf("%v", err)
	}

	var target scoring.Target
	switch mode {
	case scoring.ModeAtLeast, scoring.ModeAtMost:
		if req.TargetValue == nil {
			return MetricDefinition{}, validationErrf("%s mode requires targetValue", mode)
		}
		if mode == scoring.ModeAtLeast {
			target = scoring.AtLeast{Value: *req.TargetValue}
		} else {
			target = scoring.AtMost{Value: *req.TargetValue}
		}
	case scoring.ModeBetween:
		if req.TargetMin == nil || req.TargetMax == nil {
			return MetricDefinition{}, validationErrf("between mode requires targetMin and targetMax")
		}
		target = scoring.Between{Min: *req.TargetMin, Max: *req.TargetMax}
	case scoring.ModeYesNo:
		if req.TargetWant == nil {
			return MetricDefinition{}, validationErrf("yes_no mode requires targetWant")
		}
		target = scoring.YesNo{Want: *req.TargetWant}
	}

	return MetricDefinition{
		ScorecardID: req.ScorecardID,
		Name:        req.Name,
		Cadence:     period.Cadence(req.Cadence),
		Unit:        req.Unit,
		OwnerUserID: req.OwnerUserID,
		Target:      target,
	}, nil
}

func createMetricHandler(store *MetricStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req metricRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		def, err := req.definition()
		if err != nil {
			writeEngineError(w, err)
			return
		}
		record, err := store.Create(def)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, record)
	}
}

func updateMetricHandler(store *MetricStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req metricRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		def, err := req.definition()
		if err != nil {
			writeEngineError(w, err)
			return
		}
		record, err := store.Update(chi.URLParam(r, "metricId"), def)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

type archiveRequest struct {
	Reason string `json:"reason"`
}

func archiveMetricHandler(store *MetricStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req archiveRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		record, err := store.Archive(chi.URLParam(r, "metricId"), identity.UserIDFromContext(r.Context()), req.Reason)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func restoreMetricHandler(store *MetricStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := store.Restore(chi.URLParam(r, "metricId"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

type hardDeleteRequest struct {
	// Confirm must match the metric's name; the irreversible path requires
	// the caller to retype it.
	Confirm string `json:"confirm"`
}

func hardDeleteMetricHandler(store *MetricStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req hardDeleteRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		metricID := chi.URLParam(r, "metricId")
		record, err := store.Get(metricID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if req.Confirm != record.Name {
			writeError(w, http.StatusBadRequest, "confirmation does not match metric name")
			return
		}
		if err := store.HardDelete(metricID); err != nil {
			writeEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type reorderRequest struct {
	OrderedIDs []string `json:"orderedIds"`
}

func reorderMetricsHandler(store *MetricStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if err := store.Reorder(chi.URLParam(r, "scorecardId"), req.OrderedIDs); err != nil {
			writeEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type bulkArchiveRequest struct {
	MetricIDs []string `json:"metricIds"`
	Reason    string   `json:"reason"`
}

func bulkArchiveHandler(store *MetricStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkArchiveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		results := store.BulkArchive(req.MetricIDs, identity.UserIDFromContext(r.Context()), req.Reason)
		writeJSON(w, http.StatusOK, map[string]any{"results": results})
	}
}

// -- entry handlers --

type upsertEntryRequest struct {
	PeriodStart *string `json:"periodStart"`
	Value       string  `json:"value"`
	Note        *string `json:"note"`
}

func upsertEntryHandler(store *EntryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req upsertEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		var start *period.Start
		if req.PeriodStart != nil {
			parsed, err := period.Parse(*req.PeriodStart)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			start = &parsed
		}

		entry, err := store.UpsertEntry(chi.URLParam(r, "metricId"), start, req.Value, req.Note, identity.UserIDFromContext(r.Context()))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

func deleteEntryHandler(store *EntryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err := period.Parse(chi.URLParam(r, "periodStart"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := store.DeleteEntry(chi.URLParam(r, "metricId"), start); err != nil {
			writeEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type noteRequest struct {
	Note string `json:"note"`
}

func updateNoteHandler(store *EntryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err := period.Parse(chi.URLParam(r, "periodStart"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var req noteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		entry, err := store.UpdateNote(chi.URLParam(r, "metricId"), start, req.Note)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

// -- user handlers --

func saveUserHandler(store *UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var user UserRecord
		if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if err := store.Save(&user); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, &user)
	}
}

// -- response helpers --

// writeJSON marshals data as the response body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeEngineError maps an engine error code to an HTTP status and writes
// the structured error body.
func writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch CodeOf(err) {
	case CodeValidation, CodeInvalidValue:
		status = http.StatusBadRequest
	case CodeNotFound:
		status = http.StatusNotFound
	case CodeConflict:
		status = http.StatusConflict
	case CodeForbidden:
		status = http.StatusForbidden
	}
	writeJSON(w, status, map[string]any{
		"code":  string(CodeOf(err)),
		"error": err.Error(),
	})
}
