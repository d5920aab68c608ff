package scorecard

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/authz"
	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/identity"
)

// Stores bundles the engine's store layer for the router and the server
// binary.
type Stores struct {
	Scorecards *ScorecardStore
	Metrics    *MetricStore
	Entries    *EntryStore
	Users      *UserStore
}

// NewRouter creates a chi router with the scoring engine API routes. Every
// mutating route asks the authorizer for the mutate verb before its handler
// runs; view checks live in the Loader. A nil authorizer allows everything.
func NewRouter(stores Stores, loader *Loader, authorizer authz.Authorizer) chi.Router {
	if authorizer == nil {
		authorizer = &authz.NoopAuthorizer{}
	}
	r := chi.NewRouter()

	r.Route("/scorecards", func(r chi.Router) {
		mutate := r.With(requireMutate(authorizer, authz.ResourceScorecards))
		mutate.Post("/", createScorecardHandler(stores.Scorecards))
		r.Get("/", listScorecardsHandler(stores.Scorecards))

		r.Route("/{scorecardId}", func(r chi.Router) {
			r.Get("/", loadScorecardHandler(loader))
			r.Get("/archived-metrics", loadArchivedHandler(loader))

			mutate := r.With(requireMutate(authorizer, authz.ResourceScorecards))
			mutate.Delete("/", deactivateScorecardHandler(stores.Scorecards))
			mutate.Post("/metrics/reorder", reorderMetricsHandler(stores.Metrics))
		})
	})

	r.Route("/metrics", func(r chi.Router) {
		mutate := r.With(requireMutate(authorizer, authz.ResourceMetrics))
		mutate.Post("/", createMetricHandler(stores.Metrics))
		mutate.Post("/bulk-archive", bulkArchiveHandler(stores.Metrics))

		r.Route("/{metricId}", func(r chi.Router) {
			mutate := r.With(requireMutate(authorizer, authz.ResourceMetrics))
			mutate.Put("/", updateMetricHandler(stores.Metrics))
			mutate.Post("/archive", archiveMetricHandler(stores.Metrics))
			mutate.Post("/restore", restoreMetricHandler(stores.Metrics))
			mutate.Post("/hard-delete", hardDeleteMetricHandler(stores.Metrics))

			entryMutate := r.With(requireMutate(authorizer, authz.ResourceEntries))
			entryMutate.Put("/entries", upsertEntryHandler(stores.Entries))
			entryMutate.Delete("/entries/{periodStart}", deleteEntryHandler(stores.Entries))
			entryMutate.Put("/entries/{periodStart}/note", updateNoteHandler(stores.Entries))
		})
	})

	r.With(requireMutate(authorizer, authz.ResourceScorecards)).
		Put("/users", saveUserHandler(stores.Users))

	return r
}

// requireMutate authorizes the mutate verb on a resource before the wrapped
// handler runs. The scorecard scope comes from the route when present.
func requireMutate(authorizer authz.Authorizer, resource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, _ := identity.CallerFromContext(r.Context())
			allowed, err := authorizer.Authorize(r.Context(), authz.Request{
				User:        caller.UserID,
				Groups:      caller.Groups,
				Resource:    resource,
				Verb:        authz.VerbMutate,
				ScorecardID: chi.URLParam(r, "scorecardId"),
			})
			if err != nil {
				writeEngineError(w, fmt.Errorf("authorize mutate: %w", err))
				return
			}
			if !allowed {
				writeEngineError(w, forbiddenErrf("not allowed to modify %s", resource))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
