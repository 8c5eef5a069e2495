package portfolio

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"BondLens/internal/pipeline"

	"github.com/gorilla/mux"
)

// StartPortfolioService serves the pipeline read API: latest verdict,
// latest holdings, and an on-demand run trigger.
func StartPortfolioService(runner *pipeline.Runner, port int) {
	r := mux.NewRouter()

	r.HandleFunc("/portfolio/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Portfolio Service is active"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/portfolio/verdict", func(w http.ResponseWriter, _ *http.Request) {
		last := runner.Last()
		if last == nil {
			http.Error(w, "no run completed yet", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]interface{}{
			"run_id":     last.RunID,
			"as_of_date": last.AsOfDate.Format("2006-01-02"),
			"verdict":    last.Verdict,
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/portfolio/holdings", func(w http.ResponseWriter, req *http.Request) {
		last := runner.Last()
		if last == nil {
			http.Error(w, "no run completed yet", http.StatusNotFound)
			return
		}
		amc := req.URL.Query().Get("amc")
		rows := last.Consolidated.Rows
		if amc != "" {
			filtered := rows[:0:0]
			for _, h := range rows {
				if h.AMC == amc {
					filtered = append(filtered, h)
				}
			}
			rows = filtered
		}
		writeJSON(w, map[string]interface{}{
			"run_id":   last.RunID,
			"count":    len(rows),
			"holdings": rows,
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/portfolio/run", func(w http.ResponseWriter, _ *http.Request) {
		res, err := runner.Run()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{
			"run_id":   res.RunID,
			"passed":   res.Verdict.Passed,
			"sources":  res.Sources,
			"duration": res.Duration.String(),
		})
	}).Methods(http.MethodPost)

	addr := fmt.Sprintf(":%d", port)
	log.Println("Portfolio Service started on", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("Portfolio service failed: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
