// handlers/admin_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/jmtz/meteopipe/config"
	"github.com/jmtz/meteopipe/scraper"
	"github.com/jmtz/meteopipe/services"
)

// Helper to respond with JSON
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshalling JSON response: %v", err)
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper to respond with an error
func respondWithError(w http.ResponseWriter, code int, message string) {
	log.Printf("API Error %d: %s", code, message)
	respondWithJSON(w, code, map[string]string{"error": message})
}

// RunStageHandler handles requests to manually run a pipeline stage.
// Expects POST requests to /api/admin/run/{stage} where {stage} is
// "scrape", "ingest", or "cycle".
func RunStageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// Expected path: api/admin/run/{stage}
	if len(pathParts) < 3 {
		respondWithError(w, http.StatusBadRequest, "Invalid path. Expected /api/admin/run/{stage}")
		return
	}
	stage := strings.ToLower(pathParts[len(pathParts)-1])

	fetcher := scraper.NewHTTPFetcher(config.AppConfig.Scrape.FetchTimeout)

	var err error
	switch stage {
	case "scrape":
		_, err = services.RunScrape(fetcher)
	case "ingest":
		var applied int
		applied, err = services.IngestLatest()
		if err == nil {
			err = services.ExportIfChanged(applied)
		}
	case "cycle":
		err = services.RunCycle(fetcher)
	default:
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid stage '%s'. Use 'scrape', 'ingest', or 'cycle'.", stage))
		return
	}

	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to run %s stage: %v", stage, err))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Stage %s completed successfully.", stage)})
}
