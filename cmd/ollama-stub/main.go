// ollama-stub serves just enough of the Ollama HTTP surface for offline runs
// of goanswer: /api/tags, /api/embeddings, and a streaming /api/generate that
// echoes a canned answer in small NDJSON chunks.
package main

import (
	"encoding/json"
	"hash/fnv"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

func main() {
	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":11434"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{{"name": model, "model": model}},
		})
	})
	mux.HandleFunc("/api/embeddings", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req embedRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embedding": fakeEmbedding(req.Prompt),
		})
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		reply := "This is a canned answer from ollama-stub."
		if strings.Contains(req.Prompt, "[Source:") {
			reply = "Grounded canned answer citing the provided sources."
		}

		w.Header().Set("Content-Type", "application/x-ndjson")
		flusher, _ := w.(http.Flusher)
		enc := json.NewEncoder(w)
		words := strings.SplitAfter(reply, " ")
		for i, word := range words {
			_ = enc.Encode(map[string]any{
				"model":    model,
				"response": word,
				"done":     i == len(words)-1,
			})
			if flusher != nil {
				flusher.Flush()
			}
			time.Sleep(20 * time.Millisecond)
		}
	})

	log.Printf("ollama-stub listening on %s (model=%s)", addr, model)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

// fakeEmbedding derives a deterministic unit-ish vector from the text so
// ranking is stable across runs without a real model.
func fakeEmbedding(text string) []float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()
	out := make([]float64, 8)
	for i := range out {
		seed = seed*6364136223846793005 + 1442695040888963407
		out[i] = float64(int64(seed>>11)) / float64(1<<52)
	}
	return out
}
