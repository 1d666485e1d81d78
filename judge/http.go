package judge

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/evomelody/evolution"
	"github.com/jsphweid/evomelody/melody"
	"github.com/jsphweid/evomelody/midi"
	"github.com/jsphweid/evomelody/model"
	"github.com/pkg/errors"
	"github.com/rs/cors"
)

var errNotPending = errors.New("no such prompt is pending")

type answer struct {
	rating string
	cont   bool
}

type pending struct {
	prompt model.Prompt
	melody melody.Melody
	answer chan answer
}

// HTTP waits for ratings posted by a browser or any other client. At most one
// prompt is pending at a time.
type HTTP struct {
	maxRating int
	bpm       int
	logger    *slog.Logger
	router    *mux.Router

	mu      sync.Mutex
	pending *pending
}

func NewHTTP(maxRating, bpm int, logger *slog.Logger) *HTTP {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &HTTP{maxRating: maxRating, bpm: bpm, logger: logger}

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/prompt", h.handlePrompt).Methods("GET")
	router.HandleFunc("/prompt/{id}/midi", h.handleMidi).Methods("GET")
	router.HandleFunc("/rating", h.handleRating).Methods("POST")
	router.HandleFunc("/acknowledge", h.handleAcknowledge).Methods("POST")
	router.HandleFunc("/continue", h.handleContinue).Methods("POST")
	h.router = router
	return h
}

func (h *HTTP) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(h.router)
}

// ListenAndServe serves the judge on addr until ctx is done.
func (h *HTTP) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	h.logger.Info("judge listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "judge server failed")
	}
	return nil
}

// Pending returns the prompt currently waiting for an answer.
func (h *HTTP) Pending() (model.Prompt, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pending == nil {
		return model.Prompt{}, false
	}
	return h.pending.prompt, true
}

func (h *HTTP) candidatePrompt(kind model.PromptKind, c evolution.Candidate, label string) *pending {
	velocity := make([]int, len(c.Melody.Velocity))
	for i, v := range c.Melody.Velocity {
		velocity[i] = int(v)
	}
	return &pending{
		prompt: model.Prompt{
			ID:         c.ID.String(),
			Kind:       kind,
			Generation: c.Generation,
			Index:      c.Index,
			Total:      c.Total,
			Label:      label,
			MaxRating:  h.maxRating,
			Genome:     c.Genome.String(),
			Notes:      c.Melody.Notes,
			Velocity:   velocity,
			Beat:       c.Melody.Beat,
		},
		melody: c.Melody,
		answer: make(chan answer, 1),
	}
}

func (h *HTTP) wait(ctx context.Context, p *pending) (answer, error) {
	h.mu.Lock()
	h.pending = p
	h.mu.Unlock()
	h.logger.Debug("waiting for judge", "kind", p.prompt.Kind, "id", p.prompt.ID)

	defer func() {
		h.mu.Lock()
		if h.pending == p {
			h.pending = nil
		}
		h.mu.Unlock()
	}()

	select {
	case a := <-p.answer:
		return a, nil
	case <-ctx.Done():
		return answer{}, ctx.Err()
	}
}

func (h *HTTP) Rate(ctx context.Context, c evolution.Candidate) (string, error) {
	a, err := h.wait(ctx, h.candidatePrompt(model.PromptRate, c, ""))
	return a.rating, err
}

func (h *HTTP) Acknowledge(ctx context.Context, c evolution.Candidate, label string) error {
	_, err := h.wait(ctx, h.candidatePrompt(model.PromptAcknowledge, c, label))
	return err
}

func (h *HTTP) Continue(ctx context.Context, generation int) (bool, error) {
	a, err := h.wait(ctx, &pending{
		prompt: model.Prompt{
			ID:         uuid.NewString(),
			Kind:       model.PromptContinue,
			Generation: generation,
			Label:      "continue?",
		},
		answer: make(chan answer, 1),
	})
	return a.cont, err
}

// deliver hands a to the pending prompt if id and kind match. Each prompt
// takes one answer.
func (h *HTTP) deliver(id string, kind model.PromptKind, a answer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.pending
	if p == nil || p.prompt.ID != id || p.prompt.Kind != kind {
		return errors.Wrapf(errNotPending, "%s %s", kind, id)
	}
	h.pending = nil
	p.answer <- a
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func (h *HTTP) handlePrompt(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Pending()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *HTTP) handleMidi(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	h.mu.Lock()
	p := h.pending
	h.mu.Unlock()
	if p == nil || p.prompt.ID != id || p.prompt.Kind == model.PromptContinue {
		writeError(w, http.StatusNotFound, errors.Wrapf(errNotPending, "melody %s", id))
		return
	}

	w.Header().Set("Content-Type", "audio/midi")
	if err := midi.WriteMelody(w, p.melody, h.bpm); err != nil {
		h.logger.Warn("could not write melody", "id", id, "err", err)
	}
}

func (h *HTTP) answerWith(w http.ResponseWriter, id string, kind model.PromptKind, a answer) {
	if err := h.deliver(id, kind, a); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *HTTP) handleRating(w http.ResponseWriter, r *http.Request) {
	var input model.RatingRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "could not decode rating"))
		return
	}
	h.answerWith(w, input.ID, model.PromptRate, answer{rating: input.RatingText()})
}

func (h *HTTP) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	var input model.AcknowledgeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "could not decode acknowledgement"))
		return
	}
	h.answerWith(w, input.ID, model.PromptAcknowledge, answer{})
}

func (h *HTTP) handleContinue(w http.ResponseWriter, r *http.Request) {
	var input model.ContinueRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "could not decode continue"))
		return
	}
	h.answerWith(w, input.ID, model.PromptContinue, answer{cont: input.Continue})
}
