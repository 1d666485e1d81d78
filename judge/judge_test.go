package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jsphweid/evomelody/evolution"
	"github.com/jsphweid/evomelody/melody"
	"github.com/jsphweid/evomelody/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCandidate() evolution.Candidate {
	return evolution.Candidate{
		ID:         uuid.New(),
		Generation: 2,
		Index:      1,
		Total:      4,
		Genome:     model.Genome{1, 0, 0, 0, 0, 1, 0, 0},
		Melody: melody.Melody{
			Notes:    [][]int{{62, 64}},
			Velocity: []uint8{127, 127},
			Beat:     []float64{0.5, 0.5},
		},
	}
}

func TestConsoleRate(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("4\n"), &out, 5)

	answer, err := c.Rate(context.Background(), testCandidate())
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal("4", answer)
	assert.Contains(out.String(), "Rating (0-5)")
	assert.Contains(out.String(), "generation 2 · 2/4")
}

func TestConsoleRateWithoutNewline(t *testing.T) {
	c := NewConsole(strings.NewReader("3"), &bytes.Buffer{}, 5)
	answer, err := c.Rate(context.Background(), testCandidate())
	require.NoError(t, err)
	assert.Equal(t, "3", answer)
}

func TestConsoleClosedInput(t *testing.T) {
	c := NewConsole(strings.NewReader(""), &bytes.Buffer{}, 5)
	_, err := c.Rate(context.Background(), testCandidate())
	assert.Error(t, err)
}

func TestConsoleAcknowledge(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("\n"), &out, 5)
	require.NoError(t, c.Acknowledge(context.Background(), testCandidate(), "here is the no1 hit …"))
	assert.Contains(t, out.String(), "here is the no1 hit …")
}

func TestConsoleContinue(t *testing.T) {
	cases := map[string]bool{
		"\n":    true,
		"y\n":   true,
		"Y\n":   true,
		"no\n":  true,
		"n\n":   false,
		" n \n": false,
	}
	for input, want := range cases {
		t.Run(strings.TrimSpace(input), func(t *testing.T) {
			c := NewConsole(strings.NewReader(input), &bytes.Buffer{}, 5)
			got, err := c.Continue(context.Background(), 0)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestConsoleCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewConsole(strings.NewReader("4\n"), &bytes.Buffer{}, 5)
	_, err := c.Rate(ctx, testCandidate())
	assert.ErrorIs(t, err, context.Canceled)
}

func waitForPrompt(t *testing.T, srv *httptest.Server) model.Prompt {
	t.Helper()
	var p model.Prompt
	require.Eventually(t, func() bool {
		res, err := http.Get(srv.URL + "/prompt")
		if err != nil {
			return false
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			return false
		}
		return json.NewDecoder(res.Body).Decode(&p) == nil
	}, 5*time.Second, 10*time.Millisecond)
	return p
}

func post(t *testing.T, srv *httptest.Server, path string, body interface{}) int {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	res.Body.Close()
	return res.StatusCode
}

func TestHTTPRate(t *testing.T) {
	h := NewHTTP(5, 120, nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	cand := testCandidate()
	type result struct {
		answer string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		a, err := h.Rate(context.Background(), cand)
		done <- result{a, err}
	}()

	p := waitForPrompt(t, srv)
	assert := assert.New(t)
	assert.Equal(cand.ID.String(), p.ID)
	assert.Equal(model.PromptRate, p.Kind)
	assert.Equal(5, p.MaxRating)
	assert.Equal([]int{127, 127}, p.Velocity)
	assert.Equal("10000100", p.Genome)

	res, err := http.Get(srv.URL + "/prompt/" + p.ID + "/midi")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(http.StatusOK, res.StatusCode)
	assert.Equal("audio/midi", res.Header.Get("Content-Type"))

	assert.Equal(http.StatusConflict, post(t, srv, "/rating", model.RatingRequestBody{ID: uuid.NewString(), Rating: json.RawMessage(`"1"`)}))
	assert.Equal(http.StatusAccepted, post(t, srv, "/rating", model.RatingRequestBody{ID: p.ID, Rating: json.RawMessage(`"4"`)}))
	assert.Equal(http.StatusConflict, post(t, srv, "/rating", model.RatingRequestBody{ID: p.ID, Rating: json.RawMessage(`"5"`)}))

	r := <-done
	require.NoError(t, r.err)
	assert.Equal("4", r.answer)

	res, err = http.Get(srv.URL + "/prompt")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(http.StatusNoContent, res.StatusCode)
}

func TestHTTPAcknowledgeAndContinue(t *testing.T) {
	h := NewHTTP(5, 120, nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	ackDone := make(chan error, 1)
	go func() {
		ackDone <- h.Acknowledge(context.Background(), testCandidate(), "here is the second best …")
	}()
	p := waitForPrompt(t, srv)
	assert.Equal(t, model.PromptAcknowledge, p.Kind)
	assert.Equal(t, "here is the second best …", p.Label)
	// wrong kind for this prompt
	assert.Equal(t, http.StatusConflict, post(t, srv, "/rating", model.RatingRequestBody{ID: p.ID, Rating: json.RawMessage(`"2"`)}))
	assert.Equal(t, http.StatusAccepted, post(t, srv, "/acknowledge", model.AcknowledgeRequestBody{ID: p.ID}))
	require.NoError(t, <-ackDone)

	contDone := make(chan bool, 1)
	go func() {
		cont, err := h.Continue(context.Background(), 3)
		assert.NoError(t, err)
		contDone <- cont
	}()
	p = waitForPrompt(t, srv)
	assert.Equal(t, model.PromptContinue, p.Kind)
	assert.Equal(t, 3, p.Generation)
	assert.Equal(t, http.StatusAccepted, post(t, srv, "/continue", model.ContinueRequestBody{ID: p.ID, Continue: false}))
	assert.False(t, <-contDone)
}

func TestHTTPBadBody(t *testing.T) {
	h := NewHTTP(5, 120, nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	res, err := http.Post(srv.URL+"/rating", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestHTTPMidiNotFound(t *testing.T) {
	h := NewHTTP(5, 120, nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	res, err := http.Get(srv.URL + "/prompt/" + uuid.NewString() + "/midi")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestHTTPCancelledWhileWaiting(t *testing.T) {
	h := NewHTTP(5, 120, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := h.Rate(ctx, testCandidate())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	_, ok := h.Pending()
	assert.False(t, ok)
}

func TestHTTPCorsPreflight(t *testing.T) {
	h := NewHTTP(5, 120, nil)
	req := httptest.NewRequest(http.MethodOptions, "/rating", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	h.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHTTPRatingAsNumberOrText(t *testing.T) {
	cases := []struct{ body, want string }{
		{`{"id":"%s","rating":4}`, "4"},
		{`{"id":"%s","rating":"2"}`, "2"},
		{`{"id":"%s","rating":"meh"}`, "meh"},
		{`{"id":"%s","rating":true}`, "true"},
		{`{"id":"%s"}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.body, func(t *testing.T) {
			h := NewHTTP(5, 120, nil)
			srv := httptest.NewServer(h.Handler())
			defer srv.Close()

			cand := testCandidate()
			done := make(chan string, 1)
			go func() {
				a, err := h.Rate(context.Background(), cand)
				assert.NoError(t, err)
				done <- a
			}()
			p := waitForPrompt(t, srv)

			res, err := http.Post(srv.URL+"/rating", "application/json", strings.NewReader(fmt.Sprintf(tc.body, p.ID)))
			require.NoError(t, err)
			res.Body.Close()
			assert.Equal(t, http.StatusAccepted, res.StatusCode)
			assert.Equal(t, tc.want, <-done)
		})
	}
}
