// Package testutil provides testing utilities for the BLS client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Request is one request received by MockBLS.
type Request struct {
	SeriesIDs []string
	StartYear int
	EndYear   int
	Key       string
	Header    http.Header
}

// MockBLSResponse overrides the generated response for every request.
type MockBLSResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// MockBLS is a configurable mock of the BLS v2 time series endpoint.
//
// By default every requested series gets one row per month of the requested
// years plus an M13 annual average, newest first, the way the API orders
// them. The value of a row is year*100+month so tests can assert on
// placement.
type MockBLS struct {
	server *httptest.Server
	mu     sync.RWMutex

	requests []Request
	empty    map[string]bool
	quarter  map[string]bool
	messages []string
	response *MockBLSResponse
}

// NewMockBLS creates a new mock BLS server.
func NewMockBLS() *MockBLS {
	mock := &MockBLS{
		empty:   make(map[string]bool),
		quarter: make(map[string]bool),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock server URL.
func (m *MockBLS) URL() string {
	return m.server.URL + "/publicAPI/v2/timeseries/data/"
}

// Close shuts down the mock server.
func (m *MockBLS) Close() {
	m.server.Close()
}

// Reset clears recorded requests and all configured behavior.
func (m *MockBLS) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.empty = make(map[string]bool)
	m.quarter = make(map[string]bool)
	m.messages = nil
	m.response = nil
}

// SetEmpty makes the given series come back with no data.
func (m *MockBLS) SetEmpty(seriesIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range seriesIDs {
		m.empty[id] = true
	}
}

// SetQuarterly makes the given series come back with quarterly periods.
func (m *MockBLS) SetQuarterly(seriesIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range seriesIDs {
		m.quarter[id] = true
	}
}

// SetMessages adds provider messages to successful envelopes.
func (m *MockBLS) SetMessages(messages ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = messages
}

// SetResponse replaces the generated envelope with a fixed response.
func (m *MockBLS) SetResponse(resp MockBLSResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = &resp
}

// Requests returns a copy of every request received so far.
func (m *MockBLS) Requests() []Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockBLS) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

func (m *MockBLS) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := Request{
		SeriesIDs: strings.Split(r.PostForm.Get("seriesid"), ","),
		Key:       r.PostForm.Get("registrationkey"),
		Header:    r.Header.Clone(),
	}
	req.StartYear, _ = strconv.Atoi(r.PostForm.Get("startyear"))
	req.EndYear, _ = strconv.Atoi(r.PostForm.Get("endyear"))

	m.mu.Lock()
	m.requests = append(m.requests, req)
	resp := m.response
	m.mu.Unlock()

	if resp != nil {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		w.Write([]byte(resp.Body))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m.envelope(req))
}

type Row struct {
	Year       string `json:"year"`
	Period     string `json:"period"`
	PeriodName string `json:"periodName"`
	Value      string `json:"value"`
}

type seriesBody struct {
	SeriesID string `json:"seriesID"`
	Data     []Row  `json:"data"`
}

func (m *MockBLS) envelope(req Request) map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]seriesBody, 0, len(req.SeriesIDs))
	for _, id := range req.SeriesIDs {
		body := seriesBody{SeriesID: id, Data: []Row{}}
		if !m.empty[id] {
			if m.quarter[id] {
				body.Data = QuarterlyRows(req.StartYear, req.EndYear)
			} else {
				body.Data = MonthlyRows(req.StartYear, req.EndYear)
			}
		}
		out = append(out, body)
	}

	messages := m.messages
	if messages == nil {
		messages = []string{}
	}

	return map[string]any{
		"status":       "REQUEST_SUCCEEDED",
		"responseTime": 42,
		"message":      messages,
		"Results":      map[string]any{"series": out},
	}
}

// MonthlyRows generates monthly rows plus an annual average per year,
// newest first.
func MonthlyRows(start, end int) []Row {
	var rows []Row
	for year := end; year >= start; year-- {
		rows = append(rows, Row{
			Year:       strconv.Itoa(year),
			Period:     "M13",
			PeriodName: "Annual",
			Value:      fmt.Sprintf("%d", year*100+13),
		})
		for month := 12; month >= 1; month-- {
			rows = append(rows, Row{
				Year:       strconv.Itoa(year),
				Period:     fmt.Sprintf("M%02d", month),
				PeriodName: time.Month(month).String(),
				Value:      fmt.Sprintf("%d", year*100+month),
			})
		}
	}
	return rows
}

// QuarterlyRows generates quarterly rows, newest first.
func QuarterlyRows(start, end int) []Row {
	var rows []Row
	for year := end; year >= start; year-- {
		for q := 4; q >= 1; q-- {
			rows = append(rows, Row{
				Year:       strconv.Itoa(year),
				Period:     fmt.Sprintf("Q%02d", q),
				PeriodName: fmt.Sprintf("%d Quarter", q),
				Value:      fmt.Sprintf("%d", year*10+q),
			})
		}
	}
	return rows
}

// NewFailureResponse creates an envelope reporting a provider failure.
func NewFailureResponse(status string, messages ...string) MockBLSResponse {
	body, _ := json.Marshal(map[string]any{
		"status":       status,
		"responseTime": 7,
		"message":      messages,
		"Results":      map[string]any{},
	})
	return MockBLSResponse{StatusCode: http.StatusOK, Body: string(body)}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockBLSResponse {
	return MockBLSResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
	}
}

// NewMalformedResponse creates a 200 response whose body is not JSON.
func NewMalformedResponse() MockBLSResponse {
	return MockBLSResponse{
		StatusCode: http.StatusOK,
		Body:       `<html>maintenance</html>`,
	}
}
