package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/teemow/supercal/internal/agent"
	"github.com/teemow/supercal/internal/calendar"
	"github.com/teemow/supercal/internal/instrumentation"
	"github.com/teemow/supercal/internal/logging"
	"github.com/teemow/supercal/internal/tools/calendar_tools"
)

// ChatMessage is one prior exchange in the conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history"`
}

// ChatHandler returns the handler for POST /chat. The response is a
// Server-Sent Events stream: one event per tool decision and exactly one
// final event carrying the answer.
func (sc *ServerContext) ChatHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		logger := logging.WithOperation(sc.logger, "chat")
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			logger = logger.With(logging.SessionHash(strings.TrimPrefix(auth, "Bearer ")))
		}

		status := func(code int) {
			sc.Metrics().RecordHTTPRequest(ctx, r.Method, "/chat", code, time.Since(start))
		}

		if r.Method != http.MethodPost {
			status(http.StatusMethodNotAllowed)
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			status(http.StatusBadRequest)
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Message == "" {
			status(http.StatusBadRequest)
			writeJSONError(w, http.StatusBadRequest, "message is required")
			return
		}

		provider := sc.TokenProviderForRequest(r)
		if !provider.HasToken() {
			status(http.StatusUnauthorized)
			writeJSONError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		ts, err := provider.TokenSource(ctx)
		if err != nil {
			logger.Error("failed to build token source", logging.Err(err))
			status(http.StatusUnauthorized)
			writeJSONError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		client, err := calendar.NewClient(ctx, ts)
		if err != nil {
			logger.Error("failed to create calendar client", logging.Err(err))
			status(http.StatusInternalServerError)
			writeJSONError(w, http.StatusInternalServerError, "calendar unavailable")
			return
		}

		toolset := calendar_tools.New(
			newInstrumentedGateway(client, sc.Metrics()),
			calendar_tools.WithLocation(sc.location),
		)
		registry, err := agent.NewRegistry(instrumentedTools(toolset.Definitions(), sc.Metrics())...)
		if err != nil {
			logger.Error("failed to build tool registry", logging.Err(err))
			status(http.StatusInternalServerError)
			writeJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			status(http.StatusInternalServerError)
			writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		sc.Metrics().IncrementActiveStreams(ctx)
		defer sc.Metrics().DecrementActiveStreams(ctx)

		emit := func(event agent.Event) error {
			data, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("encode event: %w", err)
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		}

		ctx, span := instrumentation.StartSpan(ctx, "chat.request")
		defer span.End()
		if traceID := instrumentation.GetTraceID(ctx); traceID != "" {
			logger = logger.With(slog.String("trace_id", traceID))
		}

		model := newInstrumentedModel(sc.model, sc.modelName, sc.Metrics())
		orchestrator := agent.NewOrchestrator(model, registry, logger, agent.WithMaxTurns(sc.maxTurns))

		state, err := orchestrator.Run(ctx, req.Message, chatHistory(req.History), emit)
		if err != nil {
			// Stream already started; nothing more can be sent to the client.
			logger.Warn("chat stream aborted", logging.Err(err))
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}

		outcome := "final_answer"
		if len(state.Steps) >= sc.maxTurns {
			outcome = "max_turns"
		}
		sc.Metrics().RecordAgentTurns(ctx, len(state.Steps)+1, outcome)
		status(http.StatusOK)
	})
}

// chatHistory converts the request history into agent messages. The last
// element is a placeholder for the answer being generated and is dropped.
// Messages with unknown roles are skipped.
func chatHistory(history []ChatMessage) []agent.Message {
	if len(history) == 0 {
		return nil
	}

	out := make([]agent.Message, 0, len(history)-1)
	for _, msg := range history[:len(history)-1] {
		switch msg.Role {
		case agent.RoleUser, agent.RoleAssistant:
			out = append(out, agent.Message{Role: msg.Role, Content: msg.Content})
		}
	}
	return out
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
