package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cineverse/internal/middleware"
	"github.com/iliyamo/cineverse/internal/quiz"
	"github.com/iliyamo/cineverse/internal/service"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 30 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsMaxMessage = 512
)

// QuizHandler exposes quiz sessions of the calling visitor.
type QuizHandler struct {
	Quiz     *service.QuizService
	Upgrader websocket.Upgrader
}

func NewQuizHandler(q *service.QuizService) *QuizHandler {
	return &QuizHandler{
		Quiz: q,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// resultView decorates a result with its display strings.
type resultView struct {
	quiz.Result
	DisplayName string `json:"display_name"`
	Grade       string `json:"grade"`
	Badge       string `json:"badge"`
	Feedback    string `json:"feedback"`
}

func viewOf(r quiz.Result) resultView {
	return resultView{
		Result:      r,
		DisplayName: quiz.DisplayName(r.Category),
		Grade:       quiz.Grade(r.Accuracy),
		Badge:       quiz.Badge(r.Accuracy),
		Feedback:    quiz.Feedback(r.Accuracy),
	}
}

// GetCategories handles GET /v1/quiz/categories.
func (h *QuizHandler) GetCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": h.Quiz.Categories()})
}

type startReq struct {
	Category string `json:"category"`
}

// Start handles POST /v1/quiz/sessions.  An unknown category falls back to
// the default one; the response tells which category is served.
func (h *QuizHandler) Start(c echo.Context) error {
	var req startReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	id, up, err := h.Quiz.Start(ctx, middleware.SessionID(c), middleware.UserID(c), req.Category)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "event": up.Event, "view": up.View})
}

// GetState handles GET /v1/quiz/sessions/:id.
func (h *QuizHandler) GetState(c echo.Context) error {
	v, err := h.Quiz.State(middleware.SessionID(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

type answerReq struct {
	Index *int `json:"index"`
}

// Answer handles POST /v1/quiz/sessions/:id/answer.  Answers that arrive
// too late or twice come back as an IGNORED event.
func (h *QuizHandler) Answer(c echo.Context) error {
	var req answerReq
	if err := c.Bind(&req); err != nil || req.Index == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "index required"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	up, err := h.Quiz.Answer(ctx, middleware.SessionID(c), c.Param("id"), *req.Index)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, up)
}

// Next handles POST /v1/quiz/sessions/:id/next.
func (h *QuizHandler) Next(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	up, err := h.Quiz.Advance(ctx, middleware.SessionID(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, up)
}

// Terminate handles DELETE /v1/quiz/sessions/:id.
func (h *QuizHandler) Terminate(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	up, err := h.Quiz.Terminate(ctx, middleware.SessionID(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, up)
}

// GetProgress handles GET /v1/quiz/progress: the snapshot of the visitor's
// unfinished session, or 404 when there is none or it expired.
func (h *QuizHandler) GetProgress(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	p, ok, err := h.Quiz.Progress(ctx, middleware.SessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no quiz in progress"})
	}
	return c.JSON(http.StatusOK, p)
}

// GetScores handles GET /v1/quiz/scores: the top ten.
func (h *QuizHandler) GetScores(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	best, err := h.Quiz.Board(middleware.SessionID(c), middleware.UserID(c)).Best(ctx)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]resultView, 0, len(best))
	for _, r := range best {
		out = append(out, viewOf(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetLatest handles GET /v1/quiz/latest.
func (h *QuizHandler) GetLatest(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	r, ok, err := h.Quiz.Board(middleware.SessionID(c), middleware.UserID(c)).Latest(ctx)
	if err != nil {
		return writeError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no result yet"})
	}
	return c.JSON(http.StatusOK, viewOf(r))
}

// wsCommand is a client message on the events socket.
type wsCommand struct {
	Action string `json:"action"` // "answer" or "next"
	Index  int    `json:"index"`
}

// Events handles GET /v1/quiz/sessions/:id/events.  The socket streams every
// update of the session (ticks included) and accepts answer/next commands.
// It closes when the session ends.
func (h *QuizHandler) Events(c echo.Context) error {
	sid, id := middleware.SessionID(c), c.Param("id")
	updates, unsubscribe, err := h.Quiz.Subscribe(sid, id)
	if err != nil {
		return writeError(c, err)
	}
	defer unsubscribe()

	conn, err := h.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		c.Logger().Warnf("[quiz-ws] upgrade: %v", err)
		return nil
	}
	defer conn.Close()

	if v, err := h.Quiz.State(sid, id); err == nil {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(service.QuizUpdate{View: v}); err != nil {
			return nil
		}
	}

	base, logger := c.Request().Context(), c.Logger()
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(wsMaxMessage)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			var cmd wsCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Debugf("[quiz-ws] read: %v", err)
				}
				return
			}
			ctx, cancel := context.WithTimeout(base, requestTimeout)
			var cmdErr error
			switch cmd.Action {
			case "answer":
				_, cmdErr = h.Quiz.Answer(ctx, sid, id, cmd.Index)
			case "next":
				_, cmdErr = h.Quiz.Advance(ctx, sid, id)
			}
			cancel()
			if errors.Is(cmdErr, service.ErrQuizNotFound) {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case up, ok := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return nil
			}
			if err := conn.WriteJSON(up); err != nil {
				return nil
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-done:
			return nil
		}
	}
}
