// Package httpapi serves a read-only HTTP view of hosted games.
//
// Mutations go through MCP; this router only observes. The MCP streamable
// handler is mounted alongside it at /mcp so one listener serves both.
package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/louisbranch/sho/internal/platform/errors"
	i18ncatalog "github.com/louisbranch/sho/internal/platform/i18n/catalog"
	"github.com/louisbranch/sho/internal/platform/requestctx"
	"github.com/louisbranch/sho/internal/services/sho/app"
	"github.com/louisbranch/sho/internal/services/sho/domain/rules"
	"github.com/louisbranch/sho/internal/services/sho/storage"
)

// Games is the read side of the game table.
type Games interface {
	List(ctx context.Context) []string
	Get(ctx context.Context, gameID string) (app.GameView, error)
	Moves(ctx context.Context, gameID string) ([]rules.Move, error)
	Explain(ctx context.Context, gameID string, source, target int) (rules.BlockReason, error)
	Journal() storage.Journal
}

type handler struct {
	games Games
}

// NewRouter builds the observation API. mcpHandler is mounted at /mcp when set.
func NewRouter(games Games, mcpHandler http.Handler) *gin.Engine {
	h := handler{games: games}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), resolveLocale)

	r.GET("/healthz", h.health)
	r.GET("/games", h.listGames)
	r.GET("/games/:id", h.getGame)
	r.GET("/games/:id/moves", h.listMoves)
	r.GET("/games/:id/explain", h.explain)
	r.GET("/games/:id/journal", h.listJournal)

	if mcpHandler != nil {
		r.Any("/mcp", gin.WrapH(mcpHandler))
	}
	return r
}

// langParam overrides Accept-Language when present.
const langParam = "lang"

// resolveLocale picks the response language once per request and stores it
// in the request context.
func resolveLocale(c *gin.Context) {
	preference := c.Query(langParam)
	if preference == "" {
		preference = c.GetHeader("Accept-Language")
	}
	resolved := i18ncatalog.Default().ResolveLocale(preference)
	c.Request = c.Request.WithContext(requestctx.WithLocale(c.Request.Context(), resolved))
	c.Header("Content-Language", resolved)
	c.Next()
}

func locale(c *gin.Context) string {
	return requestctx.LocaleFromContext(c.Request.Context())
}

func (h handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h handler) listGames(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"games": h.games.List(c.Request.Context())})
}

func (h handler) getGame(c *gin.Context) {
	view, err := h.games.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h handler) listMoves(c *gin.Context) {
	moves, err := h.games.Moves(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if moves == nil {
		moves = []rules.Move{}
	}
	c.JSON(http.StatusOK, gin.H{"moves": moves})
}

func (h handler) explain(c *gin.Context) {
	source, err := intQuery(c, "source")
	if err != nil {
		writeError(c, err)
		return
	}
	target, err := intQuery(c, "target")
	if err != nil {
		writeError(c, err)
		return
	}
	reason, err := h.games.Explain(c.Request.Context(), c.Param("id"), source, target)
	if err != nil {
		writeError(c, err)
		return
	}
	message, _ := i18ncatalog.Default().Message(locale(c), "game.block."+string(reason))
	c.JSON(http.StatusOK, gin.H{
		"legal":   reason == rules.BlockNone,
		"reason":  reason,
		"message": message,
	})
}

func (h handler) listJournal(c *gin.Context) {
	journal := h.games.Journal()
	if journal == nil {
		writeError(c, apperrors.New(apperrors.CodeJournalUnavailable, "journal is not configured"))
		return
	}
	pageSize := 0
	if raw := c.Query("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 0 {
			writeError(c, invalidArgument("page_size"))
			return
		}
		pageSize = size
	}
	page, err := journal.ListEntries(c.Request.Context(), storage.ListRequest{
		GameID:    c.Param("id"),
		Filter:    c.Query("filter"),
		PageSize:  pageSize,
		PageToken: c.Query("page_token"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	if page.Entries == nil {
		page.Entries = []storage.Entry{}
	}
	c.JSON(http.StatusOK, page)
}

func intQuery(c *gin.Context, name string) (int, error) {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0, invalidArgument(name)
	}
	return value, nil
}

func invalidArgument(field string) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidArgument, "invalid "+field, map[string]string{"Field": field})
}

// writeError renders err with its HTTP status and a message in the caller's
// preferred language.
func writeError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	message := err.Error()
	if appErr, ok := apperrors.As(err); ok {
		message = appErr.Localize(locale(c))
	}
	c.AbortWithStatusJSON(code.HTTPStatus(), gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
