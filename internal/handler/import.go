package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/beauty-center-booking/internal/config"
	"github.com/iliyamo/beauty-center-booking/internal/importer"
	"github.com/iliyamo/beauty-center-booking/internal/middleware"
	"github.com/iliyamo/beauty-center-booking/internal/queue"
	"github.com/iliyamo/beauty-center-booking/internal/repository"
	"github.com/iliyamo/beauty-center-booking/internal/response"
	"github.com/iliyamo/beauty-center-booking/internal/utils"
)

// ImportHandler drives the staged catalog import: two websocket
// sessions (upload and confirmation) plus the request/response review
// endpoints in between.
type ImportHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Staging  *repository.StagingRepo
	Services *repository.ServiceRepo
	Events   *queue.Publisher // nil when the broker is unavailable
}

func NewImportHandler(cfg config.Config, u *repository.UserRepo, st *repository.StagingRepo, sv *repository.ServiceRepo, ev *queue.Publisher) *ImportHandler {
	return &ImportHandler{Cfg: cfg, Users: u, Staging: st, Services: sv, Events: ev}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1 << 20, // workbooks arrive base64-encoded in one message
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsSink adapts a websocket connection to the pipeline's event sink.
type wsSink struct{ conn *websocket.Conn }

func (s wsSink) Send(v any) error { return s.conn.WriteJSON(v) }

// uploadMsg is the single client message of an import session.
type uploadMsg struct {
	Token string                 `json:"token"`
	Files []importer.FilePayload `json:"files"`
}

// confirmMsg is the single client message of a confirmation session.
type confirmMsg struct {
	Token  string   `json:"token"`
	Sheets []string `json:"selected_sheets"`
}

// Upload runs an import session over a websocket.  The handshake
// carries no Authorization header, so the first client message bundles
// the access token with the files; everything after that flows
// server-to-client until the terminal envelope.
func (h *ImportHandler) Upload(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	sink := wsSink{conn: conn}

	var msg uploadMsg
	if err := conn.ReadJSON(&msg); err != nil {
		_ = sink.Send(response.New(false, "Mensaje inicial inválido.", nil, http.StatusBadRequest))
		return nil
	}

	uid, ok := h.verifyAdminToken(c.Request().Context(), msg.Token, sink)
	if !ok {
		return nil
	}
	if len(msg.Files) == 0 {
		_ = sink.Send(response.New(false, "No se recibieron archivos.", nil, http.StatusBadRequest))
		return nil
	}
	if len(msg.Files) > h.Cfg.ImportMaxFiles {
		_ = sink.Send(response.New(false,
			"Máximo "+strconv.Itoa(h.Cfg.ImportMaxFiles)+" archivos por importación.",
			nil, http.StatusBadRequest))
		return nil
	}

	budget := time.Duration(h.Cfg.ImportTimeoutSec) * time.Second
	session := importer.NewSession(h.Staging, budget)
	result, err := session.Run(c.Request().Context(), uid, msg.Files, sink)
	if err != nil {
		log.Printf("import: session for user %d failed: %v", uid, err)
		_ = sink.Send(response.New(false, "Error procesando los archivos.", nil, http.StatusInternalServerError))
		return nil
	}
	_ = sink.Send(response.New(true, "Archivos procesados correctamente.", result, http.StatusOK))
	return nil
}

// Confirm runs a confirmation session over a websocket: the staged
// rows of the selected sheets move into the live catalog record by
// record, then staging is cleared and the event queue is notified.
func (h *ImportHandler) Confirm(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	sink := wsSink{conn: conn}

	var msg confirmMsg
	if err := conn.ReadJSON(&msg); err != nil {
		_ = sink.Send(response.New(false, "Mensaje inicial inválido.", nil, http.StatusBadRequest))
		return nil
	}

	uid, ok := h.verifyAdminToken(c.Request().Context(), msg.Token, sink)
	if !ok {
		return nil
	}
	if len(msg.Sheets) == 0 {
		_ = sink.Send(response.New(false, "Debe seleccionar al menos una hoja.", nil, http.StatusBadRequest))
		return nil
	}

	committer := importer.NewCommitter(h.Staging, h.Services)
	stats, err := committer.Confirm(c.Request().Context(), uid, msg.Sheets, sink)
	if err != nil {
		log.Printf("import: confirmation for user %d failed: %v", uid, err)
		_ = sink.Send(response.New(false, "Error confirmando los registros.", nil, http.StatusInternalServerError))
		return nil
	}

	if stats.TotalProcessed > 0 && h.Events != nil {
		ev := queue.ImportConfirmedEvent{
			UserID:         uid,
			SelectedSheets: msg.Sheets,
			Inserted:       stats.Inserted,
			Duplicated:     stats.Duplicated,
			Failed:         stats.Failed,
			TotalProcessed: stats.TotalProcessed,
			ConfirmedAt:    time.Now().UTC(),
		}
		if err := h.Events.Publish(c.Request().Context(), ev); err != nil {
			// the import already succeeded, the event is best-effort
			log.Printf("import: publish confirmation event: %v", err)
		}
	}

	msgText := "Confirmación completada."
	if stats.Message != "" {
		msgText = stats.Message
	}
	_ = sink.Send(response.New(true, msgText, stats, http.StatusOK))
	return nil
}

// Preview returns the staged rows and errors grouped by sheet.
func (h *ImportHandler) Preview(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Token inválido o expirado.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	preview, err := h.Staging.PreviewForUser(ctx, uid)
	if err != nil {
		return response.ServerError(c, "Error consultando la previsualización.")
	}
	return response.OK(c, "", preview)
}

// UpdateRow edits one staged row before confirmation.  The body is a
// partial update over the closed field set; unknown keys reject the
// whole patch.
func (h *ImportHandler) UpdateRow(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Token inválido o expirado.")
	}
	rowID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Identificador inválido.")
	}
	var updates map[string]any
	if err := c.Bind(&updates); err != nil {
		return response.BadRequest(c, "Cuerpo de la solicitud inválido.")
	}

	patch, err := importer.ValidatePatch(updates)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Staging.UpdateRowForUser(ctx, uid, rowID, patch); err != nil {
		if err == repository.ErrRowNotFound {
			return response.NotFound(c, "Registro no encontrado o no autorizado")
		}
		return response.ServerError(c, "No se pudo actualizar el registro.")
	}
	row, err := h.Staging.GetRowForUser(ctx, uid, rowID)
	if err != nil {
		return response.ServerError(c, "Error consultando el registro.")
	}
	return response.OK(c, "Registro actualizado correctamente.", row)
}

// CancelPreview discards the user's entire staging area.
func (h *ImportHandler) CancelPreview(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Token inválido o expirado.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, errs, err := h.Staging.ClearForUser(ctx, uid)
	if err != nil {
		return response.ServerError(c, "No se pudo cancelar la previsualización.")
	}
	counts := map[string]int64{
		"deleted_rows":   rows,
		"deleted_errors": errs,
		"total_deleted":  rows + errs,
	}
	if rows == 0 && errs == 0 {
		return response.OK(c, "No había datos para eliminar", counts)
	}
	return response.OK(c,
		"Previsualización cancelada: "+strconv.FormatInt(rows, 10)+" registros eliminados",
		counts)
}

// verifyAdminToken authenticates the first websocket message.  The
// token must parse, and the account behind it must still be an active
// administrator; a stale token for a demoted account is rejected.
func (h *ImportHandler) verifyAdminToken(ctx context.Context, token string, sink importer.EventSink) (uint64, bool) {
	uid, _, err := utils.VerifyAccessToken(h.Cfg.JWTSecret, token)
	if err != nil {
		_ = sink.Send(response.New(false, "Token inválido o expirado.", nil, http.StatusUnauthorized))
		return 0, false
	}

	dbCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(dbCtx, uid)
	if err != nil {
		_ = sink.Send(response.New(false, "Token inválido o expirado.", nil, http.StatusUnauthorized))
		return 0, false
	}
	if !u.State || !u.IsAdmin() {
		_ = sink.Send(response.New(false, "No autorizado para esta acción.", nil, http.StatusForbidden))
		return 0, false
	}
	return uid, true
}
