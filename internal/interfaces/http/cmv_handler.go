package http

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cmv-api/internal/application/cmv"
	"github.com/jhoicas/cmv-api/internal/application/dto"
	"github.com/jhoicas/cmv-api/internal/domain"
	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/jhoicas/cmv-api/internal/domain/repository"
	"github.com/jhoicas/cmv-api/internal/infrastructure/xlsx"
	"github.com/jhoicas/cmv-api/pkg/logger"
)

// CmvHandlerDeps casos de uso del motor de conciliación.
type CmvHandlerDeps struct {
	Sync      *cmv.WeeklySync
	Store     *cmv.RecordStore
	Bulk      *cmv.BulkRecalculator
	Retro     *cmv.RetroSync
	Health    *cmv.HealthScorer
	Cma       *cmv.CmaEngine
	Snapshots *cmv.SnapshotRegistry
	Venues    repository.VenueRepository
	// DefaultDateField campo de fecha de compras cuando la petición no lo indica.
	DefaultDateField string
	Log              *logger.Logger
}

// CmvHandler maneja las peticiones HTTP del CMV semanal (protegido).
type CmvHandler struct {
	d   CmvHandlerDeps
	now func() time.Time
}

// NewCmvHandler construye el handler.
func NewCmvHandler(d CmvHandlerDeps) *CmvHandler {
	if d.DefaultDateField == "" {
		d.DefaultDateField = entity.PurchaseDateCompetency
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return &CmvHandler{d: d, now: time.Now}
}

func (h *CmvHandler) dateField(requested string) string {
	if requested == "" {
		return h.d.DefaultDateField
	}
	return requested
}

// Sync godoc
// @Summary      Sincronizar semana de CMV
// @Description  Agrega ventas, compras, conteos y CMA de la semana ISO y hace upsert del registro (borrador).
//
//	Con recalculate_all=true recalcula todos los registros del local a partir de los datos almacenados.
//
// @Tags         cmv
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SyncWeekRequest  true  "venue_id, year, week (vacíos = semana actual)"
// @Success      200   {object}  cmv.SyncResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/cmv/sync [post]
func (h *CmvHandler) Sync(c *fiber.Ctx) error {
	var in dto.SyncWeekRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	actor := GetUserID(c)

	if in.RecalculateAll {
		// Local desconocido: 404 como en la sincronización de una semana.
		if _, err := h.d.Venues.GetSettings(c.Context(), in.VenueID); err != nil {
			return h.writeError(c, err)
		}
		res, err := h.d.Bulk.RecalculateAll(c.Context(), in.VenueID, actor)
		if err != nil {
			return h.writeError(c, err)
		}
		return c.JSON(res)
	}

	key := cmv.CurrentWeek(in.VenueID, h.now())
	if in.Year != 0 || in.Week != 0 {
		if in.Year == 0 || in.Week == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "year y week van juntos"})
		}
		key.Year, key.Week = in.Year, in.Week
	}
	res, err := h.d.Sync.SyncWeek(c.Context(), key, h.dateField(in.PurchaseDateField), actor)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(res)
}

// Get godoc
// @Summary      Registro semanal de CMV
// @Tags         cmv
// @Security     Bearer
// @Produce      json
// @Param        venue  path  int  true  "Local"
// @Param        year   path  int  true  "Año ISO"
// @Param        week   path  int  true  "Semana ISO"
// @Success      200  {object}  entity.WeeklyCmvRecord
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cmv/weekly/{venue}/{year}/{week} [get]
func (h *CmvHandler) Get(c *fiber.Ctx) error {
	key, err := weekKeyParams(c)
	if err != nil {
		return h.writeError(c, err)
	}
	rec, err := h.d.Store.Get(c.Context(), key)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(rec)
}

// Patch godoc
// @Summary      Editar registro semanal
// @Description  Edición manual de entradas; los derivados se recalculan siempre. Permitido en registros finales.
// @Tags         cmv
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        venue  path  int  true  "Local"
// @Param        year   path  int  true  "Año ISO"
// @Param        week   path  int  true  "Semana ISO"
// @Param        body   body  dto.PatchWeeklyCmvRequest  true  "Campos a editar"
// @Success      200  {object}  entity.WeeklyCmvRecord
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/cmv/weekly/{venue}/{year}/{week} [patch]
func (h *CmvHandler) Patch(c *fiber.Ctx) error {
	key, err := weekKeyParams(c)
	if err != nil {
		return h.writeError(c, err)
	}
	var in dto.PatchWeeklyCmvRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	rec, err := h.d.Store.Patch(c.Context(), key, cmv.RecordPatch(in), GetUserID(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(rec)
}

// Finalize godoc
// @Summary      Finalizar registro semanal
// @Description  Congela el registro: la sincronización y el recálculo masivo lo omiten.
// @Tags         cmv
// @Security     Bearer
// @Produce      json
// @Param        venue  path  int  true  "Local"
// @Param        year   path  int  true  "Año ISO"
// @Param        week   path  int  true  "Semana ISO"
// @Success      200  {object}  entity.WeeklyCmvRecord
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cmv/weekly/{venue}/{year}/{week}/finalize [post]
func (h *CmvHandler) Finalize(c *fiber.Ctx) error {
	return h.setStatus(c, entity.CmvStatusFinal)
}

// Unlock godoc
// @Summary      Desbloquear registro semanal
// @Tags         cmv
// @Security     Bearer
// @Produce      json
// @Param        venue  path  int  true  "Local"
// @Param        year   path  int  true  "Año ISO"
// @Param        week   path  int  true  "Semana ISO"
// @Success      200  {object}  entity.WeeklyCmvRecord
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cmv/weekly/{venue}/{year}/{week}/unlock [post]
func (h *CmvHandler) Unlock(c *fiber.Ctx) error {
	return h.setStatus(c, entity.CmvStatusDraft)
}

func (h *CmvHandler) setStatus(c *fiber.Ctx, status string) error {
	key, err := weekKeyParams(c)
	if err != nil {
		return h.writeError(c, err)
	}
	rec, err := h.d.Store.SetStatus(c.Context(), key, status, GetUserID(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(rec)
}

// List godoc
// @Summary      Listar registros semanales de un local
// @Tags         cmv
// @Security     Bearer
// @Produce      json
// @Param        venue_id   query  int  true   "Local"
// @Param        year_from  query  int  false  "Año inicial"
// @Param        year_to    query  int  false  "Año final"
// @Param        limit      query  int  false  "Tamaño de página (default 20, máx. 100)"
// @Param        offset     query  int  false  "Desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/cmv/weekly [get]
func (h *CmvHandler) List(c *fiber.Ctx) error {
	venueID, filter, err := listParams(c)
	if err != nil {
		return h.writeError(c, err)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return h.writeError(c, fmt.Errorf("paginación: %w", domain.ErrInvalidInput))
	}
	page.DefaultPage()
	if page.Limit > 100 {
		page.Limit = 100
	}
	records, err := h.d.Store.List(c.Context(), venueID, filter)
	if err != nil {
		return h.writeError(c, err)
	}
	total := len(records)
	start := min(page.Offset, total)
	end := min(start+page.Limit, total)
	out := records[start:end]
	if out == nil {
		out = []*entity.WeeklyCmvRecord{}
	}
	return c.JSON(fiber.Map{
		"total":   total,
		"records": out,
		"page":    dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// Export godoc
// @Summary      Exportar registros semanales a Excel
// @Tags         cmv
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        venue_id   query  int  true   "Local"
// @Param        year_from  query  int  false  "Año inicial"
// @Param        year_to    query  int  false  "Año final"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/cmv/weekly/export [get]
func (h *CmvHandler) Export(c *fiber.Ctx) error {
	venueID, filter, err := listParams(c)
	if err != nil {
		return h.writeError(c, err)
	}
	records, err := h.d.Store.List(c.Context(), venueID, filter)
	if err != nil {
		return h.writeError(c, err)
	}
	var buf bytes.Buffer
	if err := xlsx.WriteWeeklyCmv(&buf, records); err != nil {
		return h.writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="cmv-semanal-%d.xlsx"`, venueID))
	return c.Send(buf.Bytes())
}

// Recalculate godoc
// @Summary      Recálculo masivo de varios locales
// @Description  Recalcula los derivados de todos los registros no finales. venue_ids vacío = todos los locales.
// @Tags         cmv
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecalculateRequest  false  "venue_ids"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/cmv/recalculate [post]
func (h *CmvHandler) Recalculate(c *fiber.Ctx) error {
	var in dto.RecalculateRequest
	if len(c.Body()) > 0 {
		if ok, err := parseAndValidate(c, &in); !ok {
			return err
		}
	}
	venueIDs := in.VenueIDs
	if len(venueIDs) == 0 {
		ids, err := h.d.Venues.ListIDs(c.Context())
		if err != nil {
			return h.writeError(c, err)
		}
		venueIDs = ids
	}
	results := h.d.Bulk.RecalculateVenues(c.Context(), venueIDs, GetUserID(c))
	return c.JSON(fiber.Map{
		"total":   len(results),
		"results": results,
	})
}

// RetroSync godoc
// @Summary      Sincronización retroactiva
// @Description  Re-sincroniza cada semana ISO del rango en secuencia. Las semanas finales se omiten.
// @Tags         cmv
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RetroSyncRequest  true  "venue_id, date_from, date_to"
// @Success      200  {object}  cmv.RetroResult
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/cmv/retro-sync [post]
func (h *CmvHandler) RetroSync(c *fiber.Ctx) error {
	var in dto.RetroSyncRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	from, to, err := parseRange(in.DateFrom, in.DateTo)
	if err != nil {
		return h.writeError(c, err)
	}
	res, err := h.d.Retro.Run(c.Context(), in.VenueID, from, to, h.dateField(in.PurchaseDateField), GetUserID(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(res)
}

// Health godoc
// @Summary      Salud de datos del CMV de un local
// @Tags         cmv
// @Security     Bearer
// @Produce      json
// @Param        venue_id   query  int  true   "Local"
// @Param        year_from  query  int  false  "Año inicial"
// @Param        year_to    query  int  false  "Año final"
// @Success      200  {object}  cmv.HealthReport
// @Router       /api/cmv/health [get]
func (h *CmvHandler) Health(c *fiber.Ctx) error {
	venueID, filter, err := listParams(c)
	if err != nil {
		return h.writeError(c, err)
	}
	rep, err := h.d.Health.Score(c.Context(), venueID, filter)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(rep)
}

// Cma godoc
// @Summary      Calcular CMA de un período
// @Tags         cmv
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CmaRequest  true  "venue_id, period_start, period_end, purchase_date_field (creation|competency, obligatorio)"
// @Success      200  {object}  entity.CmaResult
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/cmv/cma [post]
func (h *CmvHandler) Cma(c *fiber.Ctx) error {
	var in dto.CmaRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	start, end, err := parseRange(in.PeriodStart, in.PeriodEnd)
	if err != nil {
		return h.writeError(c, err)
	}
	res, err := h.d.Cma.Compute(c.Context(), in.VenueID, start, end, in.PurchaseDateField)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(res)
}

// CreateSnapshot godoc
// @Summary      Registrar conteo de inventario
// @Tags         cmv
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSnapshotRequest  true  "venue_id, category, count_date, ending_quantity, unit_cost"
// @Success      201  {object}  dto.SnapshotResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/cmv/snapshots [post]
func (h *CmvHandler) CreateSnapshot(c *fiber.Ctx) error {
	var in dto.CreateSnapshotRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	countDate, err := time.Parse(time.DateOnly, in.CountDate)
	if err != nil {
		return h.writeError(c, domain.ErrInvalidInput)
	}
	s := &entity.InventorySnapshot{
		VenueID:        in.VenueID,
		Category:       in.Category,
		CountDate:      countDate,
		EndingQuantity: in.EndingQuantity,
		UnitCost:       in.UnitCost,
	}
	if err := h.d.Snapshots.Register(c.Context(), s, GetUserID(c)); err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SnapshotResponse{
		ID:             s.ID,
		VenueID:        s.VenueID,
		Category:       s.Category,
		CountDate:      s.CountDate.Format(time.DateOnly),
		EndingQuantity: s.EndingQuantity,
		UnitCost:       s.UnitCost,
		Valuation:      s.Valuation(),
	})
}

// writeError traduce errores de dominio a códigos HTTP.
func (h *CmvHandler) writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrRecordFinal):
		status, code = fiber.StatusConflict, "RECORD_FINAL"
	case errors.Is(err, domain.ErrLockNotObtained):
		status, code = fiber.StatusConflict, "RECALCULATION_IN_PROGRESS"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrDataSourceNotConfigured):
		status, code = fiber.StatusUnprocessableEntity, "DATA_SOURCE_NOT_CONFIGURED"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	}
	if status == fiber.StatusInternalServerError {
		h.d.Log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func weekKeyParams(c *fiber.Ctx) (entity.WeekKey, error) {
	venueID, err1 := c.ParamsInt("venue")
	year, err2 := c.ParamsInt("year")
	week, err3 := c.ParamsInt("week")
	if err1 != nil || err2 != nil || err3 != nil || venueID <= 0 || week < 1 || week > 53 {
		return entity.WeekKey{}, fmt.Errorf("venue/year/week inválidos: %w", domain.ErrInvalidInput)
	}
	return entity.WeekKey{VenueID: int64(venueID), Year: year, Week: week}, nil
}

func listParams(c *fiber.Ctx) (int64, repository.WeeklyCmvFilter, error) {
	venueID := c.QueryInt("venue_id")
	if venueID <= 0 {
		return 0, repository.WeeklyCmvFilter{}, fmt.Errorf("venue_id requerido: %w", domain.ErrInvalidInput)
	}
	filter := repository.WeeklyCmvFilter{
		YearFrom: c.QueryInt("year_from"),
		YearTo:   c.QueryInt("year_to"),
	}
	return int64(venueID), filter, nil
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("fecha %q: %w", from, domain.ErrInvalidInput)
	}
	end, err := time.Parse(time.DateOnly, to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("fecha %q: %w", to, domain.ErrInvalidInput)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("rango invertido: %w", domain.ErrInvalidInput)
	}
	return start, end, nil
}
