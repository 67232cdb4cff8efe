package httpd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mainakxbuilds/makXsensi-frontend/internal/checkout"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/domain"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/health"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/metrics"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/notify"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/repository"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/storefront"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/widget"
)

type Handler struct {
	orch     *checkout.Orchestrator
	bridge   *widget.Bridge
	pages    *storefront.Registry
	catalog  *storefront.Catalog
	repo     *repository.SQLiteRepo
	warmer   *health.Warmer
	gatherer prometheus.Gatherer
	log      *zap.Logger
	validate *validator.Validate
}

type Deps struct {
	Orchestrator *checkout.Orchestrator
	Bridge       *widget.Bridge
	Pages        *storefront.Registry
	Catalog      *storefront.Catalog
	Repo         *repository.SQLiteRepo
	Warmer       *health.Warmer
	Gatherer     prometheus.Gatherer
	Logger       *zap.Logger
}

func NewHandler(d Deps) *Handler {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		orch:     d.Orchestrator,
		bridge:   d.Bridge,
		pages:    d.Pages,
		catalog:  d.Catalog,
		repo:     d.Repo,
		warmer:   d.Warmer,
		gatherer: d.Gatherer,
		log:      log,
		validate: validator.New(),
	}
}

type RouteConfig struct {
	AllowedOrigins []string
	SiteDir        string
}

func (h *Handler) Routes(rc RouteConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)
	if h.gatherer != nil {
		r.Handle("/metrics", metrics.Handler(h.gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rc.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           300,
		}))

		r.Get("/packs", h.ListPacks)

		r.Post("/pages", h.OpenPage)
		r.Get("/pages/{pageID}", h.GetPage)
		r.Delete("/pages/{pageID}", h.ClosePage)
		r.Post("/pages/{pageID}/buy", h.Buy)
		r.Post("/pages/{pageID}/overlays/{kind}/close", h.CloseOverlay)
		r.Post("/pages/{pageID}/overlays/{kind}/click", h.ClickOverlay)
		r.Post("/pages/{pageID}/keydown", h.KeyDown)
		r.Post("/pages/{pageID}/offline", h.Offline)

		r.Get("/checkout/{checkoutID}", h.GetCheckout)
		r.Post("/checkout/{checkoutID}/complete", h.CompleteCheckout)
		r.Post("/checkout/{checkoutID}/dismiss", h.DismissCheckout)
		r.Post("/checkout/{checkoutID}/failed", h.FailCheckout)

		if h.repo != nil {
			r.Get("/attempts", h.ListAttempts)
			r.Get("/attempts/{attemptID}", h.GetAttempt)
		}
	})

	if rc.SiteDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(rc.SiteDir)))
	}

	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// decode reads and validates a JSON body into v.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResp{Message: "MakXsensi storefront is running"}
	if h.warmer != nil {
		resp.Backend = h.warmer.Ready()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListPacks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Packs())
}

func (h *Handler) pageState(p *storefront.Page) PageResp {
	return PageResp{
		PageID:   p.ID,
		Buttons:  p.Buttons(),
		Overlays: p.Presenter.Overlays(),
	}
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request) (*storefront.Page, bool) {
	p, err := h.pages.Get(chi.URLParam(r, "pageID"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return p, true
}

// POST /api/pages
func (h *Handler) OpenPage(w http.ResponseWriter, r *http.Request) {
	p := h.pages.Open()
	resp := h.pageState(p)
	resp.Packs = h.catalog.Packs()
	writeJSON(w, http.StatusCreated, resp)
}

// GET /api/pages/{pageID}
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	p, ok := h.page(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.pageState(p))
}

// DELETE /api/pages/{pageID}
func (h *Handler) ClosePage(w http.ResponseWriter, r *http.Request) {
	if err := h.pages.Close(chi.URLParam(r, "pageID")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/pages/{pageID}/buy
func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	p, ok := h.page(w, r)
	if !ok {
		return
	}

	var req BuyReq
	if !h.decode(w, r, &req) {
		return
	}

	btn, err := p.Button(req.PackName)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	// the catalog owns the price; a client amount is only a consistency check
	pack, ok := h.catalog.Lookup(req.PackName)
	if !ok {
		writeError(w, http.StatusNotFound, storefront.ErrUnknownPack.Error())
		return
	}
	if req.Amount != 0 && req.Amount != pack.AmountMinor {
		writeError(w, http.StatusBadRequest, "amount does not match pack price")
		return
	}

	a := h.orch.Buy(r.Context(), btn, p.Presenter, domain.PurchaseRequest{PackName: pack.Name, Amount: pack.AmountMinor})
	if errors.Is(a.Err, domain.ErrControlBusy) {
		writeError(w, http.StatusConflict, a.Err.Error())
		return
	}

	resp := BuyResp{AttemptID: a.ID, CheckoutID: a.CheckoutID, Page: h.pageState(p)}
	if a.Err != nil {
		resp.Error = a.Err.Error()
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.Checkout = toCheckoutConfig(a.Options)
	writeJSON(w, http.StatusAccepted, resp)
}

func overlayKind(r *http.Request) (notify.Kind, bool) {
	switch k := notify.Kind(chi.URLParam(r, "kind")); k {
	case notify.KindSuccess, notify.KindError:
		return k, true
	}
	return "", false
}

// POST /api/pages/{pageID}/overlays/{kind}/close
func (h *Handler) CloseOverlay(w http.ResponseWriter, r *http.Request) {
	p, ok := h.page(w, r)
	if !ok {
		return
	}
	kind, ok := overlayKind(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown overlay kind")
		return
	}
	writeJSON(w, http.StatusOK, DismissResp{Dismissed: p.Presenter.Close(kind)})
}

// POST /api/pages/{pageID}/overlays/{kind}/click
func (h *Handler) ClickOverlay(w http.ResponseWriter, r *http.Request) {
	p, ok := h.page(w, r)
	if !ok {
		return
	}
	kind, ok := overlayKind(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown overlay kind")
		return
	}
	var req ClickReq
	if !h.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, DismissResp{Dismissed: p.Presenter.Click(kind, req.Region)})
}

// POST /api/pages/{pageID}/keydown
func (h *Handler) KeyDown(w http.ResponseWriter, r *http.Request) {
	p, ok := h.page(w, r)
	if !ok {
		return
	}
	var req KeyReq
	if !h.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, DismissResp{Dismissed: p.Presenter.KeyDown(req.Key)})
}

// POST /api/pages/{pageID}/offline
func (h *Handler) Offline(w http.ResponseWriter, r *http.Request) {
	p, ok := h.page(w, r)
	if !ok {
		return
	}
	p.Offline()
	writeJSON(w, http.StatusOK, h.pageState(p))
}

func writeBridgeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, widget.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, widget.ErrSessionSettled):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// GET /api/checkout/{checkoutID}
func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	s, err := h.bridge.Session(chi.URLParam(r, "checkoutID"))
	if err != nil {
		writeBridgeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CheckoutResp{
		CheckoutID: s.ID,
		Outcome:    s.Outcome,
		OpenedAt:   s.OpenedAt,
		Config:     toCheckoutConfig(s.Options),
	})
}

// POST /api/checkout/{checkoutID}/complete
func (h *Handler) CompleteCheckout(w http.ResponseWriter, r *http.Request) {
	var res domain.PaymentResult
	if !h.decode(w, r, &res) {
		return
	}
	if err := h.bridge.Complete(r.Context(), chi.URLParam(r, "checkoutID"), res); err != nil {
		writeBridgeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/checkout/{checkoutID}/dismiss
func (h *Handler) DismissCheckout(w http.ResponseWriter, r *http.Request) {
	if err := h.bridge.Dismiss(chi.URLParam(r, "checkoutID")); err != nil {
		writeBridgeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/checkout/{checkoutID}/failed
func (h *Handler) FailCheckout(w http.ResponseWriter, r *http.Request) {
	var req PaymentFailedReq
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.bridge.Fail(chi.URLParam(r, "checkoutID"), req.Error); err != nil {
		writeBridgeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/attempts?packName=&gatewayOrderId=&status=&limit=&offset=
func (h *Handler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.AttemptFilter{
		PackName:       q.Get("packName"),
		GatewayOrderID: q.Get("gatewayOrderId"),
	}
	if st := q.Get("status"); st != "" {
		filter.Status = domain.AttemptStatus(st)
	}

	limit := 50
	offset := 0
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	items, err := h.repo.ListAttempts(r.Context(), filter, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]AttemptItem, 0, len(items))
	for _, a := range items {
		out = append(out, toAttemptItem(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/attempts/{attemptID}
func (h *Handler) GetAttempt(w http.ResponseWriter, r *http.Request) {
	a, err := h.repo.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"))
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "attempt not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toAttemptItem(*a))
}
