package httppresentation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mathieu6700417/conciergeriecordo/internal/application"
	appcatalog "github.com/mathieu6700417/conciergeriecordo/internal/application/catalog"
	appmedia "github.com/mathieu6700417/conciergeriecordo/internal/application/media"
	apporder "github.com/mathieu6700417/conciergeriecordo/internal/application/order"
	apppayment "github.com/mathieu6700417/conciergeriecordo/internal/application/payment"
	domorder "github.com/mathieu6700417/conciergeriecordo/internal/domain/order"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability"
)

const (
	componentHTTPHandler = "http_server"
	headerStripeSig      = "Stripe-Signature"

	maxJSONBody    = 1 << 20
	maxPhotoBody   = 20 << 20
	maxWebhookBody = 1 << 20
)

// UseCases are the operations exposed over HTTP.
type UseCases struct {
	ListServices application.UseCase[appcatalog.ListServicesInput, *appcatalog.ListServicesResult]
	UploadPhoto  application.UseCase[appmedia.UploadPhotoInput, *appmedia.UploadPhotoResult]
	CreateOrder  application.UseCase[apporder.CreateOrderInput, *apporder.CreateOrderResult]
	GetOrder     application.UseCase[string, *domorder.Order]
	Checkout     application.UseCase[apppayment.InitiateCheckoutInput, *apppayment.InitiateCheckoutResult]
	Reconcile    application.UseCase[apppayment.ReconcileInput, *apppayment.ReconcileResult]
}

// Options mounts optional endpoints next to the API.
type Options struct {
	// Metrics is served at /metrics when set.
	Metrics http.Handler
	// MediaDir is served under /media/ when set.
	MediaDir string
	// Health reports dependency health; nil means always healthy.
	Health func(ctx context.Context) error
}

type Handler struct {
	uc   UseCases
	opts Options
	log  observability.Logger
	tel  observability.Observability
}

func NewHandler(uc UseCases, opts Options, logger observability.Logger, tel observability.Observability) *Handler {
	tel = observability.Or(tel)
	if logger == nil {
		logger = tel.Logger()
	}
	return &Handler{
		uc:   uc,
		opts: opts,
		log:  logger.With(observability.F("component", componentHTTPHandler)),
		tel:  tel,
	}
}

// Router wires Trace → request logger + metrics → access log → recoverer → handler.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.withTrace)
	r.Use(ObservabilityMiddleware(h.log, func(r *http.Request) string {
		return middleware.GetReqID(r.Context())
	}, h.tel))
	r.Use(h.withAccessLog)
	r.Use(middleware.Recoverer)

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})

	r.Get("/health", h.handleHealth)
	if h.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.opts.Metrics)
	}
	if h.opts.MediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(h.opts.MediaDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/services", h.handleListServices)
		r.Get("/services/{shoeType}", h.handleListServices)
		r.Post("/photos", h.handleUploadPhoto)
		r.Post("/orders", h.handleCreateOrder)
		r.Get("/orders/{id}", h.handleGetOrder)
		r.Post("/orders/{id}/checkout", h.handleCheckout)
	})
	r.Post("/webhooks/stripe", h.handleStripeWebhook)

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.opts.Health != nil {
		if err := h.opts.Health(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "unhealthy", err.Error())
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) handleListServices(w http.ResponseWriter, r *http.Request) {
	shoeType := chi.URLParam(r, "shoeType")
	if shoeType == "" {
		shoeType = r.URL.Query().Get("shoe_type")
	}

	result, err := h.uc.ListServices.Execute(r.Context(), appcatalog.ListServicesInput{ShoeType: shoeType})
	if err != nil {
		h.writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, listServicesResponse{Services: toServiceResponses(result.Services)})
}

func (h *Handler) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBody)
	var req uploadPhotoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, fmt.Sprintf("invalid body: %v", err))
		return
	}

	result, err := h.uc.UploadPhoto.Execute(r.Context(), appmedia.UploadPhotoInput{Image: req.Photo})
	if err != nil {
		h.writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploadPhotoResponse{
		URL:    result.URL,
		Path:   result.Path,
		TempID: result.TempID,
	})
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, fmt.Sprintf("invalid body: %v", err))
		return
	}

	in := apporder.CreateOrderInput{
		Customer: domorder.Customer{
			Name:    req.Customer.Name,
			Email:   req.Customer.Email,
			Phone:   req.Customer.Phone,
			Company: req.Customer.Company,
		},
		Pairs: make([]apporder.PairInput, 0, len(req.Pairs)),
	}
	for _, p := range req.Pairs {
		in.Pairs = append(in.Pairs, apporder.PairInput{
			ShoeType:    p.ShoeType,
			ServiceIDs:  p.ServiceIDs,
			Photo:       apporder.PhotoRef{URL: p.PhotoURL, Path: p.PhotoPath},
			Description: p.Description,
		})
	}

	result, err := h.uc.CreateOrder.Execute(r.Context(), in)
	if err != nil {
		h.writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(result.Order))
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.uc.GetOrder.Execute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	result, err := h.uc.Checkout.Execute(r.Context(), apppayment.InitiateCheckoutInput{OrderID: chi.URLParam(r, "id")})
	if err != nil {
		h.writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResponse{
		SessionID:   result.SessionID,
		CheckoutURL: result.RedirectURL,
	})
}

// handleStripeWebhook answers 2xx for every event it accepted, including duplicates and
// untracked ones, so the provider stops redelivering. Anything else is retried.
func (h *Handler) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codeInvalidPayload, "payload too large")
			return
		}
		writeError(w, http.StatusBadRequest, codeInvalidPayload, err.Error())
		return
	}

	result, err := h.uc.Reconcile.Execute(r.Context(), apppayment.ReconcileInput{
		Payload:   payload,
		Signature: r.Header.Get(headerStripeSig),
	})
	if err != nil {
		h.writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, webhookResponse{
		Status:    "success",
		EventID:   result.EventID,
		Duplicate: result.Duplicate,
		Ignored:   result.Ignored,
	})
}
