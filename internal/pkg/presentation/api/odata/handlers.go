package odata

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/diwise/odata-service/internal/pkg/application/provider"
	"github.com/diwise/odata-service/pkg/odata"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("odata-service/api")

const (
	ContentTypeAtomXML  string = "application/atom+xml;charset=utf-8"
	ContentTypeXML      string = "application/xml;charset=iso-8859-1"
	ContentTypeJSON     string = "application/json"
	ContentTypeYAML     string = "application/x-yaml"
	ContentTypePlainXML string = "application/xml"
)

// RegisterHandlers mounts the OData surface on the router. A non root
// service root acts as a mount prefix that is stripped before the core
// sees the resource path, so the provider always works with root relative
// paths.
func RegisterHandlers(ctx context.Context, r *chi.Mux, serviceRoot string, p *provider.Provider) error {

	log := logging.GetFromContext(ctx)

	register := func(r chi.Router) {
		r.Use(Logger(log))

		r.Get("/", NewServiceDocumentHandler(p))
		r.Get("/$metadata", NewMetadataDocumentHandler(p))
		r.Get("/*", NewResourceHandler(p))
	}

	if serviceRoot == "" || serviceRoot == "/" {
		r.Group(register)
	} else {
		r.Route(serviceRoot, register)
	}

	return nil
}

// Logger stores a trace id annotated logger in the request context
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			_, ctx, _ = o11y.AddTraceIDToLoggerAndStoreInContext(
				trace.SpanFromContext(ctx),
				logger,
				ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewServiceDocumentHandler handles GET requests for the service document
// advertising the available collections
func NewServiceDocumentHandler(p *provider.Provider) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Content-Type", ContentTypeXML)
		w.WriteHeader(http.StatusOK)
		w.Write(p.ServiceDocument())
	})
}

// NewMetadataDocumentHandler handles GET requests for the EDMX metadata
// document
func NewMetadataDocumentHandler(p *provider.Provider) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Content-Type", ContentTypeXML)
		w.WriteHeader(http.StatusOK)
		w.Write(p.MetadataDocument())
	})
}

// NewResourceHandler handles GET requests for collections and single
// entries, including the $top/$skip options and the format parameter
func NewResourceHandler(p *provider.Provider) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx := r.Context()

		ctx, span := tracer.Start(ctx, "resolve-resource")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		_, ctx, log := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

		resourcePath := chi.URLParam(r, "*")
		if r.URL.RawQuery != "" {
			resourcePath += "?" + r.URL.RawQuery
		}

		query, result, err := p.Resolve(ctx, resourcePath)
		if err != nil {
			if !errors.Is(err, odata.ErrNotFound) {
				log.Error("failed to resolve query", "path", resourcePath, "err", err.Error())
			}
			mapProviderError(w, err)
			return
		}

		body, contentType, err := encodeResult(p, query, result, r.URL.Query().Get("format"))
		if err != nil {
			log.Error("failed to encode result", "path", resourcePath, "err", err.Error())
			mapProviderError(w, err)
			return
		}

		w.Header().Add("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	})
}

func mapProviderError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	if errors.Is(err, odata.ErrNotFound) {
		status = http.StatusNotFound
	} else if errors.Is(err, odata.ErrBadRequest) {
		status = http.StatusBadRequest
	}

	http.Error(w, err.Error(), status)
}
