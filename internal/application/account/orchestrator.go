package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/usuarios-api/internal/application/ports"
	"github.com/jhoicas/usuarios-api/internal/domain"
	"github.com/jhoicas/usuarios-api/internal/domain/entity"
	"github.com/jhoicas/usuarios-api/internal/domain/repository"
	"github.com/jhoicas/usuarios-api/pkg/logger"
)

// Operaciones del ciclo de vida, usadas como etiqueta en logs, trazas y métricas.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// OutcomeOK resultado de un flujo que terminó sin error.
const OutcomeOK = "OK"

// Recorder observa los flujos del orquestador. Lo implementa infrastructure/metrics.
type Recorder interface {
	ObserveWorkflow(op, outcome string, elapsed time.Duration)
	ObserveCompensation(op, step string, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveWorkflow(string, string, time.Duration) {}
func (nopRecorder) ObserveCompensation(string, string, error)     {}

// Config parámetros del orquestador.
type Config struct {
	ImageBucket string // bucket lógico de las imágenes de perfil
	DefaultRole string // rol si el alta no trae ninguno (USER)
}

// Deps colaboradores externos del orquestador. Log, Metrics y Reads son opcionales.
// Repo debe leer el estado vigente: altas, cambios y bajas deciden a partir de él.
// Reads atiende las consultas y puede ser una caché; por defecto es Repo.
type Deps struct {
	Repo     repository.AccountRepository
	Reads    repository.AccountRepository
	Identity ports.IdentityProvider
	Images   ports.ImageStore
	Hasher   ports.PasswordHasher
	Log      *logger.Logger
	Metrics  Recorder
}

// Orchestrator secuencia las llamadas al proveedor de identidad, al almacén de
// imágenes y al repositorio para crear, actualizar y eliminar cuentas. Ninguno de
// los tres comparte transacción: la consistencia depende del orden de los pasos y
// de deshacer en orden inverso los pasos ya completados cuando uno posterior falla.
//
// Las llamadas externas usan un contexto desacoplado de la cancelación del
// llamador: un paso ya despachado (y su compensación) termina aunque el cliente
// abandone la petición. Los timeouts son responsabilidad de cada adaptador.
type Orchestrator struct {
	repo     repository.AccountRepository
	reads    repository.AccountRepository
	identity ports.IdentityProvider
	images   ports.ImageStore
	hasher   ports.PasswordHasher
	log      *logger.Logger
	metrics  Recorder
	tracer   trace.Tracer
	cfg      Config
}

// NewOrchestrator construye el orquestador.
func NewOrchestrator(d Deps, cfg Config) *Orchestrator {
	if cfg.DefaultRole == "" {
		cfg.DefaultRole = entity.RoleUser
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Metrics == nil {
		d.Metrics = nopRecorder{}
	}
	if d.Reads == nil {
		d.Reads = d.Repo
	}
	return &Orchestrator{
		repo:     d.Repo,
		reads:    d.Reads,
		identity: d.Identity,
		images:   d.Images,
		hasher:   d.Hasher,
		log:      d.Log,
		metrics:  d.Metrics,
		tracer:   otel.Tracer("github.com/jhoicas/usuarios-api/internal/application/account"),
		cfg:      cfg,
	}
}

// workflow estado de una ejecución: pila de compensación, span y logger con contexto.
type workflow struct {
	o     *Orchestrator
	op    string
	span  trace.Span
	log   zerolog.Logger
	start time.Time
	undo  compensation
}

func (o *Orchestrator) begin(ctx context.Context, op string) (context.Context, *workflow) {
	ctx = context.WithoutCancel(ctx)
	ctx, span := o.tracer.Start(ctx, "account."+op)
	return ctx, &workflow{
		o:     o,
		op:    op,
		span:  span,
		log:   o.log.With().Str("op", op).Logger(),
		start: time.Now(),
	}
}

// annotate agrega un campo fijo al logger y al span del flujo.
func (w *workflow) annotate(key, value string) {
	w.log = w.log.With().Str(key, value).Logger()
	w.span.SetAttributes(attribute.String(key, value))
}

func (w *workflow) step(name string) {
	w.log.Debug().Str("step", name).Msg("paso")
	w.span.AddEvent(name)
}

// warn registra un fallo no fatal; el flujo continúa.
func (w *workflow) warn(step string, err error) {
	w.log.Warn().Err(err).Str("step", step).Msg("fallo no fatal, se continúa")
	w.span.AddEvent(step+".failed", trace.WithAttributes(attribute.String("error", err.Error())))
}

// fail deshace los pasos completados y cierra el flujo con err. Los fallos de
// compensación se registran pero nunca reemplazan a err.
func (w *workflow) fail(ctx context.Context, step string, err error) error {
	if w.undo.len() > 0 {
		w.log.Warn().Err(err).Str("step", step).Int("compensaciones", w.undo.len()).Msg("paso fallido, compensando")
	}
	w.undo.unwind(ctx, func(undoStep string, uerr error) {
		w.o.metrics.ObserveCompensation(w.op, undoStep, uerr)
		if uerr != nil {
			w.log.Error().Err(uerr).Str("step", undoStep).Msg("compensación fallida")
			return
		}
		w.log.Info().Str("step", undoStep).Msg("compensación aplicada")
	})
	w.finish(err)
	return err
}

func (w *workflow) finish(err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = domain.Code(err)
		w.span.RecordError(err)
		w.span.SetStatus(codes.Error, outcome)
	}
	w.o.metrics.ObserveWorkflow(w.op, outcome, time.Since(w.start))
	w.span.End()
}

// ensureKind garantiza que err quede clasificado como kind aunque el adaptador no lo haya envuelto.
func ensureKind(kind, err error, msg string) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", kind, msg, err)
}

// persistenceErr clasifica un error del repositorio. Un duplicado de email que llega
// desde la restricción UNIQUE conserva su tipo.
func persistenceErr(err error, msg string) error {
	if errors.Is(err, domain.ErrDuplicateEmail) {
		return err
	}
	return ensureKind(domain.ErrPersistence, err, msg)
}
