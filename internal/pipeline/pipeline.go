// Package pipeline turns a contact into a branded vCard QR image: crop the
// photo, pick a payload that fits, render the symbol, then apply the mark.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cristianadrielbraun/cardqr/internal/asset"
	"github.com/cristianadrielbraun/cardqr/internal/budget"
	"github.com/cristianadrielbraun/cardqr/internal/compose"
	"github.com/cristianadrielbraun/cardqr/internal/metrics"
	"github.com/cristianadrielbraun/cardqr/internal/qr"
	"github.com/cristianadrielbraun/cardqr/internal/vcard"
)

// ErrCouldNotGenerate is the only error Generate surfaces to users; both QR
// tiers failed for the final payload.
var ErrCouldNotGenerate = errors.New("could not generate QR code")

var tracer = otel.Tracer("github.com/cristianadrielbraun/cardqr/internal/pipeline")

// Request is one render of a contact card.
type Request struct {
	Record vcard.Record
	// Logo is the user's logo; it is only used when LogoUnlocked is set.
	Logo         *asset.Asset
	LogoUnlocked bool
	// Style overrides the pipeline's default style when non-nil.
	Style *qr.Style
}

// Result is the finished image and how it was produced.
type Result struct {
	ID     string
	Raster *image.RGBA
	Symbol *qr.Symbol
	// UsedStyle is the tier that drew the symbol.
	UsedStyle     qr.Tier
	PhotoIncluded bool
	Payload       vcard.Payload
	Decision      budget.Decision
	Mark          compose.Placement
	Record        vcard.Record
}

// Filename is the download name for the result, e.g. Ava_Lee_qr.png.
func (r *Result) Filename(ext string) string {
	return vcard.Filename(r.Record, "qr", ext)
}

// Options configures a Pipeline. Zero fields take the defaults.
type Options struct {
	PhotoWidth           int
	PhotoHeight          int
	PhotoQuality         int
	MaxPhotoPayloadBytes int
	Style                *qr.Style
	// Renderer replaces the two-tier generator.
	Renderer   qr.Renderer
	Compositor *compose.Compositor
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// Pipeline runs the stages in order. It holds no per-render state and is safe
// for concurrent use.
type Pipeline struct {
	photoWidth  int
	photoHeight int
	style       qr.Style

	cropper    *asset.Cropper
	policy     *budget.Policy
	renderer   qr.Renderer
	compositor *compose.Compositor
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// New builds a pipeline from opts.
func New(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		photoWidth:  opts.PhotoWidth,
		photoHeight: opts.PhotoHeight,
		style:       qr.DefaultStyle(),
		cropper:     asset.NewCropper(opts.PhotoQuality),
		policy:      budget.NewPolicy(opts.MaxPhotoPayloadBytes, logger),
		renderer:    opts.Renderer,
		compositor:  opts.Compositor,
		metrics:     opts.Metrics,
		logger:      logger,
	}
	if p.photoWidth <= 0 || p.photoHeight <= 0 {
		p.photoWidth, p.photoHeight = asset.DefaultPhotoWidth, asset.DefaultPhotoHeight
	}
	if opts.Style != nil {
		p.style = *opts.Style
	}
	if p.renderer == nil {
		p.renderer = qr.NewGenerator(logger)
	}
	if p.compositor == nil {
		p.compositor = compose.New()
	}
	return p
}

// Style is the default style applied when a request has none.
func (p *Pipeline) Style() qr.Style { return p.style }

// Generate renders req. The photo is dropped from the payload whenever it
// does not fit, first by the budget policy and, if the symbol still cannot
// hold it, once more after a capacity failure at render time. The only error
// is ErrCouldNotGenerate.
func (p *Pipeline) Generate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	defer p.metrics.ObserveRender(start)

	id := uuid.NewString()
	log := p.logger.With("render_id", id)
	ctx, span := tracer.Start(ctx, "pipeline.Generate", trace.WithAttributes(attribute.String("render.id", id)))
	defer span.End()

	style := p.style
	if req.Style != nil {
		style = *req.Style
	}

	record := req.Record
	photo := p.crop(ctx, record.Photo)
	payload, decision := p.selectPayload(ctx, record, photo)

	sym, err := p.render(ctx, payload, style)
	if err != nil && payload.IncludesPhoto && errors.Is(err, qr.ErrPayloadTooLarge) {
		log.Warn("photo dropped from payload",
			"reason", budget.PathPhotoDroppedAtRender,
			"payload_bytes", payload.ByteLength,
			"photo_bytes", payload.PhotoBytes,
		)
		payload = vcard.Encode(record.WithPhoto(nil), false)
		decision.Path = budget.PathPhotoDroppedAtRender
		sym, err = p.render(ctx, payload, style)
	}
	p.metrics.IncrementPhotoDecision(string(decision.Path))
	if err != nil {
		log.Error("qr render failed", "error", err, "payload_bytes", payload.ByteLength)
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		p.metrics.IncrementFailure()
		return nil, fmt.Errorf("%w: %w", ErrCouldNotGenerate, err)
	}
	p.metrics.IncrementRender(string(sym.Tier))

	raster, mark := p.applyMark(ctx, sym, req.Logo, req.LogoUnlocked)
	p.metrics.IncrementMark(string(mark.Kind))

	span.SetAttributes(
		attribute.String("qr.tier", string(sym.Tier)),
		attribute.Bool("qr.photo_included", payload.IncludesPhoto),
		attribute.Int("qr.payload_bytes", payload.ByteLength),
	)
	log.Info("render complete",
		"tier", sym.Tier,
		"photo_included", payload.IncludesPhoto,
		"path", decision.Path,
		"bytes", payload.ByteLength,
		"mark", mark.Kind,
		"duration", time.Since(start),
	)

	return &Result{
		ID:            id,
		Raster:        raster,
		Symbol:        sym,
		UsedStyle:     sym.Tier,
		PhotoIncluded: payload.IncludesPhoto,
		Payload:       payload,
		Decision:      decision,
		Mark:          mark,
		Record:        record,
	}, nil
}

func (p *Pipeline) crop(ctx context.Context, photo *asset.Asset) *asset.Asset {
	if photo == nil {
		return nil
	}
	_, span := tracer.Start(ctx, "pipeline.crop")
	defer span.End()
	out := p.cropper.AutoCrop(photo, p.photoWidth, p.photoHeight)
	span.SetAttributes(attribute.Bool("photo.decoded", photo.Decoded()), attribute.Int("photo.bytes", out.Len()))
	return out
}

func (p *Pipeline) selectPayload(ctx context.Context, record vcard.Record, photo *asset.Asset) (vcard.Payload, budget.Decision) {
	_, span := tracer.Start(ctx, "pipeline.select")
	defer span.End()
	payload, decision := p.policy.Select(record, photo)
	span.SetAttributes(attribute.String("budget.path", string(decision.Path)))
	return payload, decision
}

func (p *Pipeline) render(ctx context.Context, payload vcard.Payload, style qr.Style) (*qr.Symbol, error) {
	_, span := tracer.Start(ctx, "pipeline.render")
	defer span.End()
	sym, err := p.renderer.Render(payload, style)
	if err == nil && sym == nil {
		err = &qr.RenderFailure{Tier: qr.TierBasic, Err: qr.ErrRendererUnavailable}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
	}
	return sym, err
}

func (p *Pipeline) applyMark(ctx context.Context, sym *qr.Symbol, logo *asset.Asset, unlocked bool) (*image.RGBA, compose.Placement) {
	_, span := tracer.Start(ctx, "pipeline.compose")
	defer span.End()
	raster, mark := p.compositor.ApplyMark(sym, logo, unlocked)
	span.SetAttributes(attribute.String("mark.kind", string(mark.Kind)), attribute.Float64("mark.coverage", mark.Coverage))
	return raster, mark
}
