package qr

import (
	"fmt"
	"log/slog"

	"github.com/cristianadrielbraun/cardqr/internal/vcard"
)

// Renderer turns a payload into a symbol raster.
type Renderer interface {
	Render(p vcard.Payload, style Style) (*Symbol, error)
}

// Generator tries the styled tier and falls back to the basic tier with the
// same payload. Both tiers always encode at error-correction level H.
type Generator struct {
	Styled Renderer
	Basic  Renderer
	logger *slog.Logger
}

// NewGenerator wires the styled and basic renderers.
func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{Styled: StyledRenderer{}, Basic: BasicRenderer{}, logger: logger}
}

// Render returns the styled symbol, or the basic one if styling fails. When
// both tiers fail the error is a *RenderFailure wrapping the basic tier's cause.
func (g *Generator) Render(p vcard.Payload, style Style) (*Symbol, error) {
	sym, err := g.renderStyled(p, style)
	if err == nil {
		return sym, nil
	}
	g.log().Warn("styled renderer failed, falling back to basic", "error", err, "payload_bytes", p.ByteLength)

	if g.Basic == nil {
		return nil, &RenderFailure{Tier: TierBasic, Err: ErrRendererUnavailable}
	}
	sym, err = g.Basic.Render(p, style)
	if err != nil {
		return nil, &RenderFailure{Tier: TierBasic, Err: err}
	}
	if sym == nil {
		return nil, &RenderFailure{Tier: TierBasic, Err: ErrRendererUnavailable}
	}
	sym.Tier = TierBasic
	return sym, nil
}

func (g *Generator) renderStyled(p vcard.Payload, style Style) (sym *Symbol, err error) {
	if g.Styled == nil {
		return nil, ErrRendererUnavailable
	}
	defer func() {
		if r := recover(); r != nil {
			sym, err = nil, fmt.Errorf("styled renderer panic: %v", r)
		}
	}()
	sym, err = g.Styled.Render(p, style)
	if err == nil && sym == nil {
		err = ErrRendererUnavailable
	}
	if sym != nil {
		sym.Tier = TierStyled
	}
	return sym, err
}

func (g *Generator) log() *slog.Logger {
	if g.logger == nil {
		return slog.Default()
	}
	return g.logger
}
