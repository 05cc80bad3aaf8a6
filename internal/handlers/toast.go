package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	toast "github.com/cristianadrielbraun/cardqr/web/components/ui/toast"
)

// GenericToast returns a Toast component rendered as HTML for HTMX swaps.
func (h *Handler) GenericToast(c *gin.Context) {
	h.renderToast(c, http.StatusOK, toast.Props{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Variant:     toast.ParseVariant(c.PostForm("variant")),
		Dismissible: c.PostForm("dismissible") == "on",
	})
}

func (h *Handler) renderToast(c *gin.Context, status int, p toast.Props) {
	if p.Position == "" {
		p.Position = toast.PositionBottomRight
	}
	if p.Duration == 0 {
		p.Duration = 2000
	}
	p.Icon = true

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := toast.Toast(p).Render(c.Request.Context(), c.Writer); err != nil {
		h.logger.Error("render toast", "error", err)
	}
}
