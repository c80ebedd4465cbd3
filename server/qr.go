package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/NikhilRaikwar/DrawParty/domain"
)

// QRHandler renders the join link for a room code as a PNG. The code is
// validated but not resolved; a QR for a dead room scans to a join page
// that reports room-not-found.
func (s *Server) QRHandler(ctx *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(ctx.Param("code")))
	if err := domain.ValidateRoomCode(code); err != nil {
		fail(ctx, "qr", err)
		return
	}

	joinURL := fmt.Sprintf("%s/join/%s", strings.TrimRight(s.baseURL, "/"), code)
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		fail(ctx, "qr", err)
		return
	}
	ctx.Data(http.StatusOK, "image/png", png)
}
