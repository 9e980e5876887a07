package handler

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domainerrors "nearby/internal/domain/errors"
)

func newShareTestServer() (*echo.Echo, *mockShareUsecase) {
	uc := new(mockShareUsecase)
	h := NewShareHandler(ShareHandlerParams{ShareUC: uc, Logger: newDiscardLogger()})

	e := newTestEcho()
	e.GET("/shares/:token", h.Page)
	e.GET("/shares/:token/qr.png", h.QRCode)

	return e, uc
}

func TestShareHandler_Page(t *testing.T) {
	e, uc := newShareTestServer()
	uc.On("OpenSharePage", mock.Anything, "good").Return([]byte("<html><body>Blue Bottle</body></html>"), nil)

	rec, _ := serve(e, http.MethodGet, "/shares/good", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")
	assert.Equal(t, "private, no-store", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "Blue Bottle")
}

func TestShareHandler_PageInvalidLink(t *testing.T) {
	e, uc := newShareTestServer()
	uc.On("OpenSharePage", mock.Anything, "bad").Return(nil, domainerrors.ErrShareLinkInvalid.WithDetails("token is expired"))

	rec, env := serve(e, http.MethodGet, "/shares/bad", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SHARE_LINK_INVALID", env.Error.Code)
	assert.Equal(t, "token is expired", env.Error.Details)
}

func TestShareHandler_QRCode(t *testing.T) {
	e, uc := newShareTestServer()
	png := []byte("\x89PNG\r\n\x1a\n")
	uc.On("ShareQRCode", mock.Anything, "good").Return(png, nil)

	rec, _ := serve(e, http.MethodGet, "/shares/good/qr.png", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, png, rec.Body.Bytes())
}
