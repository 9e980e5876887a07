// Package share presents shares that could not go through the native share
// target: a stored HTML page behind a signed link, with a QR code of the link
// and an optional push notification to the client device.
package share

import (
	"context"
	"log/slog"
	"strings"

	"nearby/config"
	"nearby/internal/domain/entity"
	domainerrors "nearby/internal/domain/errors"
	"nearby/internal/domain/repository"
	"nearby/internal/domain/service"
	"nearby/internal/errors"
	"nearby/internal/infra/notification"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const (
	pageKeyPrefix   = "shares/"
	pageContentType = "text/html; charset=utf-8"
	pushBody        = "Tap to open the shared place"
)

type presenter struct {
	store         repository.KeyValueStore
	tokens        service.ShareTokenService
	qrcodes       service.QRCodeService
	notifier      service.NotificationService
	publicBaseURL string
	logger        *slog.Logger
}

// PresenterParams holds dependencies for the fallback presenter, injected by Fx
type PresenterParams struct {
	fx.In

	Config   *config.Config
	Store    repository.KeyValueStore
	Tokens   service.ShareTokenService
	QRCodes  service.QRCodeService
	Notifier service.NotificationService `optional:"true"`
	Logger   *slog.Logger
}

// NewPresenter creates the fallback presenter
func NewPresenter(params PresenterParams) service.FallbackPresenter {
	return &presenter{
		store:         params.Store,
		tokens:        params.Tokens,
		qrcodes:       params.QRCodes,
		notifier:      params.Notifier,
		publicBaseURL: strings.TrimRight(params.Config.HTTP.PublicBaseURL, "/"),
		logger:        params.Logger,
	}
}

func pageKey(shareID uuid.UUID) string {
	return pageKeyPrefix + shareID.String() + ".html"
}

func (p *presenter) link(token string) string {
	return p.publicBaseURL + "/shares/" + token
}

func (p *presenter) Present(ctx context.Context, page *service.FallbackPage, deviceToken string) (string, error) {
	shareID := uuid.New()

	token, err := p.tokens.Generate(shareID)
	if err != nil {
		return "", err
	}
	link := p.link(token)

	html, err := renderPage(page, link, p.qrDataURL(link))
	if err != nil {
		return "", err
	}

	if err := p.store.Put(ctx, pageKey(shareID), html, pageContentType); err != nil {
		return "", domainerrors.NewStorageError(err, "failed to store share page")
	}

	p.logger.InfoContext(ctx, "Share page stored",
		slog.String("share_id", shareID.String()),
		slog.Int("photos", len(page.Photos)),
	)

	if deviceToken != "" && p.notifier != nil {
		err := p.notifier.SendSingleNotification(ctx, deviceToken, page.Title, pushBody, map[string]string{
			notification.DataKeyLink: link,
			"share_id":               shareID.String(),
		})
		if err != nil {
			p.logger.WarnContext(ctx, "Failed to push share page to device",
				slog.String("share_id", shareID.String()),
				slog.Any("error", err),
			)
		}
	}

	return link, nil
}

// qrDataURL returns "" when the link cannot be encoded, e.g. without a public base URL.
func (p *presenter) qrDataURL(link string) string {
	png, err := p.qrcodes.GenerateLinkQR(link)
	if err != nil {
		p.logger.Debug("Share page without QR code", slog.Any("error", err))

		return ""
	}

	return entity.EncodeDataURL("image/png", png)
}

func (p *presenter) Open(ctx context.Context, token string) ([]byte, error) {
	claims, err := p.tokens.Validate(token)
	if err != nil {
		return nil, domainerrors.ErrShareLinkInvalid.WithDetails(err.Error())
	}

	html, err := p.store.Get(ctx, pageKey(claims.ShareID))
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return nil, domainerrors.ErrShareLinkInvalid.WithDetails("share page no longer exists")
		}

		return nil, domainerrors.NewStorageError(err, "failed to load share page")
	}

	return html, nil
}

func (p *presenter) QRCode(_ context.Context, token string) ([]byte, error) {
	if _, err := p.tokens.Validate(token); err != nil {
		return nil, domainerrors.ErrShareLinkInvalid.WithDetails(err.Error())
	}

	png, err := p.qrcodes.GenerateLinkQR(p.link(token))
	if err != nil {
		return nil, domainerrors.ErrInternalError.WithDetails(err.Error())
	}

	return png, nil
}
